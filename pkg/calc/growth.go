package calc

import (
	"math"

	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// GrowthInputs describes a compound growth projection.
type GrowthInputs struct {
	InitialValue float64 `json:"initialValue" validate:"finite,gte=0"`
	// AnnualGrowthRate is a percentage and may be negative for a declining market.
	AnnualGrowthRate float64 `json:"annualGrowthRate" validate:"finite,gte=-100,lte=100"`
	Years            int     `json:"years" validate:"gt=0,lte=100"`
	// AnnualContribution is added at the end of each year after growth.
	AnnualContribution float64 `json:"annualContribution" validate:"finite,gte=0"`
}

// GrowthPoint is the projected value at the end of a year.
type GrowthPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// GrowthResult is a year-by-year projection.
type GrowthResult struct {
	FinalValue         float64       `json:"finalValue"`
	TotalContributions float64       `json:"totalContributions"`
	// TotalGrowth is the change in value not explained by contributions.
	TotalGrowth float64       `json:"totalGrowth"`
	Points      []GrowthPoint `json:"points"`
}

// ProjectGrowth compounds the initial value annually:
// value = value*(1+rate) + contribution.
func ProjectGrowth(inputs GrowthInputs) (GrowthResult, error) {
	if err := validation.Struct(inputs); err != nil {
		return GrowthResult{}, err
	}

	years := inputs.Years
	if years > constants.MaxProjectionYears {
		years = constants.MaxProjectionYears
	}

	growth := 1 + inputs.AnnualGrowthRate/constants.PercentageMultiplier
	value := inputs.InitialValue
	result := GrowthResult{Points: make([]GrowthPoint, 0, years)}
	for year := 1; year <= years; year++ {
		value = math.Max(0, value*growth) + inputs.AnnualContribution
		result.Points = append(result.Points, GrowthPoint{Year: year, Value: value})
	}

	result.FinalValue = value
	result.TotalContributions = inputs.AnnualContribution * float64(years)
	result.TotalGrowth = value - inputs.InitialValue - result.TotalContributions
	if err := requireFinite("finalValue", result.FinalValue, result.TotalGrowth); err != nil {
		return GrowthResult{}, err
	}
	return result, nil
}

// CompoundValue returns value grown at annualRate percent for years.
func CompoundValue(value, annualRate float64, years int) float64 {
	if years <= 0 {
		return value
	}
	return value * math.Pow(1+annualRate/constants.PercentageMultiplier, float64(years))
}
