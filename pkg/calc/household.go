package calc

import (
	"fmt"

	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/mathutil"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// Expense is a modeled annual household cost.
type Expense struct {
	Name   string  `json:"name" validate:"max=100"`
	Amount float64 `json:"amount" validate:"finite,gte=0"`
}

// HouseholdInputs describes household earnings and annual expenses. Each
// earner is taxed separately against the same table.
type HouseholdInputs struct {
	GrossIncome   float64   `json:"grossIncome" validate:"finite,gte=0"`
	PartnerIncome float64   `json:"partnerIncome" validate:"finite,gte=0"`
	Expenses      []Expense `json:"expenses" validate:"omitempty,dive"`
}

// HouseholdResult is household income after tax and expenses.
type HouseholdResult struct {
	GrossIncome    float64 `json:"grossIncome"`
	TaxPaid        float64 `json:"taxPaid"`
	AfterTaxIncome float64 `json:"afterTaxIncome"`
	TotalExpenses  float64 `json:"totalExpenses"`
	// NetIncome is after-tax income less expenses; it may be negative.
	NetIncome float64 `json:"netIncome"`
	// EffectiveTaxRate is household tax as a percentage of household income.
	EffectiveTaxRate float64 `json:"effectiveTaxRate"`
}

// CalculateHousehold applies gross*(1-effectiveRate) per earner and subtracts
// modeled expenses.
func CalculateHousehold(inputs HouseholdInputs, table TaxTable) (HouseholdResult, error) {
	if err := table.Validate(); err != nil {
		return HouseholdResult{}, err
	}
	if err := validation.Struct(inputs); err != nil {
		return HouseholdResult{}, err
	}

	var result HouseholdResult
	for _, earnings := range []float64{inputs.GrossIncome, inputs.PartnerIncome} {
		if earnings <= 0 {
			continue
		}
		afterTax := earnings * (1 - table.EffectiveRate(earnings)/constants.PercentageMultiplier)
		result.GrossIncome += earnings
		result.AfterTaxIncome += afterTax
		result.TaxPaid += earnings - afterTax
	}

	amounts := make([]float64, 0, len(inputs.Expenses))
	for _, e := range inputs.Expenses {
		amounts = append(amounts, e.Amount)
	}
	result.TotalExpenses = mathutil.Sum(amounts...)
	result.NetIncome = result.AfterTaxIncome - result.TotalExpenses
	result.EffectiveTaxRate = mathutil.CalculatePercentage(result.TaxPaid, result.GrossIncome)
	if err := requireFinite("netIncome", result.GrossIncome, result.TotalExpenses, result.NetIncome); err != nil {
		return HouseholdResult{}, err
	}

	return result, nil
}

// String implements fmt.Stringer for log output.
func (r HouseholdResult) String() string {
	return fmt.Sprintf("gross=%.2f tax=%.2f expenses=%.2f net=%.2f", r.GrossIncome, r.TaxPaid, r.TotalExpenses, r.NetIncome)
}
