package calc

import (
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/mathutil"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// Property is one holding in an investment portfolio.
type Property struct {
	Name        string  `json:"name" validate:"max=200"`
	Value       float64 `json:"value" validate:"finite,gte=0"`
	LoanBalance float64 `json:"loanBalance" validate:"finite,gte=0"`
	// InterestRate is the annual loan rate as a percentage.
	InterestRate   float64 `json:"interestRate" validate:"finite,gte=0,lte=100"`
	WeeklyRent     float64 `json:"weeklyRent" validate:"finite,gte=0"`
	AnnualExpenses float64 `json:"annualExpenses" validate:"finite,gte=0"`
}

// Portfolio is the request shape for SummarizePortfolio.
type Portfolio struct {
	Properties []Property `json:"properties" validate:"required,min=1,max=500,dive"`
}

// PropertyMetrics are the derived figures for one holding.
type PropertyMetrics struct {
	Name           string  `json:"name"`
	Equity         float64 `json:"equity"`
	LVR            float64 `json:"lvr"`
	GrossYield     float64 `json:"grossYield"`
	AnnualRent     float64 `json:"annualRent"`
	AnnualInterest float64 `json:"annualInterest"`
	AnnualCashFlow float64 `json:"annualCashFlow"`
}

// PortfolioSummary aggregates a portfolio. Percentages are of total value.
type PortfolioSummary struct {
	Properties     int               `json:"properties"`
	TotalValue     float64           `json:"totalValue"`
	TotalDebt      float64           `json:"totalDebt"`
	Equity         float64           `json:"equity"`
	LVR            float64           `json:"lvr"`
	GrossYield     float64           `json:"grossYield"`
	AnnualRent     float64           `json:"annualRent"`
	AnnualInterest float64           `json:"annualInterest"`
	AnnualCashFlow float64           `json:"annualCashFlow"`
	Holdings       []PropertyMetrics `json:"holdings"`
}

// MetricsFor derives equity, loan-to-value ratio, gross yield and cash flow
// for a single property. Interest is estimated on the current balance.
func MetricsFor(p Property) PropertyMetrics {
	annualRent := p.WeeklyRent * constants.WeeksPerYear
	annualInterest := mathutil.ApplyPercentage(p.LoanBalance, p.InterestRate)
	return PropertyMetrics{
		Name:           p.Name,
		Equity:         p.Value - p.LoanBalance,
		LVR:            mathutil.CalculatePercentage(p.LoanBalance, p.Value),
		GrossYield:     mathutil.CalculatePercentage(annualRent, p.Value),
		AnnualRent:     annualRent,
		AnnualInterest: annualInterest,
		AnnualCashFlow: annualRent - annualInterest - p.AnnualExpenses,
	}
}

// SummarizePortfolio aggregates the properties into portfolio totals.
func SummarizePortfolio(portfolio Portfolio) (PortfolioSummary, error) {
	if err := validation.Struct(portfolio); err != nil {
		return PortfolioSummary{}, err
	}

	summary := PortfolioSummary{
		Properties: len(portfolio.Properties),
		Holdings:   make([]PropertyMetrics, 0, len(portfolio.Properties)),
	}
	for _, p := range portfolio.Properties {
		m := MetricsFor(p)
		summary.Holdings = append(summary.Holdings, m)
		summary.TotalValue += p.Value
		summary.TotalDebt += p.LoanBalance
		summary.AnnualRent += m.AnnualRent
		summary.AnnualInterest += m.AnnualInterest
		summary.AnnualCashFlow += m.AnnualCashFlow
	}
	summary.Equity = summary.TotalValue - summary.TotalDebt
	summary.LVR = mathutil.CalculatePercentage(summary.TotalDebt, summary.TotalValue)
	summary.GrossYield = mathutil.CalculatePercentage(summary.AnnualRent, summary.TotalValue)
	if err := requireFinite("properties", summary.TotalValue, summary.TotalDebt, summary.Equity, summary.AnnualCashFlow); err != nil {
		return PortfolioSummary{}, err
	}

	return summary, nil
}
