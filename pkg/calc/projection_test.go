package calc

import (
	"errors"
	"math"
	"testing"
)

func TestProjectGrowth(t *testing.T) {
	tests := []struct {
		name          string
		inputs        GrowthInputs
		expectedFinal float64
		expectedGrow  float64
	}{
		{
			name:          "compound growth",
			inputs:        GrowthInputs{InitialValue: 100000, AnnualGrowthRate: 5, Years: 3},
			expectedFinal: 115762.50,
			expectedGrow:  15762.50,
		},
		{
			name:          "with contributions",
			inputs:        GrowthInputs{InitialValue: 100000, AnnualGrowthRate: 5, Years: 3, AnnualContribution: 1000},
			expectedFinal: 118915.00,
			expectedGrow:  15915.00,
		},
		{
			name:          "declining market",
			inputs:        GrowthInputs{InitialValue: 100000, AnnualGrowthRate: -10, Years: 2},
			expectedFinal: 81000.00,
			expectedGrow:  -19000.00,
		},
		{
			name:          "total loss",
			inputs:        GrowthInputs{InitialValue: 100000, AnnualGrowthRate: -100, Years: 1},
			expectedFinal: 0,
			expectedGrow:  -100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ProjectGrowth(tt.inputs)
			if err != nil {
				t.Fatalf("ProjectGrowth() error = %v", err)
			}
			if math.Abs(result.FinalValue-tt.expectedFinal) > 0.005 {
				t.Errorf("FinalValue = %.2f, expected %.2f", result.FinalValue, tt.expectedFinal)
			}
			if math.Abs(result.TotalGrowth-tt.expectedGrow) > 0.005 {
				t.Errorf("TotalGrowth = %.2f, expected %.2f", result.TotalGrowth, tt.expectedGrow)
			}
			if len(result.Points) != tt.inputs.Years {
				t.Errorf("len(Points) = %d, expected %d", len(result.Points), tt.inputs.Years)
			}
			if result.Points[len(result.Points)-1].Value != result.FinalValue {
				t.Error("last point does not match FinalValue")
			}
		})
	}
}

func TestProjectGrowthMatchesCompoundValue(t *testing.T) {
	result, err := ProjectGrowth(GrowthInputs{InitialValue: 750000, AnnualGrowthRate: 4.5, Years: 20})
	if err != nil {
		t.Fatalf("ProjectGrowth() error = %v", err)
	}
	if want := CompoundValue(750000, 4.5, 20); math.Abs(result.FinalValue-want) > 0.01 {
		t.Errorf("FinalValue = %.2f, expected %.2f", result.FinalValue, want)
	}
	if CompoundValue(1000, 5, 0) != 1000 {
		t.Error("CompoundValue over zero years must return the value unchanged")
	}
}

func TestProjectGrowthInvalid(t *testing.T) {
	for _, in := range []GrowthInputs{
		{InitialValue: 1000, AnnualGrowthRate: 5, Years: 0},
		{InitialValue: 1000, AnnualGrowthRate: 5, Years: 101},
		{InitialValue: -1, AnnualGrowthRate: 5, Years: 1},
		{InitialValue: 1000, AnnualGrowthRate: -150, Years: 1},
	} {
		if _, err := ProjectGrowth(in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ProjectGrowth(%+v) expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestSummarizePortfolio(t *testing.T) {
	summary, err := SummarizePortfolio(Portfolio{Properties: []Property{
		{Name: "Unit", Value: 600000, LoanBalance: 400000, InterestRate: 6, WeeklyRent: 500, AnnualExpenses: 5000},
		{Name: "House", Value: 400000, WeeklyRent: 400, AnnualExpenses: 4000},
	}})
	if err != nil {
		t.Fatalf("SummarizePortfolio() error = %v", err)
	}

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"TotalValue", summary.TotalValue, 1000000},
		{"TotalDebt", summary.TotalDebt, 400000},
		{"Equity", summary.Equity, 600000},
		{"LVR", summary.LVR, 40},
		{"GrossYield", summary.GrossYield, 4.68},
		{"AnnualRent", summary.AnnualRent, 46800},
		{"AnnualInterest", summary.AnnualInterest, 24000},
		{"AnnualCashFlow", summary.AnnualCashFlow, 13800},
		{"Unit cash flow", summary.Holdings[0].AnnualCashFlow, -3000},
		{"Unit LVR", summary.Holdings[0].LVR, 66.6667},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.expected) > 0.0001 {
			t.Errorf("%s = %.4f, expected %.4f", c.name, c.got, c.expected)
		}
	}
	if summary.Properties != 2 || len(summary.Holdings) != 2 {
		t.Errorf("Properties = %d, Holdings = %d, expected 2", summary.Properties, len(summary.Holdings))
	}
}

func TestSummarizePortfolioInvalid(t *testing.T) {
	if _, err := SummarizePortfolio(Portfolio{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for an empty portfolio, got %v", err)
	}
	if _, err := SummarizePortfolio(Portfolio{Properties: []Property{{Value: -1}}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a negative value, got %v", err)
	}
}

func TestMetricsForZeroValue(t *testing.T) {
	m := MetricsFor(Property{Name: "Land", WeeklyRent: 0})
	if m.LVR != 0 || m.GrossYield != 0 {
		t.Errorf("MetricsFor() = %+v, expected zero ratios for a zero value", m)
	}
}

func TestCalculateHousehold(t *testing.T) {
	result, err := CalculateHousehold(HouseholdInputs{
		GrossIncome:   100000,
		PartnerIncome: 60000,
		Expenses: []Expense{
			{Name: "Living", Amount: 20000},
			{Name: "Insurance", Amount: 5000.50},
		},
	}, DefaultTaxTable())
	if err != nil {
		t.Fatalf("CalculateHousehold() error = %v", err)
	}

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"GrossIncome", result.GrossIncome, 160000},
		{"TaxPaid", result.TaxPaid, 29576},
		{"AfterTaxIncome", result.AfterTaxIncome, 130424},
		{"TotalExpenses", result.TotalExpenses, 25000.50},
		{"NetIncome", result.NetIncome, 105423.50},
		{"EffectiveTaxRate", result.EffectiveTaxRate, 18.485},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.expected) > 0.001 {
			t.Errorf("%s = %.4f, expected %.4f", c.name, c.got, c.expected)
		}
	}
}

func TestCalculateHouseholdExpensesExceedIncome(t *testing.T) {
	result, err := CalculateHousehold(HouseholdInputs{
		Expenses: []Expense{{Name: "Rent", Amount: 1000}},
	}, DefaultTaxTable())
	if err != nil {
		t.Fatalf("CalculateHousehold() error = %v", err)
	}
	if result.NetIncome != -1000 || result.EffectiveTaxRate != 0 {
		t.Errorf("CalculateHousehold() = %+v, expected net -1000 and no tax", result)
	}
}

func TestCalculateHouseholdInvalid(t *testing.T) {
	if _, err := CalculateHousehold(HouseholdInputs{GrossIncome: 1}, TaxTable{}); !errors.Is(err, ErrInvalidTaxTable) {
		t.Errorf("expected ErrInvalidTaxTable, got %v", err)
	}
	_, err := CalculateHousehold(HouseholdInputs{Expenses: []Expense{{Amount: -5}}}, DefaultTaxTable())
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a negative expense, got %v", err)
	}
}
