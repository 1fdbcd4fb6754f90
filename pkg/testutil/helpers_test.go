package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/property-calc/pkg/calc"
)

func TestFindHolding(t *testing.T) {
	summary := calc.PortfolioSummary{
		Holdings: []calc.PropertyMetrics{
			{Name: "Unit A", Equity: 1000},
			{Name: "Unit B", Equity: 2000},
			{Name: "House", Equity: 3000},
		},
	}

	tests := []struct {
		name           string
		searchName     string
		expectFound    bool
		expectedEquity float64
	}{
		{"find first holding", "Unit A", true, 1000},
		{"find last holding", "House", true, 3000},
		{"missing holding", "Townhouse", false, 0},
		{"case sensitive", "unit a", false, 0},
		{"empty name", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindHolding(summary, tt.searchName)
			if (got != nil) != tt.expectFound {
				t.Fatalf("FindHolding(%q) found = %v, expected %v", tt.searchName, got != nil, tt.expectFound)
			}
			if got != nil && got.Equity != tt.expectedEquity {
				t.Errorf("equity = %.2f, expected %.2f", got.Equity, tt.expectedEquity)
			}
		})
	}
}

func TestFindHoldingReturnsPointerIntoSummary(t *testing.T) {
	summary := calc.PortfolioSummary{Holdings: []calc.PropertyMetrics{{Name: "Unit", Equity: 1}}}

	FindHolding(summary, "Unit").Equity = 5
	if summary.Holdings[0].Equity != 5 {
		t.Error("expected FindHolding to return a pointer into the holdings slice")
	}
}

func TestAssertClose(t *testing.T) {
	tests := []struct {
		name      string
		got       float64
		want      float64
		tolerance float64
		fails     bool
	}{
		{"exact", 1, 1, 0, false},
		{"within tolerance", 2997.7526, 2997.75, 0.01, false},
		{"outside tolerance", 2998.72, 2997.75, 0.01, true},
		{"NaN", math.NaN(), 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			AssertClose(rec, "value", tt.got, tt.want, tt.tolerance)
			if rec.failed != tt.fails {
				t.Errorf("AssertClose failed = %v, expected %v", rec.failed, tt.fails)
			}
		})
	}
}

type recorder struct {
	failed bool
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(string, ...any) { r.failed = true }
