package calc

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// TaxBracket is one band of a progressive tax table. Income from Min up to
// Max is taxed at Rate. A nil Max marks the unbounded top band.
type TaxBracket struct {
	Min float64 `json:"min" yaml:"min"`
	// Max is nil for the top band.
	Max *float64 `json:"max" yaml:"max"`
	// Rate is a fraction, e.g. 0.16 for 16%.
	Rate float64 `json:"rate" yaml:"rate"`
}

// Width is the amount of income the band covers, or +Inf for the top band.
func (b TaxBracket) Width() float64 {
	if b.Max == nil {
		return math.Inf(1)
	}
	return *b.Max - b.Min
}

// Contains reports whether income falls in the band. Min is inclusive.
func (b TaxBracket) Contains(income float64) bool {
	return income >= b.Min && (b.Max == nil || income < *b.Max)
}

// Bound returns a pointer to v, for building bracket upper bounds.
func Bound(v float64) *float64 {
	return &v
}

// TaxTable is an ordered set of contiguous brackets starting at zero and
// ending in an unbounded band.
type TaxTable []TaxBracket

// DefaultTaxTable returns the reference five-band schedule. It is a
// configuration starting point only; any valid table can replace it.
func DefaultTaxTable() TaxTable {
	return TaxTable{
		{Min: 0, Max: Bound(18200), Rate: 0},
		{Min: 18200, Max: Bound(45000), Rate: 0.16},
		{Min: 45000, Max: Bound(135000), Rate: 0.30},
		{Min: 135000, Max: Bound(190000), Rate: 0.37},
		{Min: 190000, Max: nil, Rate: 0.45},
	}
}

// Validate checks that brackets start at zero, are contiguous and ascending,
// carry rates between 0 and 1, and end in exactly one unbounded band.
func (t TaxTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidTaxTable)
	}
	if t[0].Min != 0 {
		return fmt.Errorf("%w: first bracket must start at 0, got %.2f", ErrInvalidTaxTable, t[0].Min)
	}

	for i, b := range t {
		if !mathutil.IsFinite(b.Min) || !mathutil.IsFinite(b.Rate) {
			return fmt.Errorf("%w: bracket %d has a non-finite value", ErrInvalidTaxTable, i)
		}
		if b.Rate < 0 || b.Rate > 1 {
			return fmt.Errorf("%w: bracket %d rate %.4f outside 0-1", ErrInvalidTaxTable, i, b.Rate)
		}

		last := i == len(t)-1
		if b.Max == nil {
			if !last {
				return fmt.Errorf("%w: bracket %d is unbounded but is not the last bracket", ErrInvalidTaxTable, i)
			}
			continue
		}
		if last {
			return fmt.Errorf("%w: last bracket must be unbounded", ErrInvalidTaxTable)
		}
		if !mathutil.IsFinite(*b.Max) || *b.Max <= b.Min {
			return fmt.Errorf("%w: bracket %d max must exceed its min %.2f", ErrInvalidTaxTable, i, b.Min)
		}
		if next := t[i+1]; next.Min != *b.Max {
			if next.Min < *b.Max {
				return fmt.Errorf("%w: bracket %d overlaps bracket %d", ErrInvalidTaxTable, i+1, i)
			}
			return fmt.Errorf("%w: gap between bracket %d and bracket %d", ErrInvalidTaxTable, i, i+1)
		}
	}
	return nil
}

// IsProgressive reports whether rates never decrease from band to band.
func (t TaxTable) IsProgressive() bool {
	for i := 1; i < len(t); i++ {
		if t[i].Rate < t[i-1].Rate {
			return false
		}
	}
	return true
}

// WithRates returns a copy of the table with each band's rate replaced, as when
// a user adjusts per-band rates. The band boundaries are kept.
func (t TaxTable) WithRates(rates []float64) (TaxTable, error) {
	if len(rates) != len(t) {
		return nil, fmt.Errorf("%w: got %d rates for %d brackets", ErrInvalidTaxTable, len(rates), len(t))
	}
	out := make(TaxTable, len(t))
	for i, b := range t {
		out[i] = TaxBracket{Min: b.Min, Rate: rates[i]}
		if b.Max != nil {
			out[i].Max = Bound(*b.Max)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// CalculateTax walks the brackets in ascending order taxing the slice of
// income that falls in each. Income at or below zero owes nothing.
func (t TaxTable) CalculateTax(income float64) float64 {
	if !(income > 0) || math.IsInf(income, 1) {
		return 0
	}

	total := decimal.Zero
	remaining := income
	for _, b := range t {
		if remaining <= 0 {
			break
		}
		taxable := math.Min(remaining, b.Width())
		total = total.Add(decimal.NewFromFloat(taxable).Mul(decimal.NewFromFloat(b.Rate)))
		remaining -= taxable
	}
	return total.InexactFloat64()
}

// MarginalRate returns the percentage rate applied to the next dollar earned.
func (t TaxTable) MarginalRate(income float64) float64 {
	if len(t) == 0 {
		return 0
	}
	if income < 0 {
		income = 0
	}
	for _, b := range t {
		if b.Contains(income) {
			return b.Rate * constants.PercentageMultiplier
		}
	}
	return t[len(t)-1].Rate * constants.PercentageMultiplier
}

// EffectiveRate returns total tax as a percentage of income, or 0 when income
// is not positive.
func (t TaxTable) EffectiveRate(income float64) float64 {
	if !(income > 0) {
		return 0
	}
	return mathutil.CalculatePercentage(t.CalculateTax(income), income)
}

// TaxResult is the tax position for a single income.
type TaxResult struct {
	Income           float64 `json:"income"`
	TaxPaid          float64 `json:"taxPaid"`
	NetIncome        float64 `json:"netIncome"`
	EffectiveTaxRate float64 `json:"effectiveTaxRate"`
	MarginalTaxRate  float64 `json:"marginalTaxRate"`
}

// Calculate validates the table and income, then returns the full tax
// position.
func (t TaxTable) Calculate(income float64) (TaxResult, error) {
	if err := t.Validate(); err != nil {
		return TaxResult{}, err
	}
	if !mathutil.IsFinite(income) {
		return TaxResult{}, fmt.Errorf("%w: income must be a finite number", ErrInvalidInput)
	}

	tax := t.CalculateTax(income)
	return TaxResult{
		Income:           income,
		TaxPaid:          tax,
		NetIncome:        income - tax,
		EffectiveTaxRate: t.EffectiveRate(income),
		MarginalTaxRate:  t.MarginalRate(income),
	}, nil
}
