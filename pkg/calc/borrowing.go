package calc

import (
	"math"

	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// BorrowingPolicy holds the lending assumptions behind a capacity estimate.
type BorrowingPolicy struct {
	// Multiplier is the multiple of net household income a lender extends.
	Multiplier float64 `json:"multiplier" yaml:"multiplier" validate:"finite,gt=0"`
	// DependantDeduction is subtracted from household income per dependant.
	DependantDeduction float64 `json:"dependantDeduction" yaml:"dependantDeduction" validate:"finite,gte=0"`
}

// DefaultBorrowingPolicy returns the stock policy: six times income less
// $5,000 per dependant.
func DefaultBorrowingPolicy() BorrowingPolicy {
	return BorrowingPolicy{
		Multiplier:         constants.DefaultBorrowingMultiplier,
		DependantDeduction: constants.DefaultDependantDeduction,
	}
}

// BorrowingInputs describes a household applying for a loan.
type BorrowingInputs struct {
	GrossIncome   float64 `json:"grossIncome" validate:"finite,gte=0"`
	PartnerIncome float64 `json:"partnerIncome" validate:"finite,gte=0"`
	Dependants    int     `json:"dependants" validate:"gte=0"`
	ExistingLoans float64 `json:"existingLoans" validate:"finite,gte=0"`
}

// BorrowingResult is a borrowing capacity estimate.
type BorrowingResult struct {
	// TotalIncome is household income after dependant deductions; it can be
	// negative.
	TotalIncome float64 `json:"totalIncome"`
	// BorrowingCapacity is never below zero.
	BorrowingCapacity float64 `json:"borrowingCapacity"`
}

// CalculateCapacity estimates how much a lender might extend under policy:
// max(0, (gross + partner - deduction*dependants) * multiplier - existing loans).
func CalculateCapacity(inputs BorrowingInputs, policy BorrowingPolicy) (BorrowingResult, error) {
	if err := validation.Struct(policy); err != nil {
		return BorrowingResult{}, err
	}
	if err := validation.Struct(inputs); err != nil {
		return BorrowingResult{}, err
	}

	totalIncome := inputs.GrossIncome + inputs.PartnerIncome - policy.DependantDeduction*float64(inputs.Dependants)
	capacity := math.Max(0, totalIncome*policy.Multiplier-inputs.ExistingLoans)
	if err := requireFinite("borrowingCapacity", totalIncome, capacity); err != nil {
		return BorrowingResult{}, err
	}

	return BorrowingResult{
		TotalIncome:       totalIncome,
		BorrowingCapacity: capacity,
	}, nil
}
