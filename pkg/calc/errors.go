package calc

import (
	"fmt"

	"github.com/iwvelando/property-calc/pkg/mathutil"
	"github.com/iwvelando/property-calc/pkg/validation"
)

var (
	// ErrInvalidInput is matched by every input rejection from this package.
	ErrInvalidInput = validation.ErrInvalid

	// ErrInvalidTaxTable marks a malformed bracket table. It also matches
	// ErrInvalidInput.
	ErrInvalidTaxTable = fmt.Errorf("%w: malformed tax table", ErrInvalidInput)
)

// requireFinite rejects results that overflowed float64. Inputs can each be
// finite and still produce an infinite product or sum.
func requireFinite(field string, values ...float64) error {
	for _, v := range values {
		if !mathutil.IsFinite(v) {
			return validation.Problem(field, "Inputs are too large to produce a finite result")
		}
	}
	return nil
}
