// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/property-calc/pkg/calc"
	"github.com/iwvelando/property-calc/pkg/mathutil"
)

// FindHolding finds a property's metrics by name in a portfolio summary.
// Returns a pointer to the metrics if found, nil otherwise.
func FindHolding(summary calc.PortfolioSummary, name string) *calc.PropertyMetrics {
	for i := range summary.Holdings {
		if summary.Holdings[i].Name == name {
			return &summary.Holdings[i]
		}
	}
	return nil
}

// Reporter is the subset of testing.TB used by the assertions.
type Reporter interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertClose fails the test when got is further than tolerance from want.
func AssertClose(t Reporter, label string, got, want, tolerance float64) {
	t.Helper()
	if math.IsNaN(got) || !mathutil.WithinTolerance(got, want, tolerance) {
		t.Errorf("%s = %.4f, expected %.4f (±%.4f)", label, got, want, tolerance)
	}
}
