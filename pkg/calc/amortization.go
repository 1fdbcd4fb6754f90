package calc

import (
	"math"

	"github.com/iwvelando/property-calc/pkg/constants"
)

// PeriodicRate converts an annual percentage rate into the rate applied each
// repayment period.
func PeriodicRate(annualRate float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		return 0
	}
	return annualRate / (constants.PercentageMultiplier * float64(periodsPerYear))
}

// AnnuityRepayment calculates the level repayment that fully amortizes
// principal over the given number of periods using the standard annuity
// formula. A zero rate, or a denominator that collapses to zero or below,
// falls back to straight-line division.
func AnnuityRepayment(principal, periodRate float64, periods int) float64 {
	if periods <= 0 {
		return 0
	}
	n := float64(periods)
	if periodRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / n
	}

	power := math.Pow(1.00+periodRate, n)
	if math.IsInf(power, 1) {
		// Over an unbounded horizon the repayment only services interest.
		return principal * periodRate
	}
	denominator := power - 1.00
	if denominator <= 0 {
		return principal / n
	}
	return principal * periodRate * power / denominator
}

// InterestOnlyRepayment is the constant repayment of an interest-only loan.
func InterestOnlyRepayment(principal, periodRate float64) float64 {
	return principal * periodRate
}

// PeriodInterest calculates the interest accrued on a balance for one period.
func PeriodInterest(balance, periodRate float64) float64 {
	return balance * periodRate
}

// Payoff is the outcome of simulating a loan balance under a fixed
// per-period payment.
type Payoff struct {
	// Periods is the number of payments made, or the cap when the balance
	// never cleared.
	Periods int
	// TotalPaid is Periods multiplied by the payment.
	TotalPaid float64
	// Converged reports whether the balance reached zero within the cap.
	Converged bool
}

// SimulatePayoff decays principal period by period as
// balance = balance*(1+r) - payment and counts periods until the balance is
// cleared (within one cent). The loop never runs more than maxPeriods, nor more
// than constants.MaxSimulationPeriods, so payments too small to cover interest
// terminate with Converged false.
func SimulatePayoff(principal, periodRate, payment float64, maxPeriods int) Payoff {
	limit := maxPeriods
	if limit > constants.MaxSimulationPeriods {
		limit = constants.MaxSimulationPeriods
	}
	if limit <= 0 {
		return Payoff{}
	}

	balance := principal
	for period := 1; period <= limit; period++ {
		balance = balance*(1+periodRate) - payment
		if balance <= constants.CurrencyTolerance {
			return Payoff{Periods: period, TotalPaid: float64(period) * payment, Converged: true}
		}
	}
	return Payoff{Periods: limit, TotalPaid: float64(limit) * payment}
}
