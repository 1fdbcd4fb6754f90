package calc

import (
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/mathutil"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// ScheduleEntry holds the values for a given repayment period.
type ScheduleEntry struct {
	Period             int     `json:"period"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Schedule is a period-by-period amortization table with its totals.
type Schedule struct {
	Entries       []ScheduleEntry `json:"entries"`
	TotalPaid     float64         `json:"totalPaid"`
	TotalInterest float64         `json:"totalInterest"`
	// ResidualPrincipal is owed after the final entry.
	ResidualPrincipal float64 `json:"residualPrincipal"`
}

// GenerateSchedule creates the amortization schedule for a loan, including any
// additional repayments. Interest-only loans produce interest-only entries with
// the principal left outstanding at the end of the term.
func GenerateSchedule(inputs MortgageInputs) (Schedule, error) {
	in := inputs.WithDefaults()
	if err := validation.Struct(in); err != nil {
		return Schedule{}, err
	}

	periodsPerYear := in.RepaymentFrequency.PeriodsPerYear()
	numberOfPayments := int(in.LoanTerm) * periodsPerYear
	periodRate := PeriodicRate(in.InterestRate, periodsPerYear)
	interestOnly := in.LoanType == InterestOnly

	limit := numberOfPayments
	if limit > constants.MaxSimulationPeriods {
		limit = constants.MaxSimulationPeriods
	}

	repayment := InterestOnlyRepayment(in.LoanAmount, periodRate)
	if !interestOnly {
		repayment = AnnuityRepayment(in.LoanAmount, periodRate, numberOfPayments) + in.AdditionalRepayments
	}

	schedule := Schedule{Entries: make([]ScheduleEntry, 0, limit)}
	balance := in.LoanAmount
	for period := 1; period <= limit; period++ {
		entry := ScheduleEntry{
			Period:   period,
			Interest: PeriodInterest(balance, periodRate),
		}

		if interestOnly {
			entry.Payment = entry.Interest
		} else {
			principal := repayment - entry.Interest
			if principal >= balance || period == numberOfPayments || mathutil.IsZero(balance-principal) {
				// Settle the remainder exactly; we will get machine error otherwise.
				principal = balance
			}
			entry.Principal = principal
			entry.Payment = principal + entry.Interest
			balance -= principal
		}
		entry.RemainingPrincipal = balance

		schedule.Entries = append(schedule.Entries, entry)
		schedule.TotalPaid += entry.Payment
		schedule.TotalInterest += entry.Interest

		if !interestOnly && balance <= 0 {
			break
		}
	}
	schedule.ResidualPrincipal = balance
	if err := requireFinite("totalPaid", schedule.TotalPaid, schedule.TotalInterest); err != nil {
		return Schedule{}, err
	}

	return schedule, nil
}
