package calc

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/datetime"
	"github.com/iwvelando/property-calc/pkg/mathutil"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// Frequency is how often repayments are made.
type Frequency string

// Supported repayment frequencies.
const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
)

// PeriodsPerYear returns the number of repayments per year, or 0 for an
// unknown frequency.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return constants.WeeklyPeriodsPerYear
	case Fortnightly:
		return constants.FortnightlyPeriodsPerYear
	case Monthly:
		return constants.MonthlyPeriodsPerYear
	default:
		return 0
	}
}

// LoanType distinguishes amortizing loans from interest-only loans.
type LoanType string

// Supported loan types.
const (
	PrincipalAndInterest LoanType = "principal_and_interest"
	InterestOnly         LoanType = "interest_only"
)

// Years is a whole number of years. It decodes from either a JSON number or a
// numeric string, since form fields submit values such as "30".
type Years int

// UnmarshalJSON implements json.Unmarshaler.
func (y *Years) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(trimmed), `"`))
	if s == "" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number of years %s", trimmed)
	}
	*y = Years(n)
	return nil
}

// MortgageInputs describes a loan to be repaid.
type MortgageInputs struct {
	// LoanAmount is the amount borrowed.
	LoanAmount float64 `json:"loanAmount" validate:"finite,gt=0"`
	// InterestRate is the annual rate as a percentage, e.g. 6 for 6%.
	InterestRate float64 `json:"interestRate" validate:"finite,gte=0,lte=100"`
	// LoanTerm is the term in years.
	LoanTerm Years `json:"loanTerm" validate:"gt=0,lte=100"`
	// RepaymentFrequency defaults to monthly.
	RepaymentFrequency Frequency `json:"repaymentFrequency" validate:"oneof=weekly fortnightly monthly"`
	// LoanType defaults to principal and interest.
	LoanType LoanType `json:"loanType" validate:"oneof=principal_and_interest interest_only"`
	// AdditionalRepayments is paid on top of every scheduled repayment. It
	// only shortens principal and interest loans.
	AdditionalRepayments float64 `json:"additionalRepayments" validate:"finite,gte=0"`
}

// WithDefaults fills in the repayment frequency and loan type when omitted.
func (in MortgageInputs) WithDefaults() MortgageInputs {
	if in.RepaymentFrequency == "" {
		in.RepaymentFrequency = Monthly
	}
	if in.LoanType == "" {
		in.LoanType = PrincipalAndInterest
	}
	return in
}

// Validate reports every problem with the inputs after defaults are applied.
func (in MortgageInputs) Validate() error {
	return validation.Struct(in.WithDefaults())
}

// Duration is a span of whole years and months.
type Duration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// TotalMonths returns the duration in months.
func (d Duration) TotalMonths() int {
	return d.Years*constants.MonthsPerYear + d.Months
}

func durationFromMonths(months int) Duration {
	years, remainder := datetime.SplitMonths(months)
	return Duration{Years: years, Months: remainder}
}

// MortgageResult holds the derived repayment figures for a loan.
type MortgageResult struct {
	// RepaymentAmount is the scheduled repayment per period, excluding any
	// additional repayment.
	RepaymentAmount float64 `json:"repaymentAmount"`
	// TotalRepayments is RepaymentAmount over the full term.
	TotalRepayments float64 `json:"totalRepayments"`
	// TotalInterest is TotalRepayments less the principal those repayments
	// retire. Interest-only repayments retire no principal.
	TotalInterest float64 `json:"totalInterest"`
	// NumberOfPayments is the number of periods in the full term.
	NumberOfPayments int `json:"numberOfPayments"`
	// PayoffPeriods is the number of periods until the loan is repaid,
	// shortened by additional repayments when they help.
	PayoffPeriods int `json:"payoffPeriods"`
	// PayoffDate is the as-of date plus the payoff term in whole months.
	PayoffDate time.Time `json:"payoffDate"`

	// PrincipalPercentage is the share of TotalRepayments that retires
	// principal. Interest-only repayments retire none, so it is 0 for them.
	PrincipalPercentage float64 `json:"principalPercentage"`
	InterestPercentage  float64 `json:"interestPercentage"`

	// ResidualPrincipal is still owed when the term ends; non-zero only for
	// interest-only loans.
	ResidualPrincipal float64 `json:"residualPrincipal"`

	// PotentialSavings is set only when additional repayments save money.
	PotentialSavings *float64 `json:"potentialSavings,omitempty"`
	// TimeSaved is set only when additional repayments shorten the term.
	TimeSaved *Duration `json:"timeSaved,omitempty"`
}

// CalculateMortgage computes repayment figures with the payoff date measured
// from now.
func CalculateMortgage(inputs MortgageInputs) (MortgageResult, error) {
	return CalculateMortgageAt(inputs, time.Now())
}

// CalculateMortgageAt computes repayment figures with the payoff date measured
// from asOf.
func CalculateMortgageAt(inputs MortgageInputs, asOf time.Time) (MortgageResult, error) {
	in := inputs.WithDefaults()
	if err := validation.Struct(in); err != nil {
		return MortgageResult{}, err
	}

	periodsPerYear := in.RepaymentFrequency.PeriodsPerYear()
	numberOfPayments := int(in.LoanTerm) * periodsPerYear
	periodRate := PeriodicRate(in.InterestRate, periodsPerYear)

	result := MortgageResult{
		NumberOfPayments: numberOfPayments,
		PayoffPeriods:    numberOfPayments,
	}

	principalRepaid := in.LoanAmount
	if in.LoanType == InterestOnly {
		result.RepaymentAmount = InterestOnlyRepayment(in.LoanAmount, periodRate)
		result.ResidualPrincipal = in.LoanAmount
		principalRepaid = 0
	} else {
		result.RepaymentAmount = AnnuityRepayment(in.LoanAmount, periodRate, numberOfPayments)
	}

	result.TotalRepayments = result.RepaymentAmount * float64(numberOfPayments)
	// A zero rate can leave a negative rounding residue.
	result.TotalInterest = math.Max(0, result.TotalRepayments-principalRepaid)
	if result.TotalRepayments > 0 {
		result.PrincipalPercentage = mathutil.CalculatePercentage(principalRepaid, result.TotalRepayments)
		result.InterestPercentage = constants.PercentageMultiplier - result.PrincipalPercentage
	}

	if err := requireFinite("totalRepayments", result.RepaymentAmount, result.TotalRepayments); err != nil {
		return MortgageResult{}, err
	}

	if in.LoanType == PrincipalAndInterest && in.AdditionalRepayments > 0 {
		applyAdditionalRepayments(&result, in, periodRate, periodsPerYear)
	}

	result.PayoffDate = datetime.AddMonths(asOf, datetime.PeriodsToMonths(result.PayoffPeriods, periodsPerYear))
	return result, nil
}

// applyAdditionalRepayments shortens the payoff term and records the savings.
// A simulation that hits the original term leaves the result untouched: the
// extra repayment has no measurable benefit.
func applyAdditionalRepayments(result *MortgageResult, in MortgageInputs, periodRate float64, periodsPerYear int) {
	payment := result.RepaymentAmount + in.AdditionalRepayments
	payoff := SimulatePayoff(in.LoanAmount, periodRate, payment, result.NumberOfPayments)
	if !payoff.Converged || payoff.Periods >= result.NumberOfPayments {
		return
	}

	result.PayoffPeriods = payoff.Periods

	savings := result.TotalRepayments - payoff.TotalPaid
	if mathutil.IsPositive(savings) {
		result.PotentialSavings = &savings
	}

	savedMonths := datetime.PeriodsToMonths(result.NumberOfPayments, periodsPerYear) -
		datetime.PeriodsToMonths(payoff.Periods, periodsPerYear)
	if savedMonths > 0 {
		saved := durationFromMonths(savedMonths)
		result.TimeSaved = &saved
	}
}
