// Package output renders calculation results for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/property-calc/pkg/calc"
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/datetime"
	"github.com/iwvelando/property-calc/pkg/format"
	"github.com/iwvelando/property-calc/pkg/validation"
)

// Write renders result to w in the named output format.
func Write(w io.Writer, outputFormat string, result any) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	if outputFormat == constants.OutputFormatJSON {
		return JSONFormat(w, result)
	}
	return PrettyFormat(w, result)
}

// JSONFormat outputs indented machine-readable JSON.
func JSONFormat(w io.Writer, result any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, result any) error {
	var err error
	switch r := result.(type) {
	case calc.MortgageResult:
		err = prettyMortgage(w, r)
	case calc.Schedule:
		err = prettySchedule(w, r)
	case calc.BorrowingResult:
		err = lines(w,
			"--- Borrowing capacity ---",
			row("Assessable income", format.Currency(r.TotalIncome)),
			row("Borrowing capacity", format.Currency(r.BorrowingCapacity)),
		)
	case calc.TaxResult:
		err = lines(w,
			"--- Income tax ---",
			row("Income", format.Currency(r.Income)),
			row("Tax payable", format.Currency(r.TaxPaid)),
			row("Net income", format.Currency(r.NetIncome)),
			row("Effective rate", format.Percent(r.EffectiveTaxRate)),
			row("Marginal rate", format.Percent(r.MarginalTaxRate)),
		)
	case calc.HouseholdResult:
		err = lines(w,
			"--- Household ---",
			row("Gross income", format.Currency(r.GrossIncome)),
			row("Tax payable", format.Currency(r.TaxPaid)),
			row("After tax", format.Currency(r.AfterTaxIncome)),
			row("Expenses", format.Currency(r.TotalExpenses)),
			row("Net income", format.Currency(r.NetIncome)),
			row("Effective rate", format.Percent(r.EffectiveTaxRate)),
		)
	case calc.GrowthResult:
		err = prettyGrowth(w, r)
	case calc.PortfolioSummary:
		err = prettyPortfolio(w, r)
	default:
		return fmt.Errorf("no pretty format for %T", result)
	}
	return err
}

func prettyMortgage(w io.Writer, r calc.MortgageResult) error {
	out := []string{
		"--- Mortgage ---",
		row("Repayment", format.Currency(r.RepaymentAmount)),
		row("Total repayments", format.Currency(r.TotalRepayments)),
		row("Total interest", format.Currency(r.TotalInterest)),
		row("Principal share", format.Percent(r.PrincipalPercentage)),
		row("Interest share", format.Percent(r.InterestPercentage)),
		row("Payoff date", r.PayoffDate.Format(datetime.DateTimeLayout)),
	}
	if r.ResidualPrincipal > 0 {
		out = append(out, row("Owing at term end", format.Currency(r.ResidualPrincipal)))
	}
	if r.PotentialSavings != nil {
		out = append(out, row("Interest saved", format.Currency(*r.PotentialSavings)))
	}
	if r.TimeSaved != nil {
		out = append(out, row("Time saved", format.Duration(r.TimeSaved.Years, r.TimeSaved.Months)))
	}
	return lines(w, out...)
}

func prettySchedule(w io.Writer, s calc.Schedule) error {
	out := []string{
		"Period | Payment | Principal | Interest | Remaining",
		"______ | _______ | _________ | ________ | _________",
	}
	for _, e := range s.Entries {
		out = append(out, fmt.Sprintf("%d | %s | %s | %s | %s", e.Period,
			format.Currency(e.Payment), format.Currency(e.Principal),
			format.Currency(e.Interest), format.Currency(e.RemainingPrincipal)))
	}
	out = append(out,
		row("Total paid", format.Currency(s.TotalPaid)),
		row("Total interest", format.Currency(s.TotalInterest)),
	)
	return lines(w, out...)
}

func prettyGrowth(w io.Writer, r calc.GrowthResult) error {
	out := []string{
		"Year | Value",
		"____ | _____",
	}
	for _, p := range r.Points {
		out = append(out, fmt.Sprintf("%d | %s", p.Year, format.Currency(p.Value)))
	}
	out = append(out,
		row("Final value", format.Currency(r.FinalValue)),
		row("Contributions", format.Currency(r.TotalContributions)),
		row("Growth", format.Currency(r.TotalGrowth)),
	)
	return lines(w, out...)
}

func prettyPortfolio(w io.Writer, r calc.PortfolioSummary) error {
	out := []string{
		"Property | Equity | LVR | Yield | Cash flow",
		"________ | ______ | ___ | _____ | _________",
	}
	for _, h := range r.Holdings {
		out = append(out, fmt.Sprintf("%s | %s | %s | %s | %s", h.Name,
			format.Currency(h.Equity), format.Percent(h.LVR),
			format.Percent(h.GrossYield), format.Currency(h.AnnualCashFlow)))
	}
	out = append(out,
		row("Total value", format.Currency(r.TotalValue)),
		row("Total debt", format.Currency(r.TotalDebt)),
		row("Equity", format.Currency(r.Equity)),
		row("LVR", format.Percent(r.LVR)),
		row("Annual cash flow", format.Currency(r.AnnualCashFlow)),
	)
	return lines(w, out...)
}

func row(label, value string) string {
	return fmt.Sprintf("%-20s %s", label+":", value)
}

func lines(w io.Writer, out ...string) error {
	for _, l := range out {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
