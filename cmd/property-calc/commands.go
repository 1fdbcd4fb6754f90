package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/iwvelando/property-calc/pkg/calc"
	"github.com/iwvelando/property-calc/pkg/datetime"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// mortgageCommand constructs the 'mortgage' subcommand that prints repayment
// figures, or the full amortization schedule with --schedule.
func mortgageCommand(a *app) *cobra.Command {
	var (
		inputs   calc.MortgageInputs
		term     int
		freq     string
		loanType string
		asOf     string
		schedule bool
	)

	cmd := &cobra.Command{
		Use:   "mortgage",
		Short: "Calculates mortgage repayments, totals and payoff date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs.LoanTerm = calc.Years(term)
			inputs.RepaymentFrequency = calc.Frequency(freq)
			inputs.LoanType = calc.LoanType(loanType)

			if schedule {
				result, err := calc.GenerateSchedule(inputs)
				if err != nil {
					return err
				}
				return a.write(cmd, result)
			}

			start, err := datetime.ParseAsOf(asOf)
			if err != nil {
				return err
			}
			if start.IsZero() {
				start = time.Now()
			}

			result, err := calc.CalculateMortgageAt(inputs, start)
			if err != nil {
				return err
			}
			a.logger.Debug("mortgage calculated",
				zap.String("op", "main.mortgage"),
				zap.Int("payoff_periods", result.PayoffPeriods),
			)
			return a.write(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&inputs.LoanAmount, "amount", 0, "loan amount")
	cmd.Flags().Float64Var(&inputs.InterestRate, "rate", 0, "annual interest rate as a percentage, e.g. 6")
	cmd.Flags().IntVar(&term, "term", 30, "loan term in years")
	cmd.Flags().StringVar(&freq, "frequency", string(calc.Monthly), "repayment frequency: weekly, fortnightly, monthly")
	cmd.Flags().StringVar(&loanType, "type", string(calc.PrincipalAndInterest), "loan type: principal_and_interest, interest_only")
	cmd.Flags().Float64Var(&inputs.AdditionalRepayments, "extra", 0, "additional repayment per period")
	cmd.Flags().StringVar(&asOf, "as-of", "", "date the loan starts, YYYY-MM-DD or YYYY-MM (default today)")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "print the amortization schedule instead of the summary")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// borrowingCommand constructs the 'borrowing' subcommand that estimates
// borrowing capacity under the configured lending policy.
func borrowingCommand(a *app) *cobra.Command {
	var inputs calc.BorrowingInputs

	cmd := &cobra.Command{
		Use:   "borrowing",
		Short: "Estimates borrowing capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := calc.CalculateCapacity(inputs, a.conf.Borrowing)
			if err != nil {
				return err
			}
			return a.write(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&inputs.GrossIncome, "income", 0, "gross annual income")
	cmd.Flags().Float64Var(&inputs.PartnerIncome, "partner-income", 0, "partner's gross annual income")
	cmd.Flags().IntVar(&inputs.Dependants, "dependants", 0, "number of dependants")
	cmd.Flags().Float64Var(&inputs.ExistingLoans, "existing-loans", 0, "existing loan balances")

	return cmd
}

// taxCommand constructs the 'tax' subcommand. --rates replaces the band rates
// of the configured table for a what-if calculation.
func taxCommand(a *app) *cobra.Command {
	var (
		income float64
		rates  []float64
	)

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Calculates income tax, effective and marginal rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := a.conf.Tax.Brackets
			if len(rates) > 0 {
				adjusted, err := table.WithRates(rates)
				if err != nil {
					return err
				}
				table = adjusted
			}

			result, err := table.Calculate(income)
			if err != nil {
				return err
			}
			return a.write(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&income, "income", 0, "taxable annual income")
	cmd.Flags().Float64SliceVar(&rates, "rates", nil, "band rates as fractions, lowest band first, e.g. 0,0.19,0.325,0.37,0.45")
	_ = cmd.MarkFlagRequired("income")

	return cmd
}

// householdCommand constructs the 'household' subcommand.
func householdCommand(a *app) *cobra.Command {
	var (
		inputs   calc.HouseholdInputs
		expenses map[string]string
	)

	cmd := &cobra.Command{
		Use:   "household",
		Short: "Calculates household income after tax and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseExpenses(expenses)
			if err != nil {
				return err
			}
			inputs.Expenses = parsed

			result, err := calc.CalculateHousehold(inputs, a.conf.Tax.Brackets)
			if err != nil {
				return err
			}
			return a.write(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&inputs.GrossIncome, "income", 0, "gross annual income")
	cmd.Flags().Float64Var(&inputs.PartnerIncome, "partner-income", 0, "partner's gross annual income")
	cmd.Flags().StringToStringVar(&expenses, "expense", nil, "annual expense as name=amount, repeatable")

	return cmd
}

func parseExpenses(raw map[string]string) ([]calc.Expense, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	expenses := make([]calc.Expense, 0, len(names))
	for _, name := range names {
		amount, err := strconv.ParseFloat(raw[name], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for expense %s: %w", name, err)
		}
		expenses = append(expenses, calc.Expense{Name: name, Amount: amount})
	}
	return expenses, nil
}

// growthCommand constructs the 'growth' subcommand.
func growthCommand(a *app) *cobra.Command {
	var inputs calc.GrowthInputs

	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Projects compound growth of a property value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := calc.ProjectGrowth(inputs)
			if err != nil {
				return err
			}
			return a.write(cmd, result)
		},
	}

	cmd.Flags().Float64Var(&inputs.InitialValue, "value", 0, "starting value")
	cmd.Flags().Float64Var(&inputs.AnnualGrowthRate, "rate", 0, "annual growth rate as a percentage")
	cmd.Flags().IntVar(&inputs.Years, "years", 10, "number of years to project")
	cmd.Flags().Float64Var(&inputs.AnnualContribution, "contribution", 0, "amount added at the end of each year")

	return cmd
}

// portfolioCommand constructs the 'portfolio' subcommand that summarizes a
// YAML or JSON file of properties.
func portfolioCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio FILE",
		Short: "Summarizes equity, yield and cash flow across properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portfolio, err := loadPortfolio(args[0])
			if err != nil {
				return err
			}

			result, err := calc.SummarizePortfolio(portfolio)
			if err != nil {
				return err
			}
			return a.write(cmd, result)
		},
	}

	return cmd
}

// loadPortfolio reads a portfolio file. YAML is decoded generically and
// re-encoded so both formats share the JSON field names.
func loadPortfolio(path string) (calc.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return calc.Portfolio{}, fmt.Errorf("failed to read portfolio: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return calc.Portfolio{}, fmt.Errorf("failed to parse portfolio: %w", err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return calc.Portfolio{}, fmt.Errorf("failed to parse portfolio: %w", err)
	}

	var portfolio calc.Portfolio
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&portfolio); err != nil {
		return calc.Portfolio{}, fmt.Errorf("failed to parse portfolio: %w", err)
	}
	return portfolio, nil
}

// validateCommand constructs the 'validate' subcommand that checks the
// configuration and reports warnings.
func validateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validates the configuration file and prints warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			warnings := a.conf.ValidateConfiguration()
			for _, w := range warnings {
				_, _ = fmt.Fprintf(out, "warning: %s\n", w)
			}
			_, err := fmt.Fprintf(out, "configuration is valid (%d warnings)\n", len(warnings))
			return err
		},
	}
}
