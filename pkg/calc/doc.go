// Package calc is the property finance calculation engine: mortgage
// repayments and amortization, borrowing capacity, progressive tax, household
// net income, compound growth and portfolio metrics.
//
// Every function is a pure computation over its arguments. Nothing here
// performs I/O or keeps state between calls, so all of it is safe for
// concurrent use. Inputs are validated up front and rejected with errors
// matching ErrInvalidInput; degenerate arithmetic such as a zero interest rate
// is handled explicitly rather than reported.
//
// Policy values (borrowing multiplier, per-dependant deduction, tax brackets)
// are always passed in by the caller. DefaultBorrowingPolicy and
// DefaultTaxTable only provide starting configuration.
package calc
