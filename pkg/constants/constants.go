// Package constants provides shared constants for the property-calc application.
package constants

// DateTimeLayout is the year-month format used when reporting payoff dates.
const DateTimeLayout = "2006-01"

// Repayment frequencies expressed as periods per year.
const (
	// WeeklyPeriodsPerYear is the number of weekly repayments in a year
	WeeklyPeriodsPerYear = 52

	// FortnightlyPeriodsPerYear is the number of fortnightly repayments in a year
	FortnightlyPeriodsPerYear = 26

	// MonthlyPeriodsPerYear is the number of monthly repayments in a year
	MonthlyPeriodsPerYear = 12

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear is used to annualise weekly rent
	WeeksPerYear = 52
)

// Financial constants
const (
	// DecimalPlaces is the precision for currency rounding (2 decimal places)
	DecimalPlaces = 2

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Lending policy defaults. These only seed configuration; callers supply the
// policy actually used for a calculation.
const (
	// DefaultBorrowingMultiplier is the income multiple a lender is assumed to extend
	DefaultBorrowingMultiplier = 6.0

	// DefaultDependantDeduction is subtracted from household income per dependant
	DefaultDependantDeduction = 5000.0
)

// Calculation limits
const (
	// MaxLoanTermYears is the longest loan term accepted as input
	MaxLoanTermYears = 100

	// MaxProjectionYears is the longest growth projection accepted as input
	MaxProjectionYears = 100

	// MaxSimulationPeriods bounds every period-by-period loop: a weekly loan
	// over the longest accepted term.
	MaxSimulationPeriods = WeeklyPeriodsPerYear * MaxLoanTermYears
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides, e.g. PROPERTYCALC_BORROWING_MULTIPLIER
	EnvPrefix = "PROPERTYCALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRequestsPerSecond is the default per-client request rate
	DefaultRequestsPerSecond = 10.0

	// DefaultRequestBurst is the default per-client burst size
	DefaultRequestBurst = 20

	// DefaultCacheTTLSeconds is how long computed results stay cached
	DefaultCacheTTLSeconds = 300

	// DefaultCacheKeyPrefix namespaces cache entries in shared stores
	DefaultCacheKeyPrefix = "property-calc:"

	// DefaultShutdownTimeoutSeconds bounds graceful shutdown
	DefaultShutdownTimeoutSeconds = 10
)
