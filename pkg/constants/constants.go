// Package constants provides shared constants for the ofz-planner application.
package constants

// DateLayout is the format expected for dates in config files, CLI flags, and
// MOEX ISS payloads, and is also the output date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CouponPrecision is the precision for per-unit coupon values (4 decimal places)
	CouponPrecision = 10000

	// DaysPerYear is the day-count divisor used for annualized returns
	DaysPerYear = 365.25

	// CurrencyTolerance is the tolerance for currency comparisons (1 kopeck)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultFaceValue is the face value of an OFZ issue in rubles
	DefaultFaceValue = 1000.0
)

// Solver constants
const (
	// SearchCeiling bounds the exponential bracketing phase of the
	// target-quantity search; a target unreachable with this many units is
	// reported as an error instead of looping further.
	SearchCeiling = 10_000_000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultCacheFile is the default bond snapshot cache file name
	DefaultCacheFile = "ofz_cache.json"
)

// MOEX ISS defaults
const (
	// DefaultMoexBaseURL is the root of the MOEX ISS REST API
	DefaultMoexBaseURL = "https://iss.moex.com/iss"

	// DefaultMoexTimeoutSeconds is the default HTTP timeout for ISS requests
	DefaultMoexTimeoutSeconds = 15
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"
)
