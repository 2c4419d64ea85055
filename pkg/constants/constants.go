// Package constants provides shared constants for the hotel-forecast application.
package constants

import "time"

// DateLayout is the canonical calendar date format used in configuration,
// ingestion and output.
const DateLayout = "2006-01-02"

// MonthLayout is the year-month format used for monthly periods.
const MonthLayout = "2006-01"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerWeek is the number of days in a week
	DaysPerWeek = 7

	// BaselinePeriods is the number of most recent historical periods averaged
	// to form the forecast baseline
	BaselinePeriods = 3
)

// Rounding constants
const (
	// CurrencySymbol prefixes rendered amounts
	CurrencySymbol = "€"

	// CurrencyPlaces is the number of decimals kept for currency values
	CurrencyPlaces = 2

	// RatioPlaces is the number of decimals kept for ratios such as margins
	RatioPlaces = 4

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Hotel defaults
const (
	// DefaultTotalRooms is the room capacity used when no override exists for a year
	DefaultTotalRooms = 70

	// DefaultForecastMonths is the default forecast horizon
	DefaultForecastMonths = 12

	// DefaultGrowthRate is the default annual growth rate (5%)
	DefaultGrowthRate = 0.05

	// CostGrowthFactor scales the revenue growth rate for cost growth
	CostGrowthFactor = 0.8

	// CostSeasonalityDamping scales how much of the seasonal swing applies to costs
	CostSeasonalityDamping = 0.5

	// OtherCategory is the synthetic bucket for collapsed categories
	OtherCategory = "Other"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the report encoded as indented JSON
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultBudgetDir is where cached budgets are written
	DefaultBudgetDir = "data/budgets"

	// MaxHeaderScanRows bounds the search for the header row of data files
	MaxHeaderScanRows = 10
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for data files (8 MB)
	DefaultMaxUploadSizeBytes int64 = 8 * 1024 * 1024

	// DefaultMaxForecastMonths caps the horizon accepted by the forecast API
	DefaultMaxForecastMonths = 60

	// DefaultServerReadTimeout bounds reading a request, upload included
	DefaultServerReadTimeout = 30 * time.Second

	// DefaultServerWriteTimeout bounds writing a response
	DefaultServerWriteTimeout = 60 * time.Second
)
