// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/datetime"
)

// CapacityOverride is one configured year → rooms entry, year unparsed.
type CapacityOverride struct {
	Year  string
	Rooms int
}

// ConfigValidator collects the configuration values that are checked for
// suspicious but loadable settings.
type ConfigValidator struct {
	DefaultRooms      int
	CapacityOverrides []CapacityOverride
	RoomSalesFiles    []string
	AsOf              string
	MainCategories    []string
	CollapseMinor     bool
	HorizonMonths     int
	ForecastGrowth    float64
	BudgetGrowth      float64
	Seasonality       map[string]float64
}

// ValidateCapacity checks the default capacity and each override.
func ValidateCapacity(defaultRooms int, overrides []CapacityOverride) []string {
	var warnings []string
	if defaultRooms <= 0 {
		warnings = append(warnings, fmt.Sprintf("Default capacity must be positive, got %d", defaultRooms))
	}
	for _, o := range overrides {
		year, err := strconv.Atoi(strings.TrimSpace(o.Year))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Capacity override year '%s' is not a year", o.Year))
			continue
		}
		if o.Rooms <= 0 {
			warnings = append(warnings, fmt.Sprintf("Capacity for %d must be positive, got %d", year, o.Rooms))
		} else if o.Rooms == defaultRooms {
			warnings = append(warnings, fmt.Sprintf("Capacity override for %d equals the default (%d) and has no effect", year, o.Rooms))
		}
	}
	return warnings
}

// ValidateGrowthRate warns about growth rates that are impossible or likely
// entered as percentages instead of fractions.
func ValidateGrowthRate(name string, rate float64) []string {
	if rate <= -1 {
		return []string{fmt.Sprintf("%s growth rate %v is at or below -100%%", name, rate)}
	}
	if rate > 1 {
		return []string{fmt.Sprintf("%s growth rate %v is above 100%%; rates are fractions (0.05 = 5%%)", name, rate)}
	}
	return nil
}

// ValidateAsOf checks that an explicit report date parses and is not in the
// future relative to now.
func ValidateAsOf(asOf string, now time.Time) []string {
	if strings.TrimSpace(asOf) == "" {
		return nil
	}
	t, err := time.Parse(datetime.DateLayout, strings.TrimSpace(asOf))
	if err != nil {
		return []string{fmt.Sprintf("Report date '%s' is not a %s date", asOf, datetime.DateLayout)}
	}
	if t.After(datetime.Truncate(now)) {
		return []string{fmt.Sprintf("Report date %s is in the future", asOf)}
	}
	return nil
}

// ValidateMainCategories checks the collapse allow-list.
func ValidateMainCategories(collapse bool, categories []string) []string {
	var warnings []string
	if collapse && len(categories) == 0 {
		warnings = append(warnings, "Category collapsing is enabled without main categories; every category will be reported as Other")
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c] {
			warnings = append(warnings, fmt.Sprintf("Main category '%s' is listed more than once", c))
		}
		seen[c] = true
	}
	return warnings
}

// ValidateSeasonality checks the configured seasonality factors.
func ValidateSeasonality(factors map[string]float64) []string {
	var warnings []string
	for month, f := range factors {
		if f <= 0 {
			warnings = append(warnings, fmt.Sprintf("Seasonality factor for '%s' must be positive, got %v", month, f))
		} else if f > 3 {
			warnings = append(warnings, fmt.Sprintf("Seasonality factor for '%s' is unusually large (%v)", month, f))
		}
	}
	return warnings
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	return cv.validateAt(time.Now())
}

func (cv *ConfigValidator) validateAt(now time.Time) []string {
	var warnings []string

	if len(cv.RoomSalesFiles) == 0 {
		warnings = append(warnings, "No room sales files are configured")
	}
	warnings = append(warnings, ValidateCapacity(cv.DefaultRooms, cv.CapacityOverrides)...)
	warnings = append(warnings, ValidateAsOf(cv.AsOf, now)...)
	warnings = append(warnings, ValidateMainCategories(cv.CollapseMinor, cv.MainCategories)...)
	if cv.HorizonMonths < 0 {
		warnings = append(warnings, fmt.Sprintf("Forecast horizon must be positive, got %d", cv.HorizonMonths))
	}
	warnings = append(warnings, ValidateGrowthRate("Forecast", cv.ForecastGrowth)...)
	warnings = append(warnings, ValidateGrowthRate("Budget", cv.BudgetGrowth)...)
	warnings = append(warnings, ValidateSeasonality(cv.Seasonality)...)

	return warnings
}
