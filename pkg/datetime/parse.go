// Package datetime provides calendar date utility functions.
//
// All dates handled here are calendar days: midnight UTC with no time of day.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
)

const (
	// DateLayout is the canonical calendar date layout.
	DateLayout = constants.DateLayout

	// MonthLayout is the year-month layout.
	MonthLayout = constants.MonthLayout
)

// inputLayouts are tried in order when parsing dates from exports. Slash and
// dash forms are day-first, as the PMS writes them.
var inputLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02.01.2006",
}

// excelEpoch is day zero of the 1900 date system, accounting for the
// fictitious 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date builds a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day and location, keeping the calendar day as
// seen in t's own location.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// MustParseDate parses a canonical date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(dateStr string) time.Time {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a date in any of the supported export layouts. Bare
// numbers are read as spreadsheet serial dates.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Truncate(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return FromSerial(serial)
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// FromSerial converts a spreadsheet serial day number to a calendar date.
func FromSerial(serial float64) (time.Time, error) {
	if serial < 1 || serial > 2958465 {
		return time.Time{}, fmt.Errorf("serial date %v out of range", serial)
	}
	return excelEpoch.AddDate(0, 0, int(serial)), nil
}

// DaysInPeriod returns the number of calendar days between start and end,
// both included. It returns 0 when end is before start.
func DaysInPeriod(start, end time.Time) int {
	s, e := Truncate(start), Truncate(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// IsLeap reports whether year is a leap year in the Gregorian calendar.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return MonthEnd(year, month).Day()
}

// MonthStart returns the first day of the month.
func MonthStart(year int, month time.Month) time.Time {
	return Date(year, month, 1)
}

// MonthEnd returns the last day of the month.
func MonthEnd(year int, month time.Month) time.Time {
	return Date(year, month+1, 0)
}

// StartOfYear returns January 1 of year.
func StartOfYear(year int) time.Time {
	return Date(year, time.January, 1)
}

// EndOfYear returns December 31 of year.
func EndOfYear(year int) time.Time {
	return Date(year, time.December, 31)
}

// AddMonths returns the first day of the month that is months after t's month.
func AddMonths(t time.Time, months int) time.Time {
	return Date(t.Year(), t.Month()+time.Month(months), 1)
}

// ShiftYears moves a date by the given number of years keeping month and
// day. February 29 maps to February 28 when the target year is not a leap
// year; the date never rolls over into March.
func ShiftYears(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	target := y + years
	if m == time.February && d == 29 && !IsLeap(target) {
		d = 28
	}
	return Date(target, m, d)
}

// SameMonthDayOrBefore reports whether t's month/day is on or before the
// month/day of ref, ignoring years.
func SameMonthDayOrBefore(t, ref time.Time) bool {
	if t.Month() != ref.Month() {
		return t.Month() < ref.Month()
	}
	return t.Day() <= ref.Day()
}
