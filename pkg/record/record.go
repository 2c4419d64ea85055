// Package record defines the canonical in-memory representation of hotel
// room-sales observations and monthly financial periods.
package record

import (
	"sort"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
)

// RoomSaleRecord is one room-sale observation for a day and category.
type RoomSaleRecord struct {
	Day        time.Time `json:"day" yaml:"day"`
	Type       string    `json:"type" yaml:"type"`
	SousType   string    `json:"sousType,omitempty" yaml:"sousType,omitempty"`
	NRooms     int       `json:"nRooms" yaml:"nRooms"`
	NCustomers int       `json:"nCustomers" yaml:"nCustomers"`
	CARoom     float64   `json:"caRoom" yaml:"caRoom"`
	PM         float64   `json:"pm" yaml:"pm"`
	SourceFile string    `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`
}

// Valid reports whether the record carries a usable calendar date.
func (r RoomSaleRecord) Valid() bool {
	return !r.Day.IsZero()
}

// Date returns the record day as a calendar date.
func (r RoomSaleRecord) Date() time.Time {
	return datetime.Truncate(r.Day)
}

// Year returns the calendar year of the record.
func (r RoomSaleRecord) Year() int {
	return r.Day.Year()
}

// Month returns the calendar month of the record.
func (r RoomSaleRecord) Month() time.Month {
	return r.Day.Month()
}

// MonthName returns the English month name, e.g. "March".
func (r RoomSaleRecord) MonthName() string {
	return r.Day.Month().String()
}

// YearMonth returns the year-month key, e.g. "2025-03".
func (r RoomSaleRecord) YearMonth() string {
	return r.Day.Format(datetime.MonthLayout)
}

// DayOfWeek returns the weekday of the record.
func (r RoomSaleRecord) DayOfWeek() time.Weekday {
	return r.Day.Weekday()
}

// AveragePrice returns the supplied average price, or derives it from
// revenue and rooms when none was supplied.
func (r RoomSaleRecord) AveragePrice() float64 {
	if r.PM != 0 {
		return r.PM
	}
	return mathutil.SafeDivide(r.CARoom, float64(r.NRooms))
}

// InRange reports whether the record day falls within [start, end].
func (r RoomSaleRecord) InRange(start, end time.Time) bool {
	if !r.Valid() {
		return false
	}
	d := r.Date()
	return !d.Before(datetime.Truncate(start)) && !d.After(datetime.Truncate(end))
}

// FinancialPeriod is one monthly financial observation used as forecast baseline.
type FinancialPeriod struct {
	Date            time.Time `json:"date" yaml:"date"`
	Revenue         float64   `json:"revenue" yaml:"revenue"`
	Cost            float64   `json:"cost" yaml:"cost"`
	RevenueCategory string    `json:"revenueCategory,omitempty" yaml:"revenueCategory,omitempty"`
	CostCategory    string    `json:"costCategory,omitempty" yaml:"costCategory,omitempty"`
}

// EBITDA returns revenue minus cost.
func (p FinancialPeriod) EBITDA() float64 {
	return p.Revenue - p.Cost
}

// ProfitMargin returns EBITDA over revenue, or 0 when there is no revenue.
func (p FinancialPeriod) ProfitMargin() float64 {
	return mathutil.SafeDivide(p.EBITDA(), p.Revenue)
}

// Dataset is an immutable snapshot handed to the engine.
type Dataset struct {
	RoomSales []RoomSaleRecord  `json:"roomSales"`
	Periods   []FinancialPeriod `json:"periods,omitempty"`
}

// InWindow returns the valid room-sale records within [start, end]. The
// returned slice is newly allocated.
func InWindow(records []RoomSaleRecord, start, end time.Time) []RoomSaleRecord {
	var out []RoomSaleRecord
	for _, r := range records {
		if r.InRange(start, end) {
			out = append(out, r)
		}
	}
	return out
}

// ForYear returns the valid room-sale records of the given year.
func ForYear(records []RoomSaleRecord, year int) []RoomSaleRecord {
	var out []RoomSaleRecord
	for _, r := range records {
		if r.Valid() && r.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

// LastDay returns the most recent valid record day and whether one exists.
func LastDay(records []RoomSaleRecord) (time.Time, bool) {
	var last time.Time
	found := false
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		if !found || r.Date().After(last) {
			last = r.Date()
			found = true
		}
	}
	return last, found
}

// Years returns the distinct years present in records in ascending order.
func Years(records []RoomSaleRecord) []int {
	seen := make(map[int]struct{})
	for _, r := range records {
		if r.Valid() {
			seen[r.Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// SortedPeriods returns a copy of periods ordered by date. Periods sharing a
// date keep their input order.
func SortedPeriods(periods []FinancialPeriod) []FinancialPeriod {
	out := make([]FinancialPeriod, len(periods))
	copy(out, periods)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
