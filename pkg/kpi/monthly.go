package kpi

import (
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// MonthlyResult is the Result of one calendar month.
type MonthlyResult struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	MonthName string     `json:"monthName"`
	Result    Result     `json:"result"`
}

// YearlyResult is the Result of one calendar year.
type YearlyResult struct {
	Year   int    `json:"year"`
	Result Result `json:"result"`
}

// Monthly returns one result per month of year that has records, in month
// order. Each month offers its full number of days, February 29 included in
// leap years.
func Monthly(records []record.RoomSaleRecord, year int, src capacity.Source) ([]MonthlyResult, error) {
	present := make(map[time.Month]bool)
	for _, r := range records {
		if r.Valid() && r.Year() == year {
			present[r.Month()] = true
		}
	}

	var out []MonthlyResult
	for m := time.January; m <= time.December; m++ {
		if !present[m] {
			continue
		}
		res, err := Aggregate(records, MonthWindow(year, m), src)
		if err != nil {
			return nil, err
		}
		out = append(out, MonthlyResult{Year: year, Month: m, MonthName: m.String(), Result: res})
	}
	return out, nil
}

// Yearly returns one full-year result per year present in records.
func Yearly(records []record.RoomSaleRecord, src capacity.Source) ([]YearlyResult, error) {
	years := record.Years(records)
	out := make([]YearlyResult, 0, len(years))
	for _, y := range years {
		res, err := Aggregate(records, YearWindow(y), src)
		if err != nil {
			return nil, err
		}
		out = append(out, YearlyResult{Year: y, Result: res})
	}
	return out, nil
}

// FilterYearToDate keeps the records whose month and day are on or before
// asOf's month and day, in every year. It is used to line up several years
// against the same point of the calendar.
func FilterYearToDate(records []record.RoomSaleRecord, asOf time.Time) []record.RoomSaleRecord {
	var out []record.RoomSaleRecord
	for _, r := range records {
		if r.Valid() && datetime.SameMonthDayOrBefore(r.Day, asOf) {
			out = append(out, r)
		}
	}
	return out
}
