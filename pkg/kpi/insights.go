package kpi

import (
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// MonthRevenue names a month and its revenue.
type MonthRevenue struct {
	Month   time.Month `json:"month"`
	Name    string     `json:"name"`
	Revenue float64    `json:"revenue"`
}

// Insight summarizes one year of data.
type Insight struct {
	Year          int          `json:"year"`
	BestMonth     MonthRevenue `json:"bestMonth"`
	WorstMonth    MonthRevenue `json:"worstMonth"`
	AvgOccupancy  float64      `json:"avgOccupancy"`
	CoveredWindow Window       `json:"coveredWindow"`
}

// Insights returns the best and worst months by revenue and the average
// occupancy from January 1 to the last recorded day of year. It returns nil
// when the year has no records. Ties go to the earliest month.
func Insights(records []record.RoomSaleRecord, year int, src capacity.Source) (*Insight, error) {
	yearRecords := record.ForYear(records, year)
	last, ok := record.LastDay(yearRecords)
	if !ok {
		return nil, nil
	}

	var revenue [13]float64
	var present [13]bool
	for _, r := range yearRecords {
		revenue[r.Month()] += r.CARoom
		present[r.Month()] = true
	}

	insight := &Insight{Year: year}
	first := true
	for m := time.January; m <= time.December; m++ {
		if !present[m] {
			continue
		}
		mr := MonthRevenue{Month: m, Name: m.String(), Revenue: revenue[m]}
		if first || mr.Revenue > insight.BestMonth.Revenue {
			insight.BestMonth = mr
		}
		if first || mr.Revenue < insight.WorstMonth.Revenue {
			insight.WorstMonth = mr
		}
		first = false
	}

	window := Window{Start: datetime.StartOfYear(year), End: last}
	res, err := Aggregate(yearRecords, window, src)
	if err != nil {
		return nil, err
	}
	insight.AvgOccupancy = res.OccupancyRate.Value
	insight.CoveredWindow = window
	return insight, nil
}
