// Package occupancy counts sold-out days and builds daily occupancy series.
package occupancy

import (
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Day is the occupancy of a single calendar day.
type Day struct {
	Day           time.Time `json:"day"`
	RoomsSold     int       `json:"roomsSold"`
	Capacity      int       `json:"capacity"`
	OccupancyRate float64   `json:"occupancyRate"`
	Full          bool      `json:"full"`
}

// roomsByDay sums rooms sold per calendar day inside window.
func roomsByDay(records []record.RoomSaleRecord, window kpi.Window) map[time.Time]int {
	sold := make(map[time.Time]int)
	for _, r := range records {
		if r.InRange(window.Start, window.End) {
			sold[r.Date()] += r.NRooms
		}
	}
	return sold
}

// CountFullOccupancyDays counts the days from January 1 of year through upTo
// on which the rooms sold reach the year's capacity. upTo is clamped to
// December 31 of year; an upTo before January 1 yields 0. Days without
// records count as zero rooms sold.
func CountFullOccupancyDays(records []record.RoomSaleRecord, year int, upTo time.Time, src capacity.Source) (int, error) {
	rooms, err := src.For(year)
	if err != nil {
		return 0, err
	}

	start := datetime.StartOfYear(year)
	end := datetime.Truncate(upTo)
	if end.After(datetime.EndOfYear(year)) {
		end = datetime.EndOfYear(year)
	}
	if end.Before(start) {
		return 0, nil
	}

	count := 0
	for _, sold := range roomsByDay(records, kpi.Window{Start: start, End: end}) {
		if sold >= rooms {
			count++
		}
	}
	return count, nil
}

// CompareCounts returns the percentage change between two full-occupancy day
// counts, Undefined when the baseline is zero and current is not.
func CompareCounts(current, baseline int) kpi.Change {
	return kpi.PercentChange(float64(current), float64(baseline))
}

// Daily returns one entry per calendar day of window, including days without
// records.
func Daily(records []record.RoomSaleRecord, window kpi.Window, src capacity.Source) ([]Day, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	sold := roomsByDay(records, window)
	days := make([]Day, 0, window.Days())
	end := datetime.Truncate(window.End)
	for d := datetime.Truncate(window.Start); !d.After(end); d = d.AddDate(0, 0, 1) {
		rooms, err := src.For(d.Year())
		if err != nil {
			return nil, err
		}
		n := sold[d]
		days = append(days, Day{
			Day:           d,
			RoomsSold:     n,
			Capacity:      rooms,
			OccupancyRate: mathutil.SafeDivide(float64(n), float64(rooms)) * 100,
			Full:          n >= rooms,
		})
	}
	return days, nil
}
