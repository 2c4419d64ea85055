// Package kpi computes occupancy, pricing and revenue indicators over
// calendar windows and compares them period over period.
//
// Occupancy and RevPAR use the calendar span of the window as the day count,
// whether or not every day has a record: a window of 71 days offers 71 days
// of capacity even if the hotel only reported on 60 of them.
package kpi

import (
	"fmt"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Metric is one indicator value, optionally with its change against a
// comparison period.
type Metric struct {
	Value  float64 `json:"value"`
	Change *Change `json:"change,omitempty"`
}

// Result holds the indicators of one window.
type Result struct {
	Window         Window `json:"window"`
	Days           int    `json:"days"`
	AvailableRooms int    `json:"availableRooms"`
	TotalRevenue   Metric `json:"totalRevenue"`
	RoomsSold      Metric `json:"roomsSold"`
	OccupancyRate  Metric `json:"occupancyRate"`
	ADR            Metric `json:"adr"`
	RevPAR         Metric `json:"revpar"`
}

// Aggregate computes the indicators of records falling inside window.
// Capacity is resolved per calendar year so that a window spanning two years
// uses each year's room count for its own days.
func Aggregate(records []record.RoomSaleRecord, window Window, src capacity.Source) (Result, error) {
	if err := window.Validate(); err != nil {
		return Result{}, err
	}

	available, err := AvailableRooms(window, src)
	if err != nil {
		return Result{}, err
	}

	revenue := 0.0
	rooms := 0
	for _, r := range records {
		if !r.InRange(window.Start, window.End) {
			continue
		}
		revenue += r.CARoom
		rooms += r.NRooms
	}

	return Result{
		Window:         window,
		Days:           window.Days(),
		AvailableRooms: available,
		TotalRevenue:   Metric{Value: revenue},
		RoomsSold:      Metric{Value: float64(rooms)},
		OccupancyRate:  Metric{Value: mathutil.SafeDivide(float64(rooms), float64(available)) * 100},
		ADR:            Metric{Value: mathutil.SafeDivide(revenue, float64(rooms))},
		RevPAR:         Metric{Value: mathutil.SafeDivide(revenue, float64(available))},
	}, nil
}

// AvailableRooms returns the room-nights on offer in window: for each year
// the window touches, that year's days in the window times its capacity.
func AvailableRooms(window Window, src capacity.Source) (int, error) {
	if err := window.Validate(); err != nil {
		return 0, err
	}
	if src == nil {
		return 0, fmt.Errorf("no capacity source")
	}

	start := datetime.Truncate(window.Start)
	end := datetime.Truncate(window.End)
	total := 0
	for year := start.Year(); year <= end.Year(); year++ {
		from := datetime.StartOfYear(year)
		if from.Before(start) {
			from = start
		}
		to := datetime.EndOfYear(year)
		if to.After(end) {
			to = end
		}

		rooms, err := src.For(year)
		if err != nil {
			return 0, err
		}
		total += datetime.DaysInPeriod(from, to) * rooms
	}
	return total, nil
}

// DaysWithData counts distinct dates within window that have at least one
// record. Aggregate does not use it; it is provided for reports that need to
// show data coverage next to the calendar span.
func DaysWithData(records []record.RoomSaleRecord, window Window) int {
	seen := make(map[int64]struct{})
	for _, r := range records {
		if r.InRange(window.Start, window.End) {
			seen[r.Date().Unix()] = struct{}{}
		}
	}
	return len(seen)
}
