package occupancy

import (
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Weekdays lists the days of the week Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayMonth is the occupancy of one day of the week within one month.
// Days counts the calendar dates behind the cell.
type WeekdayMonth struct {
	Weekday       time.Weekday `json:"weekday"`
	Month         time.Month   `json:"month"`
	Days          int          `json:"days"`
	RoomsSold     int          `json:"roomsSold"`
	OccupancyRate float64      `json:"occupancyRate"`
}

// WeekdayMonthGrid returns the occupancy of every weekday and month pair of
// year, from January 1 through the last recorded day. Cells come Monday
// first, then by month; pairs without a calendar date are left out. It
// returns nil when year has no records.
func WeekdayMonthGrid(records []record.RoomSaleRecord, year int, src capacity.Source) ([]WeekdayMonth, error) {
	yearRecords := record.ForYear(records, year)
	last, ok := record.LastDay(yearRecords)
	if !ok {
		return nil, nil
	}
	rooms, err := src.For(year)
	if err != nil {
		return nil, err
	}

	var days, sold [7][13]int
	for d := datetime.StartOfYear(year); !d.After(last); d = d.AddDate(0, 0, 1) {
		days[d.Weekday()][d.Month()]++
	}
	for _, r := range yearRecords {
		sold[r.DayOfWeek()][r.Month()] += r.NRooms
	}

	var out []WeekdayMonth
	for _, wd := range Weekdays {
		for m := time.January; m <= time.December; m++ {
			n := days[wd][m]
			if n == 0 {
				continue
			}
			out = append(out, WeekdayMonth{
				Weekday:       wd,
				Month:         m,
				Days:          n,
				RoomsSold:     sold[wd][m],
				OccupancyRate: mathutil.SafeDivide(float64(sold[wd][m]), float64(n*rooms)) * 100,
			})
		}
	}
	return out, nil
}

// WeekdayStats sums the rooms and guests sold on one day of the week.
type WeekdayStats struct {
	Weekday          time.Weekday `json:"weekday"`
	RoomsSold        int          `json:"roomsSold"`
	Customers        int          `json:"customers"`
	CustomersPerRoom float64      `json:"customersPerRoom"`
}

// ByWeekday returns one entry per day of the week, Monday first, for the
// records inside window.
func ByWeekday(records []record.RoomSaleRecord, window kpi.Window) []WeekdayStats {
	var rooms, customers [7]int
	for _, r := range records {
		if !r.InRange(window.Start, window.End) {
			continue
		}
		rooms[r.DayOfWeek()] += r.NRooms
		customers[r.DayOfWeek()] += r.NCustomers
	}

	out := make([]WeekdayStats, 0, len(Weekdays))
	for _, wd := range Weekdays {
		out = append(out, WeekdayStats{
			Weekday:          wd,
			RoomsSold:        rooms[wd],
			Customers:        customers[wd],
			CustomersPerRoom: mathutil.SafeDivide(float64(customers[wd]), float64(rooms[wd])),
		})
	}
	return out
}
