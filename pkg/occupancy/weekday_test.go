package occupancy

import (
	"testing"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"github.com/iwvelando/hotel-forecast/pkg/testutil"
)

func TestWeekdayMonthGrid(t *testing.T) {
	records := []record.RoomSaleRecord{
		// 2024-01-01 and 2024-01-08 are Mondays.
		testutil.Room("2024-01-01", "GROUPES", 10, 1000),
		testutil.Room("2024-01-08", "GROUPES", 20, 2000),
		testutil.Room("2024-01-02", "GROUPES", 5, 500),
		testutil.Room("2024-01-14", "GROUPES", 7, 700),
		testutil.Room("2023-06-05", "GROUPES", 40, 4000),
	}

	grid, err := WeekdayMonthGrid(records, 2024, capacity.Fixed(20))
	if err != nil {
		t.Fatalf("WeekdayMonthGrid() error = %v", err)
	}
	if len(grid) != 7 {
		t.Fatalf("len(grid) = %d, expected one January cell per weekday", len(grid))
	}
	for i, cell := range grid {
		if cell.Weekday != Weekdays[i] || cell.Month != time.January || cell.Days != 2 {
			t.Errorf("grid[%d] = %+v, expected %v of January over 2 days", i, cell, Weekdays[i])
		}
	}

	expected := map[time.Weekday]float64{
		time.Monday:    75,
		time.Tuesday:   12.5,
		time.Wednesday: 0,
		time.Sunday:    17.5,
	}
	for _, cell := range grid {
		if want, ok := expected[cell.Weekday]; ok {
			testutil.AssertClose(t, cell.Weekday.String()+" occupancy", cell.OccupancyRate, want, 1e-9)
		}
	}

	empty, err := WeekdayMonthGrid(records, 2022, capacity.Fixed(20))
	if err != nil || empty != nil {
		t.Errorf("WeekdayMonthGrid() for an empty year = %v, %v", empty, err)
	}
}

func TestByWeekday(t *testing.T) {
	day := func(s string, rooms, customers int) record.RoomSaleRecord {
		return record.RoomSaleRecord{Day: datetime.MustParseDate(s), Type: "GROUPES", NRooms: rooms, NCustomers: customers}
	}
	records := []record.RoomSaleRecord{
		day("2025-03-07", 30, 45), // Friday
		day("2025-03-08", 40, 90), // Saturday
		day("2025-03-08", 10, 10),
		day("2025-03-01", 99, 99), // outside the window
	}

	w := kpi.Window{Start: datetime.MustParseDate("2025-03-03"), End: datetime.MustParseDate("2025-03-09")}
	stats := ByWeekday(records, w)
	if len(stats) != 7 || stats[0].Weekday != time.Monday || stats[6].Weekday != time.Sunday {
		t.Fatalf("ByWeekday() = %+v, expected Monday through Sunday", stats)
	}

	sat := stats[5]
	if sat.RoomsSold != 50 || sat.Customers != 100 {
		t.Errorf("Saturday = %+v", sat)
	}
	testutil.AssertClose(t, "Saturday customers per room", sat.CustomersPerRoom, 2, 1e-9)
	testutil.AssertClose(t, "Friday customers per room", stats[4].CustomersPerRoom, 1.5, 1e-9)
	if stats[0].RoomsSold != 0 || stats[0].CustomersPerRoom != 0 {
		t.Errorf("Monday = %+v, expected zero", stats[0])
	}
}
