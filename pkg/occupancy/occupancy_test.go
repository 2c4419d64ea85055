package occupancy

import (
	"errors"
	"testing"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"github.com/iwvelando/hotel-forecast/pkg/testutil"
)

func sampleYear() []record.RoomSaleRecord {
	return []record.RoomSaleRecord{
		// Jan 1: split across categories, exactly full.
		testutil.Room("2025-01-01", "GROUPES", 40, 4000),
		testutil.Room("2025-01-01", "INDIV D", 30, 3300),
		// Jan 2: one short.
		testutil.Room("2025-01-02", "GROUPES", 69, 6900),
		// Jan 5: oversold.
		testutil.Room("2025-01-05", "GROUPES", 75, 7500),
		// Mar 10: full.
		testutil.Room("2025-03-10", "NEGOCIES", 70, 8400),
		// Prior year, full but outside the counted year.
		testutil.Room("2024-12-31", "GROUPES", 70, 7000),
	}
}

func TestCountFullOccupancyDays(t *testing.T) {
	tests := []struct {
		name     string
		upTo     string
		expected int
	}{
		{"Before any data", "2024-12-31", 0},
		{"First day only", "2025-01-01", 1},
		{"Oversold day counts", "2025-01-05", 2},
		{"Through March", "2025-03-31", 3},
		{"Clamped past year end", "2026-06-30", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountFullOccupancyDays(sampleYear(), 2025, datetime.MustParseDate(tt.upTo), capacity.Fixed(70))
			if err != nil {
				t.Fatalf("CountFullOccupancyDays() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("CountFullOccupancyDays(upTo=%s) = %d, expected %d", tt.upTo, got, tt.expected)
			}
		})
	}
}

func TestCountFullOccupancyDaysMonotonic(t *testing.T) {
	records := sampleYear()
	previous := 0
	for d := datetime.MustParseDate("2025-01-01"); d.Year() == 2025; d = d.AddDate(0, 0, 1) {
		got, err := CountFullOccupancyDays(records, 2025, d, capacity.Fixed(70))
		if err != nil {
			t.Fatalf("CountFullOccupancyDays() error = %v", err)
		}
		if got < previous {
			t.Fatalf("count decreased at %s: %d < %d", d.Format(datetime.DateLayout), got, previous)
		}
		previous = got
	}
}

func TestCountFullOccupancyDaysUsesYearCapacity(t *testing.T) {
	src, err := capacity.NewFromConfig(70, map[int]int{2025: 80})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	got, err := CountFullOccupancyDays(sampleYear(), 2025, datetime.MustParseDate("2025-12-31"), src)
	if err != nil {
		t.Fatalf("CountFullOccupancyDays() error = %v", err)
	}
	if got != 0 {
		t.Errorf("CountFullOccupancyDays() = %d, expected 0 with capacity 80", got)
	}
}

func TestCountFullOccupancyDaysConfigurationError(t *testing.T) {
	_, err := CountFullOccupancyDays(sampleYear(), 2025, datetime.MustParseDate("2025-12-31"), capacity.Fixed(0))
	var cfgErr *capacity.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestCompareCounts(t *testing.T) {
	if c := CompareCounts(3, 2); c.Undefined || c.Percent != 50 {
		t.Errorf("CompareCounts(3, 2) = %+v, expected 50%%", c)
	}
	if c := CompareCounts(3, 0); !c.Undefined {
		t.Errorf("CompareCounts(3, 0) = %+v, expected undefined", c)
	}
	if c := CompareCounts(0, 0); c.Undefined || c.Percent != 0 {
		t.Errorf("CompareCounts(0, 0) = %+v, expected 0", c)
	}
}

func TestDaily(t *testing.T) {
	w, err := kpi.NewWindow(datetime.MustParseDate("2025-01-01"), datetime.MustParseDate("2025-01-05"))
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}
	days, err := Daily(sampleYear(), w, capacity.Fixed(70))
	if err != nil {
		t.Fatalf("Daily() error = %v", err)
	}
	if len(days) != 5 {
		t.Fatalf("Daily() returned %d days, expected 5", len(days))
	}

	expected := []struct {
		rooms int
		full  bool
	}{
		{70, true},
		{69, false},
		{0, false},
		{0, false},
		{75, true},
	}
	for i, e := range expected {
		if days[i].RoomsSold != e.rooms || days[i].Full != e.full {
			t.Errorf("day %d = %+v, expected rooms %d full %v", i, days[i], e.rooms, e.full)
		}
	}
	if days[0].OccupancyRate != 100 {
		t.Errorf("day 0 occupancy = %v, expected 100", days[0].OccupancyRate)
	}
}
