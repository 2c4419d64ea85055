package breakdown

import (
	"math"
	"testing"

	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"github.com/iwvelando/hotel-forecast/pkg/testutil"
)

func march(t *testing.T) kpi.Window {
	t.Helper()
	return kpi.MonthWindow(2025, 3)
}

func roomSales() record.Dataset {
	return record.Dataset{RoomSales: []record.RoomSaleRecord{
		testutil.Room("2025-03-01", "GROUPES", 20, 2000),
		testutil.Room("2025-03-01", "INDIV PUBL DIRECT", 10, 1200),
		testutil.Room("2025-03-02", "NEGOCIES", 5, 650),
		testutil.Room("2025-03-02", "AUTRE", 2, 150),
		testutil.Room("2025-03-03", "B", 0, 0),
		testutil.Room("2025-03-03", "GROUPES", 10, 1000),
		// Outside the window.
		testutil.Room("2025-04-01", "GROUPES", 50, 5000),
	}}
}

func TestBreakdownByType(t *testing.T) {
	entries, err := Breakdown(roomSales(), Type, march(t), Options{})
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}

	expected := []Entry{
		{Category: "GROUPES", Revenue: 3000, RoomsSold: 30, AvgPrice: 100},
		{Category: "INDIV PUBL DIRECT", Revenue: 1200, RoomsSold: 10, AvgPrice: 120},
		{Category: "NEGOCIES", Revenue: 650, RoomsSold: 5, AvgPrice: 130},
		{Category: "AUTRE", Revenue: 150, RoomsSold: 2, AvgPrice: 75},
		{Category: "B", Revenue: 0, RoomsSold: 0, AvgPrice: 0},
	}
	if len(entries) != len(expected) {
		t.Fatalf("Breakdown() returned %d entries, expected %d: %+v", len(entries), len(expected), entries)
	}
	for i, e := range expected {
		got := entries[i]
		if got.Category != e.Category || got.Revenue != e.Revenue || got.RoomsSold != e.RoomsSold || got.AvgPrice != e.AvgPrice {
			t.Errorf("entry %d = %+v, expected %+v", i, got, e)
		}
	}
	testutil.AssertClose(t, "GROUPES pct", entries[0].PctOfTotal, 3000.0/5000*100, 1e-9)
}

func TestBreakdownPercentagesSumTo100(t *testing.T) {
	for _, opts := range []Options{
		{},
		{CollapseMinor: true, MainCategories: []string{"GROUPES"}},
		{Mapping: DefaultTypeMapping},
	} {
		entries, err := Breakdown(roomSales(), Type, march(t), opts)
		if err != nil {
			t.Fatalf("Breakdown() error = %v", err)
		}
		sum := 0.0
		for _, e := range entries {
			sum += e.PctOfTotal
		}
		if math.Abs(sum-100) > 1e-9 {
			t.Errorf("Σ PctOfTotal = %v with options %+v, expected 100", sum, opts)
		}
	}
}

func TestBreakdownCollapseMinor(t *testing.T) {
	opts := Options{
		CollapseMinor:  true,
		MainCategories: []string{"NEGOCIES", "GROUPES", "SEMINAIRES"},
	}
	entries, err := Breakdown(roomSales(), Type, march(t), opts)
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Breakdown() returned %d entries, expected 3: %+v", len(entries), entries)
	}
	if entries[0].Category != "NEGOCIES" || entries[1].Category != "GROUPES" || entries[2].Category != "Other" {
		t.Errorf("order = %s, %s, %s; expected NEGOCIES, GROUPES, Other",
			entries[0].Category, entries[1].Category, entries[2].Category)
	}

	other := entries[2]
	if other.Revenue != 1350 {
		t.Errorf("Other revenue = %v, expected 1350", other.Revenue)
	}
	if other.RoomsSold != 12 {
		t.Errorf("Other rooms = %d, expected 12", other.RoomsSold)
	}
	if other.AvgPrice != 112.5 {
		t.Errorf("Other avg price = %v, expected 112.5", other.AvgPrice)
	}
}

func TestBreakdownWithMapping(t *testing.T) {
	entries, err := Breakdown(roomSales(), Type, march(t), Options{Mapping: DefaultTypeMapping})
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}

	byCategory := make(map[string]Entry)
	for _, e := range entries {
		byCategory[e.Category] = e
	}
	if _, ok := byCategory["INDIV D"]; !ok {
		t.Error("expected INDIV PUBL DIRECT to be mapped to INDIV D")
	}
	if got := byCategory["OTHER"]; got.Revenue != 150 || got.RoomsSold != 2 {
		t.Errorf("OTHER = %+v, expected AUTRE and B folded together", got)
	}
}

func TestBreakdownFinancialDimensions(t *testing.T) {
	ds := record.Dataset{Periods: []record.FinancialPeriod{
		{Date: datetime.MustParseDate("2025-03-31"), Revenue: 8000, Cost: 3000, RevenueCategory: "Rooms", CostCategory: "Staff"},
		{Date: datetime.MustParseDate("2025-03-31"), Revenue: 2000, Cost: 1000, RevenueCategory: "Food & Beverage", CostCategory: "Energy"},
		{Date: datetime.MustParseDate("2025-02-28"), Revenue: 9999, Cost: 9999, RevenueCategory: "Rooms", CostCategory: "Staff"},
	}}

	revenue, err := Breakdown(ds, RevenueCategory, march(t), Options{})
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}
	if len(revenue) != 2 || revenue[0].Revenue != 8000 || revenue[0].PctOfTotal != 80 {
		t.Errorf("revenue breakdown = %+v", revenue)
	}
	if revenue[0].AvgPrice != 0 {
		t.Errorf("AvgPrice without rooms = %v, expected 0", revenue[0].AvgPrice)
	}

	cost, err := Breakdown(ds, CostCategory, march(t), Options{})
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}
	if len(cost) != 2 || cost[0].Category != "Staff" || cost[0].Revenue != 3000 || cost[0].PctOfTotal != 75 {
		t.Errorf("cost breakdown = %+v", cost)
	}
}

func TestBreakdownZeroTotal(t *testing.T) {
	ds := record.Dataset{RoomSales: []record.RoomSaleRecord{testutil.Room("2025-03-01", "B", 0, 0)}}
	entries, err := Breakdown(ds, Type, march(t), Options{})
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}
	if len(entries) != 1 || entries[0].PctOfTotal != 0 {
		t.Errorf("entries = %+v, expected a single zero-percent entry", entries)
	}
}

func TestParseDimension(t *testing.T) {
	for _, s := range []string{"type", "sous_type", "revenue_category", "cost_category"} {
		if _, err := ParseDimension(s); err != nil {
			t.Errorf("ParseDimension(%q) error = %v", s, err)
		}
	}
	if _, err := ParseDimension("segment"); err == nil {
		t.Error("ParseDimension(segment) should fail")
	}
}

func TestMappingApply(t *testing.T) {
	tests := []struct {
		name     string
		mapping  Mapping
		raw      string
		expected string
	}{
		{"Known", DefaultTypeMapping, "INDIV PUBL INDIRECT", "INDIV I"},
		{"Trimmed", DefaultTypeMapping, " GROUPES ", "GROUPES"},
		{"Unknown to fallback", DefaultTypeMapping, "SEMINAIRES", "OTHER"},
		{"Unknown kept without fallback", Mapping{Table: map[string]string{"A": "B"}}, "C", "C"},
		{"Blank without fallback", Mapping{Table: map[string]string{"A": "B"}}, "", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mapping.Apply(tt.raw); got != tt.expected {
				t.Errorf("Apply(%q) = %q, expected %q", tt.raw, got, tt.expected)
			}
		})
	}
}
