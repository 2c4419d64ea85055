package breakdown

import (
	"testing"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"github.com/iwvelando/hotel-forecast/pkg/testutil"
)

func collapsedTypes(main ...string) Options {
	return Options{CollapseMinor: true, MainCategories: main, Mapping: DefaultTypeMapping}
}

func TestPivotByMonth(t *testing.T) {
	records := []record.RoomSaleRecord{
		testutil.Room("2024-02-03", "AUTRE", 2, 150),
		testutil.Room("2024-01-01", "GROUPES", 10, 1000),
		testutil.Room("2024-01-02", "INDIV PUBL DIRECT", 5, 600),
		testutil.Room("2024-02-03", "GROUPES", 20, 2000),
		testutil.Room("2023-12-31", "GROUPES", 70, 7000),
	}

	p, err := PivotByPeriod(records, 2024, ByMonth, collapsedTypes("GROUPES", "INDIV D"), capacity.Fixed(10))
	if err != nil {
		t.Fatalf("PivotByPeriod() error = %v", err)
	}
	expectedColumns := []string{"GROUPES", "INDIV D", "Other"}
	if len(p.Categories) != len(expectedColumns) {
		t.Fatalf("Categories = %v, expected %v", p.Categories, expectedColumns)
	}
	for i, c := range expectedColumns {
		if p.Categories[i] != c {
			t.Errorf("Categories[%d] = %q, expected %q", i, p.Categories[i], c)
		}
	}
	if len(p.Rows) != 2 || p.Rows[0].Label != "2024-01" || p.Rows[1].Label != "2024-02" {
		t.Fatalf("Rows = %+v, expected January then February", p.Rows)
	}

	jan, feb := p.Rows[0], p.Rows[1]
	if jan.Cells[0].Rooms != 10 || jan.Cells[1].Revenue != 600 || jan.Cells[2].Rooms != 0 {
		t.Errorf("January cells = %+v", jan.Cells)
	}
	if jan.Rooms != 15 || jan.Revenue != 1600 {
		t.Errorf("January totals = %d rooms, %v revenue", jan.Rooms, jan.Revenue)
	}
	testutil.AssertClose(t, "January occupancy", jan.OccupancyRate, 15.0/310*100, 1e-9)
	testutil.AssertClose(t, "January avg price", jan.AvgPrice, 1600.0/15, 1e-9)
	if feb.Cells[2].Category != "Other" || feb.Cells[2].Rooms != 2 || feb.Cells[2].Revenue != 150 {
		t.Errorf("February Other cell = %+v", feb.Cells[2])
	}
	testutil.AssertClose(t, "February occupancy", feb.OccupancyRate, 22.0/290*100, 1e-9)

	total := p.Total
	if total.Label != TotalLabel || total.Rooms != 37 || total.Revenue != 3750 {
		t.Errorf("Total = %+v", total)
	}
	if total.Cells[0].Rooms != 30 || total.Cells[1].Rooms != 5 || total.Cells[2].Revenue != 150 {
		t.Errorf("Total cells = %+v", total.Cells)
	}
	if total.Window.String() != "2024-01-01..2024-02-29" {
		t.Errorf("Total window = %s", total.Window)
	}
	testutil.AssertClose(t, "Total occupancy", total.OccupancyRate, 37.0/600*100, 1e-9)
}

func TestPivotByWeek(t *testing.T) {
	tests := []struct {
		name      string
		records   []record.RoomSaleRecord
		year      int
		labels    []string
		windows   []string
		occupancy []float64
	}{
		{
			name: "First week cut at January 1",
			records: []record.RoomSaleRecord{
				testutil.Room("2024-12-30", "GROUPES", 9, 900),
				testutil.Room("2025-01-01", "GROUPES", 7, 700),
				testutil.Room("2025-01-06", "GROUPES", 14, 1400),
			},
			year:      2025,
			labels:    []string{"2025-W01", "2025-W02"},
			windows:   []string{"2025-01-01..2025-01-05", "2025-01-06..2025-01-12"},
			occupancy: []float64{14, 20},
		},
		{
			name:      "Last week cut at December 31",
			records:   []record.RoomSaleRecord{testutil.Room("2024-12-30", "GROUPES", 4, 400)},
			year:      2024,
			labels:    []string{"2025-W01"},
			windows:   []string{"2024-12-30..2024-12-31"},
			occupancy: []float64{20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PivotByPeriod(tt.records, tt.year, ByWeek, Options{}, capacity.Fixed(10))
			if err != nil {
				t.Fatalf("PivotByPeriod() error = %v", err)
			}
			if len(p.Rows) != len(tt.labels) {
				t.Fatalf("len(Rows) = %d, expected %d", len(p.Rows), len(tt.labels))
			}
			for i, row := range p.Rows {
				if row.Label != tt.labels[i] || row.Window.String() != tt.windows[i] {
					t.Errorf("row %d = %s %s, expected %s %s", i, row.Label, row.Window, tt.labels[i], tt.windows[i])
				}
				testutil.AssertClose(t, row.Label+" occupancy", row.OccupancyRate, tt.occupancy[i], 1e-9)
			}
		})
	}
}

func TestPivotEmptyYearAndBadGranularity(t *testing.T) {
	p, err := PivotByPeriod(nil, 2024, ByMonth, Options{}, capacity.Fixed(10))
	if err != nil {
		t.Fatalf("PivotByPeriod() error = %v", err)
	}
	if len(p.Rows) != 0 || p.Total.Rooms != 0 || p.Total.OccupancyRate != 0 {
		t.Errorf("empty pivot = %+v", p)
	}

	if _, err := PivotByPeriod(nil, 2024, Granularity("day"), Options{}, capacity.Fixed(10)); err == nil {
		t.Error("PivotByPeriod() expected error for unknown granularity")
	}
}

func TestMonthOverYears(t *testing.T) {
	records := []record.RoomSaleRecord{
		testutil.Room("2024-03-01", "GROUPES", 10, 1000),
		testutil.Room("2024-03-02", "AUTRE", 2, 100),
		testutil.Room("2025-03-01", "GROUPES", 12, 1440),
		testutil.Room("2025-04-01", "GROUPES", 50, 5000),
		testutil.Room("2023-05-01", "GROUPES", 50, 5000),
	}

	recaps := MonthOverYears(records, time.March, collapsedTypes("GROUPES"))
	if len(recaps) != 3 {
		t.Fatalf("len(recaps) = %d, expected one per year", len(recaps))
	}

	if recaps[0].Year != 2023 || len(recaps[0].Entries) != 0 || recaps[0].Total.Revenue != 0 {
		t.Errorf("2023 recap = %+v, expected no March sales", recaps[0])
	}

	r2024 := recaps[1]
	if len(r2024.Entries) != 2 || r2024.Entries[0].Category != "GROUPES" || r2024.Entries[1].Category != "Other" {
		t.Fatalf("2024 entries = %+v", r2024.Entries)
	}
	if r2024.Total.Category != TotalLabel || r2024.Total.Revenue != 1100 || r2024.Total.RoomsSold != 12 {
		t.Errorf("2024 total = %+v", r2024.Total)
	}
	testutil.AssertClose(t, "2024 total avg price", r2024.Total.AvgPrice, 1100.0/12, 1e-9)
	testutil.AssertClose(t, "2024 GROUPES pct", r2024.Entries[0].PctOfTotal, 1000.0/1100*100, 1e-9)

	r2025 := recaps[2]
	if len(r2025.Entries) != 1 || r2025.Entries[0].AvgPrice != 120 || r2025.Total.PctOfTotal != 100 {
		t.Errorf("2025 recap = %+v", r2025)
	}
}
