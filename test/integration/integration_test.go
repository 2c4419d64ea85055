package integration

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/hotel-forecast/internal/budgetstore"
	"github.com/iwvelando/hotel-forecast/internal/config"
	"github.com/iwvelando/hotel-forecast/internal/ingest"
	"github.com/iwvelando/hotel-forecast/internal/report"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/occupancy"
	"github.com/iwvelando/hotel-forecast/pkg/output"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"github.com/iwvelando/hotel-forecast/pkg/testutil"
	"go.uber.org/zap"
)

const configPath = "../config.yaml"

// buildReport runs the same pipeline as the CLI against the repository test
// data, caching budgets under budgetDir.
func buildReport(t testing.TB, budgetDir string) (*report.Report, record.Dataset) {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	resolver, err := conf.Resolver()
	if err != nil {
		t.Fatalf("Resolver() error = %v", err)
	}
	opts, err := report.OptionsFromConfig(conf)
	if err != nil {
		t.Fatalf("OptionsFromConfig() error = %v", err)
	}
	opts.Budgets = budgetstore.New(logger, budgetDir)

	resolve := func(paths []string) []string {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			out = append(out, filepath.Join("..", p))
		}
		return out
	}
	loader := ingest.NewLoader(logger, ingest.Options{HeaderRow: conf.Data.HeaderRow, Sheet: conf.Data.Sheet})
	ds, err := loader.LoadDataset(context.Background(), resolve(conf.Data.RoomSales), resolve(conf.Data.Financials))
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	rep, err := report.GetReport(logger, ds, resolver, opts)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	return rep, ds
}

// TestMainIntegrationBaseline checks the report of the repository test data
// against values computed by hand from the generated exports.
func TestMainIntegrationBaseline(t *testing.T) {
	rep, ds := buildReport(t, t.TempDir())

	// 2024-01-01..2024-03-31 and 2025-01-01..2025-03-12, two segments a day
	// plus AUTRE on the first of each month.
	if len(ds.RoomSales) != 2*91+3+2*71+3 {
		t.Errorf("len(RoomSales) = %d", len(ds.RoomSales))
	}
	if len(ds.Periods) != 12 {
		t.Errorf("len(Periods) = %d, expected 12", len(ds.Periods))
	}

	if rep.Hotel != "Hotel du Parc" || rep.Year != 2025 {
		t.Errorf("Hotel/Year = %q/%d", rep.Hotel, rep.Year)
	}
	if !rep.AsOf.Equal(time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("AsOf = %v", rep.AsOf)
	}
	if rep.DaysWithData != 71 {
		t.Errorf("DaysWithData = %d, expected 71", rep.DaysWithData)
	}

	current := rep.YearToDate.Current
	baseline := rep.YearToDate.Baseline
	if current.Days != 71 || baseline.Days != 72 {
		t.Errorf("Days = %d/%d, expected 71/72", current.Days, baseline.Days)
	}
	if current.AvailableRooms != 71*70 {
		t.Errorf("AvailableRooms = %d, expected %d", current.AvailableRooms, 71*70)
	}
	testutil.AssertClose(t, "TotalRevenue", current.TotalRevenue.Value, 455270, 0.01)
	testutil.AssertClose(t, "baseline TotalRevenue", baseline.TotalRevenue.Value, 411450, 0.01)
	testutil.AssertClose(t, "RoomsSold", current.RoomsSold.Value, 4244, 0)
	testutil.AssertClose(t, "OccupancyRate", current.OccupancyRate.Value, 85.39, 0.01)
	testutil.AssertClose(t, "baseline OccupancyRate", baseline.OccupancyRate.Value, 81.67, 0.01)
	testutil.AssertClose(t, "ADR", current.ADR.Value, 107.27, 0.01)
	if c := current.TotalRevenue.Change; c == nil || c.Undefined {
		t.Fatalf("TotalRevenue.Change = %+v", c)
	} else {
		testutil.AssertClose(t, "TotalRevenue.Change", c.Percent, 10.65, 0.01)
	}

	// One sold-out Saturday per week in both windows.
	if rep.FullOccupancy.Current != 10 || rep.FullOccupancy.Baseline != 10 {
		t.Errorf("FullOccupancy = %+v, expected 10/10", rep.FullOccupancy)
	}
	if rep.FullOccupancy.Change.Undefined || rep.FullOccupancy.Change.Percent != 0 {
		t.Errorf("FullOccupancy.Change = %+v, expected 0", rep.FullOccupancy.Change)
	}

	if len(rep.Monthly) != 3 {
		t.Errorf("len(Monthly) = %d, expected January to March", len(rep.Monthly))
	}

	if len(rep.Breakdowns) != 3 {
		t.Fatalf("len(Breakdowns) = %d, expected 3", len(rep.Breakdowns))
	}
	byType := rep.Breakdowns[0]
	expected := []struct {
		category string
		revenue  float64
		rooms    int
	}{
		{"GROUPES", 238560, 2272},
		{"INDIV D", 216260, 1966},
		{constants.OtherCategory, 450, 6},
	}
	if len(byType.Entries) != len(expected) {
		t.Fatalf("type breakdown = %+v", byType.Entries)
	}
	pct := 0.0
	for i, want := range expected {
		got := byType.Entries[i]
		if got.Category != want.category || got.RoomsSold != want.rooms {
			t.Errorf("entry %d = %+v, expected %s with %d rooms", i, got, want.category, want.rooms)
		}
		testutil.AssertClose(t, want.category+" revenue", got.Revenue, want.revenue, 0.01)
		pct += got.PctOfTotal
	}
	testutil.AssertClose(t, "Σ PctOfTotal", pct, 100, 1e-6)

	// Financial breakdowns cover 2025 only and the exports stop in 2024.
	for _, b := range rep.Breakdowns[1:] {
		if len(b.Entries) != 0 {
			t.Errorf("%s breakdown = %+v, expected empty", b.Dimension, b.Entries)
		}
	}

	if len(rep.Forecast) != 12 || rep.ForecastSummary == nil {
		t.Fatalf("Forecast = %d points, summary %v", len(rep.Forecast), rep.ForecastSummary)
	}
	if !rep.Forecast[0].Date.Equal(time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first forecast month = %v, expected January 2025", rep.Forecast[0].Date)
	}

	if rep.Budget.Year != 2025 || len(rep.Budget.Lines) != 12 || !rep.Budget.Generated {
		t.Fatalf("Budget = year %d, %d lines, generated %v", rep.Budget.Year, len(rep.Budget.Lines), rep.Budget.Generated)
	}
	jan := rep.Budget.Lines[0]
	testutil.AssertClose(t, "January budget revenue", jan.Revenue, 185482.5, 0.01)
	testutil.AssertClose(t, "January budget rooms", jan.Rooms, 1767, 0)
	if rep.Budget.Lines[6].Revenue != 0 {
		t.Errorf("July budget = %+v, expected zero without history", rep.Budget.Lines[6])
	}
}

// TestSeriesAndRecaps checks the yearly, daily, weekday and pivot sections
// of the repository test data.
func TestSeriesAndRecaps(t *testing.T) {
	rep, _ := buildReport(t, t.TempDir())

	if len(rep.Yearly) != 2 {
		t.Fatalf("len(Yearly) = %d, expected 2", len(rep.Yearly))
	}
	testutil.AssertClose(t, "2024 revenue", rep.Yearly[0].Result.TotalRevenue.Value, 520450, 0.01)
	testutil.AssertClose(t, "2024 rooms", rep.Yearly[0].Result.RoomsSold.Value, 5206, 0)
	testutil.AssertClose(t, "2025 revenue", rep.Yearly[1].Result.TotalRevenue.Value, 455270, 0.01)

	// The prior-year months stop at March 12 and add up to the baseline.
	if len(rep.PriorYearMonthly) != 3 {
		t.Fatalf("len(PriorYearMonthly) = %d, expected 3", len(rep.PriorYearMonthly))
	}
	testutil.AssertClose(t, "prior March revenue", rep.PriorYearMonthly[2].Result.TotalRevenue.Value, 69150, 0.01)
	sum := 0.0
	for _, m := range rep.PriorYearMonthly {
		sum += m.Result.TotalRevenue.Value
	}
	testutil.AssertClose(t, "prior months total", sum, rep.YearToDate.Baseline.TotalRevenue.Value, 0.01)

	if len(rep.Daily) != 71 {
		t.Fatalf("len(Daily) = %d, expected 71", len(rep.Daily))
	}
	full := 0
	for _, d := range rep.Daily {
		if d.Full {
			full++
		}
	}
	if full != rep.FullOccupancy.Current || !rep.Daily[3].Full {
		t.Errorf("full days in Daily = %d, expected %d including Saturday January 4", full, rep.FullOccupancy.Current)
	}

	var saturdayJanuary *occupancy.WeekdayMonth
	for i, c := range rep.WeekdayGrid {
		if c.Weekday == time.Saturday && c.Month == time.January {
			saturdayJanuary = &rep.WeekdayGrid[i]
		}
	}
	if saturdayJanuary == nil || saturdayJanuary.Days != 4 {
		t.Fatalf("Saturday January cell = %+v", saturdayJanuary)
	}
	testutil.AssertClose(t, "Saturday January occupancy", saturdayJanuary.OccupancyRate, 100, 1e-9)

	sat := rep.Weekdays[5]
	if sat.Weekday != time.Saturday || sat.RoomsSold != 704 || sat.Customers != 1024 {
		t.Errorf("Saturday stats = %+v", sat)
	}

	pivot := rep.MonthlyPivot
	if strings.Join(pivot.Categories, ",") != "GROUPES,INDIV D,Other" || len(pivot.Rows) != 3 {
		t.Fatalf("MonthlyPivot = %v with %d rows", pivot.Categories, len(pivot.Rows))
	}
	testutil.AssertClose(t, "March OR", pivot.Rows[2].OccupancyRate, 722.0/(31*70)*100, 1e-9)
	testutil.AssertClose(t, "pivot total rooms", float64(pivot.Total.Rooms), 4244, 0)
	testutil.AssertClose(t, "pivot total OR", pivot.Total.OccupancyRate, 4244.0/(90*70)*100, 1e-9)
	if len(rep.WeeklyPivot.Rows) != 11 {
		t.Errorf("len(WeeklyPivot.Rows) = %d, expected 11", len(rep.WeeklyPivot.Rows))
	}

	recap := rep.MonthRecap
	if recap.Month != time.March || len(recap.Years) != 2 {
		t.Fatalf("MonthRecap = %+v", recap)
	}
	testutil.AssertClose(t, "March 2024 revenue", recap.Years[0].Total.Revenue, 178150, 0.01)
	testutil.AssertClose(t, "March 2025 rooms", float64(recap.Years[1].Total.RoomsSold), 722, 0)

	if len(rep.RoomForecast) != 12 {
		t.Fatalf("len(RoomForecast) = %d, expected 12", len(rep.RoomForecast))
	}
	if first := rep.RoomForecast[0]; first.Month != time.April || first.Revenue != 0 {
		t.Errorf("RoomForecast[0] = %+v, expected an empty April 2025", first)
	}
	nextJan := rep.RoomForecast[9]
	if nextJan.Year != 2026 || nextJan.Month != time.January {
		t.Fatalf("RoomForecast[9] = %+v, expected January 2026", nextJan)
	}
	testutil.AssertClose(t, "January 2026 revenue", nextJan.Revenue, 208162.5, 0.01)
}

// TestBudgetIsCached checks that a second run reads the stored budget.
func TestBudgetIsCached(t *testing.T) {
	dir := t.TempDir()
	first, _ := buildReport(t, dir)
	second, _ := buildReport(t, dir)

	if !first.Budget.Generated || second.Budget.Generated {
		t.Errorf("Generated = %v then %v, expected true then false", first.Budget.Generated, second.Budget.Generated)
	}
	for i := range first.Budget.Lines {
		testutil.AssertClose(t, first.Budget.Lines[i].MonthName, second.Budget.Lines[i].Revenue, first.Budget.Lines[i].Revenue, 0.01)
	}
}

// TestCSVOutput checks the CSV rendering of the repository test data.
func TestCSVOutput(t *testing.T) {
	rep, _ := buildReport(t, t.TempDir())
	out := output.CsvString(rep)

	scanner := bufio.NewScanner(strings.NewReader(out))
	if !scanner.Scan() || scanner.Text() != "section,key,metric,value,change" {
		t.Fatalf("unexpected CSV header in:\n%s", out)
	}

	sections := make(map[string]int)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sections[strings.SplitN(line, ",", 2)[0]]++
	}
	for _, s := range []string{
		"year_to_date", "prior_year", "full_occupancy", "monthly", "prior_year_monthly", "yearly",
		"daily", "weekday_month", "weekday", "breakdown_type", "pivot_month", "pivot_week",
		"month_recap", "forecast", "budget", "room_forecast",
	} {
		if sections[s] == 0 {
			t.Errorf("CSV output has no %s rows", s)
		}
	}
}
