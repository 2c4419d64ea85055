// Package output provides utilities for formatting and displaying report results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/iwvelando/hotel-forecast/internal/report"
	"github.com/iwvelando/hotel-forecast/pkg/breakdown"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/format"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/occupancy"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, rep *report.Report) {
	p := message.NewPrinter(language.English)

	title := "Performance report"
	if rep.Hotel != "" {
		title += " for " + rep.Hotel
	}
	_, _ = fmt.Fprintf(w, "--- %s ---\n", title)
	_, _ = fmt.Fprintf(w, "Year to date %s (prior year %s)\n\n",
		rep.YearToDate.Current.Window, rep.YearToDate.Baseline.Window)

	cur := rep.YearToDate.Current
	_, _ = fmt.Fprintf(w, "Metric          | Value           | vs prior year\n")
	_, _ = fmt.Fprintf(w, "______          | _____           | _____________\n")
	_, _ = p.Fprintf(w, "Total revenue   | %-15s | %s\n", format.Currency(cur.TotalRevenue.Value), format.Change(cur.TotalRevenue.Change))
	_, _ = p.Fprintf(w, "Rooms sold      | %-15d | %s\n", int(cur.RoomsSold.Value), format.Change(cur.RoomsSold.Change))
	_, _ = p.Fprintf(w, "Occupancy rate  | %-15s | %s\n", format.Percent(cur.OccupancyRate.Value), format.Change(cur.OccupancyRate.Change))
	_, _ = p.Fprintf(w, "ADR             | %-15s | %s\n", format.Currency(cur.ADR.Value), format.Change(cur.ADR.Change))
	_, _ = p.Fprintf(w, "RevPAR          | %-15s | %s\n", format.Currency(cur.RevPAR.Value), format.Change(cur.RevPAR.Change))
	fo := rep.FullOccupancy
	_, _ = p.Fprintf(w, "Full days       | %-15d | %s (%d last year)\n", fo.Current, format.Change(&fo.Change), fo.Baseline)
	_, _ = fmt.Fprintf(w, "Days with data: %d of %d\n", rep.DaysWithData, cur.Days)

	if len(rep.Monthly) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Monthly indicators %d ---\n", rep.Year)
		_, _ = fmt.Fprintf(w, "Month     | Revenue         | Rooms  | Occupancy | ADR       | RevPAR\n")
		_, _ = fmt.Fprintf(w, "_____     | _______         | _____  | _________ | ___       | ______\n")
		for _, m := range rep.Monthly {
			_, _ = p.Fprintf(w, "%-9s | %-15s | %-6d | %-9s | %-9s | %s\n",
				m.MonthName,
				format.Currency(m.Result.TotalRevenue.Value),
				int(m.Result.RoomsSold.Value),
				format.Percent(m.Result.OccupancyRate.Value),
				format.Currency(m.Result.ADR.Value),
				format.Currency(m.Result.RevPAR.Value),
			)
		}
	}

	if len(rep.PriorYearMonthly) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Monthly indicators %d through %s ---\n", rep.Year-1, rep.AsOf.Format("January 2"))
		_, _ = fmt.Fprintf(w, "Month     | Revenue         | Rooms  | Occupancy | ADR\n")
		_, _ = fmt.Fprintf(w, "_____     | _______         | _____  | _________ | ___\n")
		for _, m := range rep.PriorYearMonthly {
			_, _ = p.Fprintf(w, "%-9s | %-15s | %-6d | %-9s | %s\n",
				m.MonthName,
				format.Currency(m.Result.TotalRevenue.Value),
				int(m.Result.RoomsSold.Value),
				format.Percent(m.Result.OccupancyRate.Value),
				format.Currency(m.Result.ADR.Value),
			)
		}
	}

	if len(rep.Yearly) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Yearly indicators ---\n")
		_, _ = fmt.Fprintf(w, "Year | Revenue         | Rooms  | Occupancy | ADR       | RevPAR\n")
		_, _ = fmt.Fprintf(w, "____ | _______         | _____  | _________ | ___       | ______\n")
		for _, y := range rep.Yearly {
			_, _ = p.Fprintf(w, "%d | %-15s | %-6d | %-9s | %-9s | %s\n",
				y.Year,
				format.Currency(y.Result.TotalRevenue.Value),
				int(y.Result.RoomsSold.Value),
				format.Percent(y.Result.OccupancyRate.Value),
				format.Currency(y.Result.ADR.Value),
				format.Currency(y.Result.RevPAR.Value),
			)
		}
	}

	writeWeekdays(w, rep)

	for _, b := range rep.Breakdowns {
		_, _ = fmt.Fprintf(w, "\n--- Breakdown by %s ---\n", b.Dimension)
		_, _ = fmt.Fprintf(w, "Category             | Revenue         | Rooms  | Avg price | Share\n")
		_, _ = fmt.Fprintf(w, "________             | _______         | _____  | _________ | _____\n")
		for _, e := range b.Entries {
			_, _ = p.Fprintf(w, "%-20s | %-15s | %-6d | %-9s | %s\n",
				e.Category, format.Currency(e.Revenue), e.RoomsSold, format.Currency(e.AvgPrice), format.Percent(e.PctOfTotal))
		}
	}

	writePivot(w, "Monthly recap", rep.MonthlyPivot)
	writePivot(w, "Weekly recap", rep.WeeklyPivot)
	writeMonthRecap(w, rep.MonthRecap)

	if in := rep.Insight; in != nil {
		_, _ = fmt.Fprintf(w, "\n--- Insights %d ---\n", in.Year)
		_, _ = fmt.Fprintf(w, "Best month: %s (%s)\n", in.BestMonth.Name, format.Currency(in.BestMonth.Revenue))
		_, _ = fmt.Fprintf(w, "Worst month: %s (%s)\n", in.WorstMonth.Name, format.Currency(in.WorstMonth.Revenue))
		_, _ = fmt.Fprintf(w, "Average occupancy: %s\n", format.Percent(in.AvgOccupancy))
	}

	if len(rep.Forecast) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Forecast ---\n")
		_, _ = fmt.Fprintf(w, "Month   | Revenue         | Cost            | EBITDA          | Margin\n")
		_, _ = fmt.Fprintf(w, "_____   | _______         | ____            | ______          | ______\n")
		for _, pt := range rep.Forecast {
			_, _ = p.Fprintf(w, "%s | %-15s | %-15s | %-15s | %s\n",
				pt.Date.Format(datetime.MonthLayout),
				format.Currency(pt.Revenue), format.Currency(pt.Cost), format.Currency(pt.EBITDA),
				format.Percent(pt.ProfitMargin*100))
		}
		if s := rep.ForecastSummary; s != nil {
			_, _ = p.Fprintf(w, "Total   | %-15s | %-15s | %-15s | %s\n",
				format.Currency(s.Revenue), format.Currency(s.Cost), format.Currency(s.EBITDA), format.Percent(s.ProfitMargin*100))
		}
	}

	if len(rep.Budget.Lines) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Budget %d ---\n", rep.Budget.Year)
		_, _ = fmt.Fprintf(w, "Month     | Revenue         | Rooms    | ADR\n")
		_, _ = fmt.Fprintf(w, "_____     | _______         | _____    | ___\n")
		for _, l := range rep.Budget.Lines {
			_, _ = p.Fprintf(w, "%-9s | %-15s | %-8.0f | %s\n", l.MonthName, format.Currency(l.Revenue), l.Rooms, format.Currency(l.ADR))
		}
		t := rep.Budget.Totals
		_, _ = p.Fprintf(w, "Total     | %-15s | %-8.0f | %s\n", format.Currency(t.Revenue), t.Rooms, format.Currency(t.ADR))
	}

	if len(rep.RoomForecast) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Room budget outlook ---\n")
		_, _ = fmt.Fprintf(w, "Month   | Revenue         | Rooms    | ADR\n")
		_, _ = fmt.Fprintf(w, "_____   | _______         | _____    | ___\n")
		for _, l := range rep.RoomForecast {
			_, _ = p.Fprintf(w, "%d-%02d | %-15s | %-8.0f | %s\n", l.Year, int(l.Month), format.Currency(l.Revenue), l.Rooms, format.Currency(l.ADR))
		}
	}
}

func writeWeekdays(w io.Writer, rep *report.Report) {
	if len(rep.WeekdayGrid) > 0 {
		var months []time.Month
		cells := make(map[time.Weekday]map[time.Month]float64)
		for _, c := range rep.WeekdayGrid {
			if cells[c.Weekday] == nil {
				cells[c.Weekday] = make(map[time.Month]float64)
			}
			cells[c.Weekday][c.Month] = c.OccupancyRate
			if !slices.Contains(months, c.Month) {
				months = append(months, c.Month)
			}
		}
		slices.Sort(months)

		_, _ = fmt.Fprintf(w, "\n--- Occupancy by weekday and month %d ---\n", rep.Year)
		_, _ = fmt.Fprintf(w, "%-9s", "Day")
		for _, m := range months {
			_, _ = fmt.Fprintf(w, " | %-6s", m.String()[:3])
		}
		_, _ = fmt.Fprintln(w)
		for _, wd := range occupancy.Weekdays {
			_, _ = fmt.Fprintf(w, "%-9s", wd)
			for _, m := range months {
				v, ok := cells[wd][m]
				text := ""
				if ok {
					text = format.Percent(v)
				}
				_, _ = fmt.Fprintf(w, " | %-6s", text)
			}
			_, _ = fmt.Fprintln(w)
		}
	}

	if len(rep.Weekdays) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Rooms by weekday ---\n")
		_, _ = fmt.Fprintf(w, "Day       | Rooms  | Guests | Guests per room\n")
		_, _ = fmt.Fprintf(w, "___       | _____  | ______ | _______________\n")
		for _, d := range rep.Weekdays {
			_, _ = fmt.Fprintf(w, "%-9s | %-6d | %-6d | %.2f\n", d.Weekday, d.RoomsSold, d.Customers, d.CustomersPerRoom)
		}
	}
}

func writePivot(w io.Writer, title string, pv breakdown.Pivot) {
	if len(pv.Rows) == 0 {
		return
	}
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "\n--- %s %d ---\n", title, pv.Year)
	_, _ = fmt.Fprintf(w, "%-10s", "Period")
	for _, c := range pv.Categories {
		_, _ = fmt.Fprintf(w, " | %-22s", c)
	}
	_, _ = fmt.Fprintf(w, " | %-6s | %-15s | %-9s | %s\n", "Rooms", "Revenue", "PM", "OR")
	for _, row := range append(pv.Rows[:len(pv.Rows):len(pv.Rows)], pv.Total) {
		_, _ = fmt.Fprintf(w, "%-10s", row.Label)
		for _, c := range row.Cells {
			_, _ = p.Fprintf(w, " | %-6d %-15s", c.Rooms, format.Currency(c.Revenue))
		}
		_, _ = p.Fprintf(w, " | %-6d | %-15s | %-9s | %s\n",
			row.Rooms, format.Currency(row.Revenue), format.Currency(row.AvgPrice), format.Percent(row.OccupancyRate))
	}
}

func writeMonthRecap(w io.Writer, recap report.MonthRecap) {
	if len(recap.Years) == 0 {
		return
	}
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "\n--- %s across years ---\n", recap.Month)
	_, _ = fmt.Fprintf(w, "Year | Category             | Rooms  | Revenue         | PM\n")
	_, _ = fmt.Fprintf(w, "____ | ________             | _____  | _______         | __\n")
	for _, y := range recap.Years {
		for _, e := range append(y.Entries[:len(y.Entries):len(y.Entries)], y.Total) {
			_, _ = p.Fprintf(w, "%d | %-20s | %-6d | %-15s | %s\n",
				y.Year, e.Category, e.RoomsSold, format.Currency(e.Revenue), format.Currency(e.AvgPrice))
		}
	}
}

// CsvFormat writes the report in comma-separated value format, one row per
// value: section, key, metric, value, change.
func CsvFormat(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	for _, row := range csvRows(rep) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes the report as indented JSON.
func JSONFormat(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// CsvString returns the CSV rendering of the report.
func CsvString(rep *report.Report) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, rep); err != nil {
		return ""
	}
	return buf.String()
}

func csvRows(rep *report.Report) [][]string {
	rows := [][]string{{"section", "key", "metric", "value", "change"}}
	addResult := func(section, key string, r kpi.Result) {
		rows = append(rows,
			[]string{section, key, "total_revenue", twoPlaces(r.TotalRevenue.Value), csvChange(r.TotalRevenue.Change)},
			[]string{section, key, "rooms_sold", strconv.Itoa(int(r.RoomsSold.Value)), csvChange(r.RoomsSold.Change)},
			[]string{section, key, "occupancy_rate", twoPlaces(r.OccupancyRate.Value), csvChange(r.OccupancyRate.Change)},
			[]string{section, key, "adr", twoPlaces(r.ADR.Value), csvChange(r.ADR.Change)},
			[]string{section, key, "revpar", twoPlaces(r.RevPAR.Value), csvChange(r.RevPAR.Change)},
		)
	}

	addResult("year_to_date", rep.YearToDate.Current.Window.String(), rep.YearToDate.Current)
	addResult("prior_year", rep.YearToDate.Baseline.Window.String(), rep.YearToDate.Baseline)
	fo := rep.FullOccupancy
	rows = append(rows,
		[]string{"full_occupancy", strconv.Itoa(rep.Year), "days", strconv.Itoa(fo.Current), csvChange(&fo.Change)},
		[]string{"full_occupancy", strconv.Itoa(rep.Year - 1), "days", strconv.Itoa(fo.Baseline), ""},
	)

	for _, m := range rep.Monthly {
		addResult("monthly", fmt.Sprintf("%d-%02d", m.Year, int(m.Month)), m.Result)
	}
	for _, m := range rep.PriorYearMonthly {
		addResult("prior_year_monthly", fmt.Sprintf("%d-%02d", m.Year, int(m.Month)), m.Result)
	}
	for _, y := range rep.Yearly {
		addResult("yearly", strconv.Itoa(y.Year), y.Result)
	}

	for _, d := range rep.Daily {
		key := d.Day.Format(datetime.DateLayout)
		rows = append(rows,
			[]string{"daily", key, "rooms_sold", strconv.Itoa(d.RoomsSold), ""},
			[]string{"daily", key, "occupancy_rate", twoPlaces(d.OccupancyRate), ""},
			[]string{"daily", key, "full", strconv.FormatBool(d.Full), ""},
		)
	}
	for _, c := range rep.WeekdayGrid {
		key := c.Month.String() + "/" + c.Weekday.String()
		rows = append(rows,
			[]string{"weekday_month", key, "days", strconv.Itoa(c.Days), ""},
			[]string{"weekday_month", key, "rooms_sold", strconv.Itoa(c.RoomsSold), ""},
			[]string{"weekday_month", key, "occupancy_rate", twoPlaces(c.OccupancyRate), ""},
		)
	}
	for _, d := range rep.Weekdays {
		key := d.Weekday.String()
		rows = append(rows,
			[]string{"weekday", key, "rooms_sold", strconv.Itoa(d.RoomsSold), ""},
			[]string{"weekday", key, "customers", strconv.Itoa(d.Customers), ""},
			[]string{"weekday", key, "customers_per_room", twoPlaces(d.CustomersPerRoom), ""},
		)
	}

	for _, b := range rep.Breakdowns {
		section := "breakdown_" + string(b.Dimension)
		for _, e := range b.Entries {
			rows = append(rows,
				[]string{section, e.Category, "revenue", twoPlaces(e.Revenue), ""},
				[]string{section, e.Category, "rooms_sold", strconv.Itoa(e.RoomsSold), ""},
				[]string{section, e.Category, "avg_price", twoPlaces(e.AvgPrice), ""},
				[]string{section, e.Category, "pct_of_total", twoPlaces(e.PctOfTotal), ""},
			)
		}
	}

	rows = append(rows, pivotRows(rep.MonthlyPivot)...)
	rows = append(rows, pivotRows(rep.WeeklyPivot)...)
	for _, y := range rep.MonthRecap.Years {
		for _, e := range append(y.Entries[:len(y.Entries):len(y.Entries)], y.Total) {
			key := fmt.Sprintf("%d-%02d/%s", y.Year, int(rep.MonthRecap.Month), e.Category)
			rows = append(rows,
				[]string{"month_recap", key, "rooms_sold", strconv.Itoa(e.RoomsSold), ""},
				[]string{"month_recap", key, "revenue", twoPlaces(e.Revenue), ""},
				[]string{"month_recap", key, "avg_price", twoPlaces(e.AvgPrice), ""},
			)
		}
	}

	for _, pt := range rep.Forecast {
		key := pt.Date.Format(datetime.DateLayout)
		rows = append(rows,
			[]string{"forecast", key, "revenue", twoPlaces(pt.Revenue), ""},
			[]string{"forecast", key, "cost", twoPlaces(pt.Cost), ""},
			[]string{"forecast", key, "ebitda", twoPlaces(pt.EBITDA), ""},
			[]string{"forecast", key, "profit_margin", strconv.FormatFloat(pt.ProfitMargin, 'f', 4, 64), ""},
		)
	}

	for _, l := range rep.Budget.Lines {
		key := fmt.Sprintf("%d-%02d", l.Year, int(l.Month))
		rows = append(rows,
			[]string{"budget", key, "revenue", twoPlaces(l.Revenue), ""},
			[]string{"budget", key, "rooms", strconv.FormatFloat(l.Rooms, 'f', -1, 64), ""},
			[]string{"budget", key, "adr", twoPlaces(l.ADR), ""},
		)
	}
	for _, l := range rep.RoomForecast {
		key := fmt.Sprintf("%d-%02d", l.Year, int(l.Month))
		rows = append(rows,
			[]string{"room_forecast", key, "revenue", twoPlaces(l.Revenue), ""},
			[]string{"room_forecast", key, "rooms", strconv.FormatFloat(l.Rooms, 'f', -1, 64), ""},
			[]string{"room_forecast", key, "adr", twoPlaces(l.ADR), ""},
		)
	}
	return rows
}

// pivotRows flattens a pivot into "pivot_month" or "pivot_week" rows. Cell
// metrics are named after their category, e.g. "rooms:GROUPES".
func pivotRows(pv breakdown.Pivot) [][]string {
	section := "pivot_" + string(pv.Granularity)
	var rows [][]string
	for _, row := range pv.Rows {
		rows = append(rows, pivotRow(section, row)...)
	}
	if len(pv.Rows) > 0 {
		rows = append(rows, pivotRow(section, pv.Total)...)
	}
	return rows
}

func pivotRow(section string, row breakdown.PivotRow) [][]string {
	var rows [][]string
	for _, c := range row.Cells {
		rows = append(rows,
			[]string{section, row.Label, "rooms:" + c.Category, strconv.Itoa(c.Rooms), ""},
			[]string{section, row.Label, "revenue:" + c.Category, twoPlaces(c.Revenue), ""},
		)
	}
	return append(rows,
		[]string{section, row.Label, "rooms", strconv.Itoa(row.Rooms), ""},
		[]string{section, row.Label, "revenue", twoPlaces(row.Revenue), ""},
		[]string{section, row.Label, "avg_price", twoPlaces(row.AvgPrice), ""},
		[]string{section, row.Label, "occupancy_rate", twoPlaces(row.OccupancyRate), ""},
	)
}

func twoPlaces(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func csvChange(c *kpi.Change) string {
	if c == nil {
		return ""
	}
	if c.Undefined {
		return format.NotApplicable
	}
	return strconv.FormatFloat(c.Percent, 'f', 2, 64)
}
