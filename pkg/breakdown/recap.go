package breakdown

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Granularity selects the rows of a pivot.
type Granularity string

// Supported pivot granularities. Weeks start on Monday and are cut at the
// year's bounds.
const (
	ByMonth Granularity = "month"
	ByWeek  Granularity = "week"
)

// TotalLabel names the summary row of pivots and recaps.
const TotalLabel = "Total"

// Cell is one category's rooms and revenue within a pivot row.
type Cell struct {
	Category string  `json:"category"`
	Rooms    int     `json:"rooms"`
	Revenue  float64 `json:"revenue"`
}

// PivotRow is one period of a pivot. Cells follow Pivot.Categories.
type PivotRow struct {
	Label         string     `json:"label"`
	Window        kpi.Window `json:"window"`
	Cells         []Cell     `json:"cells"`
	Rooms         int        `json:"rooms"`
	Revenue       float64    `json:"revenue"`
	AvgPrice      float64    `json:"avgPrice"`
	OccupancyRate float64    `json:"occupancyRate"`
}

// Pivot is a period by category table of rooms sold and revenue.
type Pivot struct {
	Year        int         `json:"year"`
	Granularity Granularity `json:"granularity"`
	Categories  []string    `json:"categories"`
	Rows        []PivotRow  `json:"rows"`
	Total       PivotRow    `json:"total"`
}

// categorizer resolves raw types to reporting categories and records the
// column order: main categories first when collapsing, otherwise first
// appearance.
type categorizer struct {
	opts  Options
	keep  map[string]bool
	seen  map[string]bool
	order []string
}

func newCategorizer(opts Options) *categorizer {
	keep := make(map[string]bool, len(opts.MainCategories))
	for _, c := range opts.MainCategories {
		keep[c] = true
	}
	return &categorizer{opts: opts, keep: keep, seen: make(map[string]bool)}
}

func (c *categorizer) category(raw string) string {
	cat := raw
	if !c.opts.Mapping.IsZero() {
		cat = c.opts.Mapping.Apply(raw)
	}
	if cat == "" || (c.opts.CollapseMinor && !c.keep[cat]) {
		cat = constants.OtherCategory
	}
	if !c.seen[cat] {
		c.seen[cat] = true
		c.order = append(c.order, cat)
	}
	return cat
}

func (c *categorizer) columns() []string {
	if !c.opts.CollapseMinor {
		return c.order
	}
	var out []string
	listed := make(map[string]bool)
	for _, m := range c.opts.MainCategories {
		if c.seen[m] && !listed[m] {
			out = append(out, m)
			listed[m] = true
		}
	}
	if c.seen[constants.OtherCategory] && !listed[constants.OtherCategory] {
		out = append(out, constants.OtherCategory)
	}
	return out
}

type pivotAcc struct {
	window kpi.Window
	label  string
	cells  map[string]*Cell
}

// PivotByPeriod sums rooms and revenue of year per period and category.
// Occupancy of a row is its rooms over the room-nights its days offer; the
// total row covers every row's days.
func PivotByPeriod(records []record.RoomSaleRecord, year int, gran Granularity, opts Options, src capacity.Source) (Pivot, error) {
	if gran != ByMonth && gran != ByWeek {
		return Pivot{}, fmt.Errorf("unknown pivot granularity %q", gran)
	}

	cat := newCategorizer(opts)
	rows := make(map[time.Time]*pivotAcc)
	for _, r := range record.ForYear(records, year) {
		w, label := periodOf(r.Date(), gran)
		acc, ok := rows[w.Start]
		if !ok {
			acc = &pivotAcc{window: w, label: label, cells: make(map[string]*Cell)}
			rows[w.Start] = acc
		}
		c := cat.category(r.Type)
		cell, ok := acc.cells[c]
		if !ok {
			cell = &Cell{Category: c}
			acc.cells[c] = cell
		}
		cell.Rooms += r.NRooms
		cell.Revenue += r.CARoom
	}

	accs := make([]*pivotAcc, 0, len(rows))
	for _, acc := range rows {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].window.Start.Before(accs[j].window.Start) })

	columns := cat.columns()
	p := Pivot{Year: year, Granularity: gran, Categories: columns}
	total := PivotRow{Label: TotalLabel, Cells: make([]Cell, len(columns))}
	for i, c := range columns {
		total.Cells[i].Category = c
	}
	totalAvailable := 0
	for _, acc := range accs {
		row := PivotRow{Label: acc.label, Window: acc.window, Cells: make([]Cell, len(columns))}
		for i, c := range columns {
			cell := Cell{Category: c}
			if v, ok := acc.cells[c]; ok {
				cell = *v
			}
			row.Cells[i] = cell
			row.Rooms += cell.Rooms
			row.Revenue += cell.Revenue
			total.Cells[i].Rooms += cell.Rooms
			total.Cells[i].Revenue += cell.Revenue
		}
		available, err := kpi.AvailableRooms(acc.window, src)
		if err != nil {
			return Pivot{}, err
		}
		totalAvailable += available
		row.AvgPrice = mathutil.SafeDivide(row.Revenue, float64(row.Rooms))
		row.OccupancyRate = mathutil.SafeDivide(float64(row.Rooms), float64(available)) * 100
		p.Rows = append(p.Rows, row)

		total.Rooms += row.Rooms
		total.Revenue += row.Revenue
	}
	if len(accs) > 0 {
		total.Window = kpi.Window{Start: accs[0].window.Start, End: accs[len(accs)-1].window.End}
	}
	total.AvgPrice = mathutil.SafeDivide(total.Revenue, float64(total.Rooms))
	total.OccupancyRate = mathutil.SafeDivide(float64(total.Rooms), float64(totalAvailable)) * 100
	p.Total = total
	return p, nil
}

// periodOf returns the pivot period holding day and its label.
func periodOf(day time.Time, gran Granularity) (kpi.Window, string) {
	if gran == ByMonth {
		return kpi.MonthWindow(day.Year(), day.Month()), fmt.Sprintf("%d-%02d", day.Year(), int(day.Month()))
	}
	monday := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	isoYear, week := monday.ISOWeek()
	w := kpi.Window{Start: monday, End: monday.AddDate(0, 0, 6)}
	if start := datetime.StartOfYear(day.Year()); w.Start.Before(start) {
		w.Start = start
	}
	if end := datetime.EndOfYear(day.Year()); w.End.After(end) {
		w.End = end
	}
	return w, fmt.Sprintf("%d-W%02d", isoYear, week)
}

// YearRecap is the per-category recap of one month in one year.
type YearRecap struct {
	Year    int     `json:"year"`
	Entries []Entry `json:"entries"`
	Total   Entry   `json:"total"`
}

// MonthOverYears recaps month for every year present in records, so that
// the same month can be read across years. Categories appear in the same
// order in every year; a year without sales in month has no entries.
func MonthOverYears(records []record.RoomSaleRecord, month time.Month, opts Options) []YearRecap {
	cat := newCategorizer(opts)
	type key struct {
		year     int
		category string
	}
	buckets := make(map[key]*bucket)
	for _, r := range records {
		if !r.Valid() || r.Month() != month {
			continue
		}
		k := key{year: r.Year(), category: cat.category(r.Type)}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.revenue += r.CARoom
		b.rooms += r.NRooms
	}

	columns := cat.columns()
	years := record.Years(records)
	out := make([]YearRecap, 0, len(years))
	for _, y := range years {
		recap := YearRecap{Year: y, Total: Entry{Category: TotalLabel}}
		for _, c := range columns {
			b, ok := buckets[key{year: y, category: c}]
			if !ok {
				continue
			}
			recap.Entries = append(recap.Entries, Entry{
				Category:  c,
				Revenue:   b.revenue,
				RoomsSold: b.rooms,
				AvgPrice:  mathutil.SafeDivide(b.revenue, float64(b.rooms)),
			})
			recap.Total.Revenue += b.revenue
			recap.Total.RoomsSold += b.rooms
		}
		for i := range recap.Entries {
			recap.Entries[i].PctOfTotal = mathutil.CalculatePercentage(recap.Entries[i].Revenue, recap.Total.Revenue)
		}
		recap.Total.AvgPrice = mathutil.SafeDivide(recap.Total.Revenue, float64(recap.Total.RoomsSold))
		if recap.Total.Revenue > 0 {
			recap.Total.PctOfTotal = 100
		}
		out = append(out, recap)
	}
	return out
}
