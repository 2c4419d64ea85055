package budget

import (
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Line is the room budget of one month.
type Line struct {
	Year      int        `json:"year" yaml:"year"`
	Month     time.Month `json:"month" yaml:"month"`
	MonthName string     `json:"monthName" yaml:"monthName"`
	Revenue   float64    `json:"revenue" yaml:"revenue"`
	Rooms     float64    `json:"rooms" yaml:"rooms"`
	ADR       float64    `json:"adr" yaml:"adr"`
}

type monthTotals struct {
	revenue float64
	rooms   int
}

// MonthlyBudget budgets month of year from the same month of the prior year
// grown by growthRate. When the prior year has no data for that month, the
// mean over every year that has it is used instead; with no data at all the
// line is zero. Rooms are not grown.
func MonthlyBudget(records []record.RoomSaleRecord, year int, month time.Month, growthRate float64) Line {
	byYear := make(map[int]*monthTotals)
	for _, r := range records {
		if !r.Valid() || r.Month() != month {
			continue
		}
		t, ok := byYear[r.Year()]
		if !ok {
			t = &monthTotals{}
			byYear[r.Year()] = t
		}
		t.revenue += r.CARoom
		t.rooms += r.NRooms
	}

	line := Line{Year: year, Month: month, MonthName: month.String()}

	var revenue, rooms float64
	if prior, ok := byYear[year-1]; ok {
		revenue = prior.revenue
		rooms = float64(prior.rooms)
	} else if len(byYear) > 0 {
		for _, t := range byYear {
			revenue += t.revenue
			rooms += float64(t.rooms)
		}
		revenue /= float64(len(byYear))
		rooms /= float64(len(byYear))
	} else {
		return line
	}

	line.Revenue = revenue * (1 + growthRate)
	line.Rooms = rooms
	line.ADR = mathutil.SafeDivide(line.Revenue, line.Rooms)
	return line
}

// AnnualBudget returns the twelve monthly lines of year.
func AnnualBudget(records []record.RoomSaleRecord, year int, growthRate float64) []Line {
	lines := make([]Line, 0, 12)
	for m := time.January; m <= time.December; m++ {
		lines = append(lines, MonthlyBudget(records, year, m, growthRate))
	}
	return lines
}

// ForecastFromRoomSales budgets the monthsAhead months that follow the latest
// recorded day. It returns nil when there are no dated records.
func ForecastFromRoomSales(records []record.RoomSaleRecord, monthsAhead int, growthRate float64) []Line {
	last, ok := record.LastDay(records)
	if !ok || monthsAhead <= 0 {
		return nil
	}
	lines := make([]Line, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		m := datetime.AddMonths(last, i)
		lines = append(lines, MonthlyBudget(records, m.Year(), m.Month(), growthRate))
	}
	return lines
}

// LineTotals sums a budget.
type LineTotals struct {
	Revenue float64 `json:"revenue"`
	Rooms   float64 `json:"rooms"`
	ADR     float64 `json:"adr"`
}

// Totals sums revenue and rooms over lines; ADR is total revenue over total
// rooms.
func Totals(lines []Line) LineTotals {
	var t LineTotals
	for _, l := range lines {
		t.Revenue += l.Revenue
		t.Rooms += l.Rooms
	}
	t.ADR = mathutil.SafeDivide(t.Revenue, t.Rooms)
	return t
}
