package kpi

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/datetime"
)

// ErrInvalidWindow is returned for windows whose end precedes their start.
var ErrInvalidWindow = errors.New("invalid period window")

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a validated window from two dates.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: datetime.Truncate(start), End: datetime.Truncate(end)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks that the window is non-empty.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidWindow)
	}
	if datetime.Truncate(w.End).Before(datetime.Truncate(w.Start)) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			w.End.Format(datetime.DateLayout), w.Start.Format(datetime.DateLayout))
	}
	return nil
}

// Days returns the number of calendar days in the window, both ends included.
func (w Window) Days() int {
	return datetime.DaysInPeriod(w.Start, w.End)
}

// Contains reports whether t's calendar day is within the window.
func (w Window) Contains(t time.Time) bool {
	d := datetime.Truncate(t)
	return !d.Before(datetime.Truncate(w.Start)) && !d.After(datetime.Truncate(w.End))
}

// String renders the window as "start..end".
func (w Window) String() string {
	return w.Start.Format(datetime.DateLayout) + ".." + w.End.Format(datetime.DateLayout)
}

// MonthWindow returns the full calendar month.
func MonthWindow(year int, month time.Month) Window {
	return Window{Start: datetime.MonthStart(year, month), End: datetime.MonthEnd(year, month)}
}

// YearWindow returns January 1 through December 31 of year.
func YearWindow(year int) Window {
	return Window{Start: datetime.StartOfYear(year), End: datetime.EndOfYear(year)}
}

// YearToDate returns January 1 of year through asOf's month and day in that
// year. A February 29 asOf maps to February 28 in common years.
func YearToDate(year int, asOf time.Time) Window {
	return Window{
		Start: datetime.StartOfYear(year),
		End:   datetime.ShiftYears(asOf, year-asOf.Year()),
	}
}

// PriorYear returns the calendar-equivalent window one year earlier: same
// month and day for both bounds. February 29 maps to February 28.
func PriorYear(w Window) Window {
	return Window{
		Start: datetime.ShiftYears(w.Start, -1),
		End:   datetime.ShiftYears(w.End, -1),
	}
}
