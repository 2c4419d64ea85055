package kpi

import (
	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Change is a percentage delta against a comparison value. Undefined marks a
// change against a zero baseline with a positive current value; it carries
// no meaningful Percent and must be rendered distinctly (e.g. "N/A").
type Change struct {
	Percent   float64 `json:"percent"`
	Undefined bool    `json:"undefined,omitempty"`
}

// PercentChange returns (current/baseline - 1) * 100 for a positive baseline.
// A zero baseline yields 0 when current is also zero and Undefined otherwise.
func PercentChange(current, baseline float64) Change {
	if baseline > 0 {
		return Change{Percent: (current/baseline - 1) * 100}
	}
	if current == 0 {
		return Change{}
	}
	return Change{Undefined: true}
}

// Compare returns current with every metric's Change filled in against
// baseline. Both results should come from calendar-equivalent windows; see
// PriorYear.
func Compare(current, baseline Result) Result {
	out := current
	out.TotalRevenue = withChange(current.TotalRevenue, baseline.TotalRevenue)
	out.RoomsSold = withChange(current.RoomsSold, baseline.RoomsSold)
	out.OccupancyRate = withChange(current.OccupancyRate, baseline.OccupancyRate)
	out.ADR = withChange(current.ADR, baseline.ADR)
	out.RevPAR = withChange(current.RevPAR, baseline.RevPAR)
	return out
}

func withChange(current, baseline Metric) Metric {
	c := PercentChange(current.Value, baseline.Value)
	return Metric{Value: current.Value, Change: &c}
}

// Comparison pairs a compared current result with its baseline.
type Comparison struct {
	Current  Result `json:"current"`
	Baseline Result `json:"baseline"`
}

// CompareWithPriorYear aggregates window and its prior-year equivalent and
// compares them.
func CompareWithPriorYear(records []record.RoomSaleRecord, window Window, src capacity.Source) (Comparison, error) {
	current, err := Aggregate(records, window, src)
	if err != nil {
		return Comparison{}, err
	}
	baseline, err := Aggregate(records, PriorYear(window), src)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Current: Compare(current, baseline), Baseline: baseline}, nil
}
