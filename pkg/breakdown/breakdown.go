// Package breakdown groups revenue and rooms by category and expresses each
// category as a share of the total.
package breakdown

import (
	"fmt"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
)

// Dimension names the field records are grouped by.
type Dimension string

// Supported dimensions. Type and SousType group room sales; RevenueCategory
// and CostCategory group financial periods.
const (
	Type            Dimension = "type"
	SousType        Dimension = "sous_type"
	RevenueCategory Dimension = "revenue_category"
	CostCategory    Dimension = "cost_category"
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case Type, SousType, RevenueCategory, CostCategory:
		return d, nil
	}
	return "", fmt.Errorf("unknown breakdown dimension %q", s)
}

// Entry is one category of a breakdown. For CostCategory, Revenue holds the
// summed cost.
type Entry struct {
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	RoomsSold  int     `json:"roomsSold"`
	AvgPrice   float64 `json:"avgPrice"`
	PctOfTotal float64 `json:"pctOfTotal"`
}

// Options tunes a breakdown.
type Options struct {
	// CollapseMinor folds every category outside MainCategories into a
	// single "Other" entry. Revenue and rooms are both folded.
	CollapseMinor  bool
	MainCategories []string
	// Mapping is applied to raw category names before grouping.
	Mapping Mapping
}

type bucket struct {
	revenue float64
	rooms   int
}

// Breakdown groups the dataset by dimension within window and returns one
// entry per category. With collapsing, main categories come first in
// allow-list order and "Other" last; otherwise categories appear in order of
// first appearance.
func Breakdown(ds record.Dataset, dim Dimension, window kpi.Window, opts Options) ([]Entry, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	var order []string
	buckets := make(map[string]*bucket)
	add := func(category string, revenue float64, rooms int) {
		if !opts.Mapping.IsZero() {
			category = opts.Mapping.Apply(category)
		}
		b, ok := buckets[category]
		if !ok {
			b = &bucket{}
			buckets[category] = b
			order = append(order, category)
		}
		b.revenue += revenue
		b.rooms += rooms
	}

	switch dim {
	case Type, SousType:
		for _, r := range ds.RoomSales {
			if !r.InRange(window.Start, window.End) {
				continue
			}
			category := r.Type
			if dim == SousType {
				category = r.SousType
			}
			add(category, r.CARoom, r.NRooms)
		}
	case RevenueCategory, CostCategory:
		for _, p := range ds.Periods {
			if p.Date.IsZero() || !window.Contains(p.Date) {
				continue
			}
			if dim == RevenueCategory {
				add(p.RevenueCategory, p.Revenue, 0)
			} else {
				add(p.CostCategory, p.Cost, 0)
			}
		}
	default:
		return nil, fmt.Errorf("unknown breakdown dimension %q", dim)
	}

	if opts.CollapseMinor {
		order, buckets = collapse(order, buckets, opts.MainCategories)
	}

	total := 0.0
	for _, c := range order {
		total += buckets[c].revenue
	}

	entries := make([]Entry, 0, len(order))
	for _, c := range order {
		b := buckets[c]
		entries = append(entries, Entry{
			Category:   c,
			Revenue:    b.revenue,
			RoomsSold:  b.rooms,
			AvgPrice:   mathutil.SafeDivide(b.revenue, float64(b.rooms)),
			PctOfTotal: mathutil.CalculatePercentage(b.revenue, total),
		})
	}
	return entries, nil
}

func collapse(order []string, buckets map[string]*bucket, main []string) ([]string, map[string]*bucket) {
	keep := make(map[string]bool, len(main))
	for _, c := range main {
		keep[c] = true
	}

	out := make(map[string]*bucket)
	var outOrder []string
	for _, c := range main {
		if b, ok := buckets[c]; ok {
			if _, dup := out[c]; dup {
				continue
			}
			out[c] = b
			outOrder = append(outOrder, c)
		}
	}

	other := &bucket{}
	hasOther := false
	for _, c := range order {
		if keep[c] {
			continue
		}
		other.revenue += buckets[c].revenue
		other.rooms += buckets[c].rooms
		hasOther = true
	}
	if hasOther {
		if b, ok := out[constants.OtherCategory]; ok {
			b.revenue += other.revenue
			b.rooms += other.rooms
		} else {
			out[constants.OtherCategory] = other
			outOrder = append(outOrder, constants.OtherCategory)
		}
	}
	return outOrder, out
}

// TotalRevenue sums the entries' revenue.
func TotalRevenue(entries []Entry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.Revenue
	}
	return total
}
