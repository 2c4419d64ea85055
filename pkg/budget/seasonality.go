package budget

import (
	"fmt"
	"time"
)

// Seasonality holds one revenue multiplier per calendar month, January
// first.
type Seasonality [12]float64

// DefaultSeasonality peaks in July and August and bottoms out in January.
var DefaultSeasonality = Seasonality{
	0.80, // January
	0.85, // February
	0.90, // March
	1.00, // April
	1.05, // May
	1.15, // June
	1.25, // July
	1.25, // August
	1.10, // September
	1.00, // October
	0.90, // November
	0.85, // December
}

// FlatSeasonality applies no seasonal effect.
var FlatSeasonality = Seasonality{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

// Factor returns the multiplier for month.
func (s Seasonality) Factor(month time.Month) float64 {
	return s[month-1]
}

// SeasonalityFromMap builds a table from month number → factor entries on top
// of base. Month numbers must be 1-12 and factors positive.
func SeasonalityFromMap(base Seasonality, factors map[int]float64) (Seasonality, error) {
	out := base
	for month, factor := range factors {
		if month < 1 || month > 12 {
			return Seasonality{}, fmt.Errorf("invalid seasonality month %d", month)
		}
		if factor <= 0 {
			return Seasonality{}, fmt.Errorf("seasonality factor for month %d must be positive, got %v", month, factor)
		}
		out[month-1] = factor
	}
	return out, nil
}
