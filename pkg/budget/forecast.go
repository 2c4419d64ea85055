// Package budget projects monthly revenue, cost and EBITDA from historical
// financial periods, and builds room budgets from prior-year sales.
package budget

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/mathutil"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"go.uber.org/zap"
)

// Point is the projection of one future month. Date is the month's last day.
type Point struct {
	Date         time.Time `json:"date"`
	Revenue      float64   `json:"revenue"`
	Cost         float64   `json:"cost"`
	EBITDA       float64   `json:"ebitda"`
	ProfitMargin float64   `json:"profitMargin"`
}

// Forecaster projects financial periods forward using a moving-average
// baseline, compound growth and a seasonality table.
type Forecaster struct {
	logger      *zap.Logger
	seasonality Seasonality
}

// NewForecaster creates a forecaster. A nil logger is replaced by a no-op.
func NewForecaster(logger *zap.Logger, seasonality Seasonality) *Forecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forecaster{logger: logger, seasonality: seasonality}
}

// Seasonality returns the table in use.
func (f *Forecaster) Seasonality() Seasonality {
	return f.seasonality
}

// ErrInvalidParameter is returned for a non-positive horizon or a growth rate
// of -100% or less.
var ErrInvalidParameter = errors.New("invalid forecast parameter")

// Forecast returns horizonMonths points starting the month after the latest
// period. Revenue and cost start from the mean of the last three periods (or
// fewer when fewer exist); revenue compounds at growthRate per year and costs
// at 80% of it, with costs feeling half of the seasonal swing. Values are
// rounded only once computed: currency to cents, margins to four decimals.
func (f *Forecaster) Forecast(periods []record.FinancialPeriod, horizonMonths int, growthRate float64) ([]Point, error) {
	if len(periods) == 0 {
		return nil, record.NewSchemaError("date", "no historical periods to forecast from")
	}
	if horizonMonths <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidParameter, horizonMonths)
	}
	if growthRate <= -1 {
		return nil, fmt.Errorf("%w: growth rate must be greater than -100%%, got %v", ErrInvalidParameter, growthRate)
	}

	sorted := record.SortedPeriods(periods)
	if sorted[len(sorted)-1].Date.IsZero() {
		return nil, record.NewSchemaError("date", "historical periods carry no dates")
	}

	lookback := constants.BaselinePeriods
	if len(sorted) < lookback {
		lookback = len(sorted)
	}
	recent := sorted[len(sorted)-lookback:]

	revenues := make([]float64, 0, lookback)
	costs := make([]float64, 0, lookback)
	for _, p := range recent {
		revenues = append(revenues, p.Revenue)
		costs = append(costs, p.Cost)
	}
	avgRevenue := mathutil.Mean(revenues)
	avgCost := mathutil.Mean(costs)
	last := sorted[len(sorted)-1].Date

	f.logger.Debug("forecast baseline",
		zap.String("op", "budget.Forecast"),
		zap.Int("lookback", lookback),
		zap.Float64("avgRevenue", avgRevenue),
		zap.Float64("avgCost", avgCost),
		zap.String("lastPeriod", last.Format(datetime.DateLayout)),
	)

	points := make([]Point, 0, horizonMonths)
	for i := 0; i < horizonMonths; i++ {
		month := datetime.AddMonths(last, i+1)
		season := f.seasonality.Factor(month.Month())
		years := float64(i) / constants.MonthsPerYear

		revenue := avgRevenue * math.Pow(1+growthRate, years) * season
		cost := avgCost * math.Pow(1+growthRate*constants.CostGrowthFactor, years) *
			(1 + (season-1)*constants.CostSeasonalityDamping)
		ebitda := revenue - cost

		points = append(points, Point{
			Date:         datetime.MonthEnd(month.Year(), month.Month()),
			Revenue:      mathutil.Round(revenue),
			Cost:         mathutil.Round(cost),
			EBITDA:       mathutil.Round(ebitda),
			ProfitMargin: mathutil.RoundRatio(mathutil.SafeDivide(ebitda, revenue)),
		})
	}
	return points, nil
}

// Summary totals a forecast.
type Summary struct {
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	EBITDA       float64 `json:"ebitda"`
	ProfitMargin float64 `json:"profitMargin"`
}

// Summarize totals revenue, cost and EBITDA over points.
func Summarize(points []Point) Summary {
	var s Summary
	for _, p := range points {
		s.Revenue += p.Revenue
		s.Cost += p.Cost
	}
	s.EBITDA = s.Revenue - s.Cost
	s.ProfitMargin = mathutil.RoundRatio(mathutil.SafeDivide(s.EBITDA, s.Revenue))
	s.Revenue = mathutil.Round(s.Revenue)
	s.Cost = mathutil.Round(s.Cost)
	s.EBITDA = mathutil.Round(s.EBITDA)
	return s
}
