// Package report assembles the performance report: year-to-date indicators
// against the prior year, monthly and yearly indicators, occupancy series,
// category breakdowns and recaps, a financial forecast and room budgets.
package report

import (
	"fmt"
	"time"

	"github.com/iwvelando/hotel-forecast/internal/budgetstore"
	"github.com/iwvelando/hotel-forecast/internal/config"
	"github.com/iwvelando/hotel-forecast/pkg/breakdown"
	"github.com/iwvelando/hotel-forecast/pkg/budget"
	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/kpi"
	"github.com/iwvelando/hotel-forecast/pkg/occupancy"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"go.uber.org/zap"
)

// Options selects what a report covers.
type Options struct {
	Hotel string
	// Year is the analysed year; zero uses the year of the latest record.
	Year int
	// AsOf ends the year-to-date window; zero uses the latest record day of
	// Year.
	AsOf time.Time

	Dimensions []breakdown.Dimension
	Breakdown  breakdown.Options

	HorizonMonths  int
	ForecastGrowth float64
	Seasonality    budget.Seasonality

	// BudgetYear is the budgeted year; zero uses Year.
	BudgetYear   int
	BudgetGrowth float64
	// Budgets caches generated budgets when set.
	Budgets *budgetstore.Store
}

// OptionsFromConfig converts the loaded configuration.
func OptionsFromConfig(conf *config.Configuration) (Options, error) {
	asOf, err := conf.AsOfDate()
	if err != nil {
		return Options{}, err
	}
	dims, err := conf.BreakdownDimensions()
	if err != nil {
		return Options{}, err
	}
	seasonality, err := conf.SeasonalityTable()
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		Hotel:      conf.Hotel.Name,
		Year:       conf.Report.Year,
		AsOf:       asOf,
		Dimensions: dims,
		Breakdown: breakdown.Options{
			CollapseMinor:  conf.Report.CollapseMinor,
			MainCategories: conf.Report.MainCategories,
			Mapping:        conf.Mapping(),
		},
		HorizonMonths:  conf.Forecast.HorizonMonths,
		ForecastGrowth: constants.DefaultGrowthRate,
		Seasonality:    seasonality,
		BudgetYear:     conf.Budget.Year,
		BudgetGrowth:   constants.DefaultGrowthRate,
	}
	if conf.Forecast.GrowthRate != nil {
		opts.ForecastGrowth = *conf.Forecast.GrowthRate
	}
	if conf.Budget.GrowthRate != nil {
		opts.BudgetGrowth = *conf.Budget.GrowthRate
	}
	return opts, nil
}

// FullOccupancy counts sold-out days year to date against the prior year.
type FullOccupancy struct {
	Current  int        `json:"current"`
	Baseline int        `json:"baseline"`
	Change   kpi.Change `json:"change"`
}

// CategoryBreakdown is the breakdown along one dimension.
type CategoryBreakdown struct {
	Dimension breakdown.Dimension `json:"dimension"`
	Entries   []breakdown.Entry   `json:"entries"`
}

// Budget is the annual room budget and its totals.
type Budget struct {
	Year      int               `json:"year"`
	Lines     []budget.Line     `json:"lines"`
	Totals    budget.LineTotals `json:"totals"`
	Generated bool              `json:"generated"`
}

// MonthRecap compares one month across every year on record.
type MonthRecap struct {
	Month time.Month            `json:"month"`
	Years []breakdown.YearRecap `json:"years"`
}

// Report is the full performance report.
type Report struct {
	Hotel        string              `json:"hotel,omitempty"`
	Year         int                 `json:"year"`
	AsOf         time.Time           `json:"asOf"`
	YearToDate   kpi.Comparison      `json:"yearToDate"`
	DaysWithData int                 `json:"daysWithData"`
	Monthly      []kpi.MonthlyResult `json:"monthly"`
	// PriorYearMonthly holds the prior year's months cut at the as-of month
	// and day, for a like-for-like read against Monthly.
	PriorYearMonthly []kpi.MonthlyResult      `json:"priorYearMonthly"`
	Yearly           []kpi.YearlyResult       `json:"yearly"`
	FullOccupancy    FullOccupancy            `json:"fullOccupancy"`
	Daily            []occupancy.Day          `json:"daily"`
	WeekdayGrid      []occupancy.WeekdayMonth `json:"weekdayGrid"`
	Weekdays         []occupancy.WeekdayStats `json:"weekdays"`
	Breakdowns       []CategoryBreakdown      `json:"breakdowns"`
	MonthlyPivot     breakdown.Pivot          `json:"monthlyPivot"`
	WeeklyPivot      breakdown.Pivot          `json:"weeklyPivot"`
	MonthRecap       MonthRecap               `json:"monthRecap"`
	Insight          *kpi.Insight             `json:"insight,omitempty"`
	Forecast         []budget.Point           `json:"forecast,omitempty"`
	ForecastSummary  *budget.Summary          `json:"forecastSummary,omitempty"`
	Budget           Budget                   `json:"budget"`
	// RoomForecast budgets the months after the latest recorded day.
	RoomForecast []budget.Line `json:"roomForecast,omitempty"`
}

// GetReport computes the report for ds. Every indicator resolves capacity
// through src.
func GetReport(logger *zap.Logger, ds record.Dataset, src capacity.Source, opts Options) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src == nil {
		return nil, fmt.Errorf("no capacity source")
	}

	year, asOf, err := period(ds.RoomSales, opts.Year, opts.AsOf)
	if err != nil {
		return nil, err
	}
	rep := &Report{Hotel: opts.Hotel, Year: year, AsOf: asOf}

	ytd := kpi.YearToDate(year, asOf)
	rep.YearToDate, err = kpi.CompareWithPriorYear(ds.RoomSales, ytd, src)
	if err != nil {
		return nil, fmt.Errorf("year to date: %w", err)
	}
	rep.DaysWithData = kpi.DaysWithData(ds.RoomSales, ytd)

	rep.Monthly, err = kpi.Monthly(ds.RoomSales, year, src)
	if err != nil {
		return nil, fmt.Errorf("monthly indicators: %w", err)
	}
	rep.PriorYearMonthly, err = kpi.Monthly(kpi.FilterYearToDate(ds.RoomSales, asOf), year-1, src)
	if err != nil {
		return nil, fmt.Errorf("prior year monthly indicators: %w", err)
	}
	rep.Yearly, err = kpi.Yearly(ds.RoomSales, src)
	if err != nil {
		return nil, fmt.Errorf("yearly indicators: %w", err)
	}

	rep.FullOccupancy, err = fullOccupancy(ds.RoomSales, ytd, src)
	if err != nil {
		return nil, fmt.Errorf("full occupancy: %w", err)
	}
	rep.Daily, err = occupancy.Daily(ds.RoomSales, ytd, src)
	if err != nil {
		return nil, fmt.Errorf("daily occupancy: %w", err)
	}
	rep.WeekdayGrid, err = occupancy.WeekdayMonthGrid(ds.RoomSales, year, src)
	if err != nil {
		return nil, fmt.Errorf("weekday occupancy: %w", err)
	}
	rep.Weekdays = occupancy.ByWeekday(ds.RoomSales, ytd)

	for _, dim := range opts.Dimensions {
		bopts := opts.Breakdown
		if dim != breakdown.Type {
			bopts.Mapping = breakdown.Mapping{}
		}
		entries, err := breakdown.Breakdown(ds, dim, ytd, bopts)
		if err != nil {
			return nil, fmt.Errorf("breakdown by %s: %w", dim, err)
		}
		rep.Breakdowns = append(rep.Breakdowns, CategoryBreakdown{Dimension: dim, Entries: entries})
	}

	rep.MonthlyPivot, err = breakdown.PivotByPeriod(ds.RoomSales, year, breakdown.ByMonth, opts.Breakdown, src)
	if err != nil {
		return nil, fmt.Errorf("monthly pivot: %w", err)
	}
	rep.WeeklyPivot, err = breakdown.PivotByPeriod(ds.RoomSales, year, breakdown.ByWeek, opts.Breakdown, src)
	if err != nil {
		return nil, fmt.Errorf("weekly pivot: %w", err)
	}
	rep.MonthRecap = MonthRecap{
		Month: asOf.Month(),
		Years: breakdown.MonthOverYears(ds.RoomSales, asOf.Month(), opts.Breakdown),
	}

	rep.Insight, err = kpi.Insights(ds.RoomSales, year, src)
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}

	horizon := opts.HorizonMonths
	if horizon == 0 {
		horizon = constants.DefaultForecastMonths
	}
	if len(ds.Periods) > 0 {
		seasonality := opts.Seasonality
		if seasonality == (budget.Seasonality{}) {
			seasonality = budget.DefaultSeasonality
		}
		points, err := budget.NewForecaster(logger, seasonality).Forecast(ds.Periods, horizon, opts.ForecastGrowth)
		if err != nil {
			return nil, fmt.Errorf("forecast: %w", err)
		}
		summary := budget.Summarize(points)
		rep.Forecast = points
		rep.ForecastSummary = &summary
	}

	rep.Budget, err = annualBudget(ds.RoomSales, year, opts)
	if err != nil {
		return nil, fmt.Errorf("budget: %w", err)
	}
	rep.RoomForecast = budget.ForecastFromRoomSales(ds.RoomSales, horizon, opts.BudgetGrowth)

	logger.Info("report computed",
		zap.String("op", "report.GetReport"),
		zap.Int("year", year),
		zap.String("window", ytd.String()),
		zap.Int("records", len(ds.RoomSales)),
		zap.Int("months", len(rep.Monthly)),
		zap.Int("forecastMonths", len(rep.Forecast)),
	)
	return rep, nil
}

// period resolves the analysed year and as-of day.
func period(records []record.RoomSaleRecord, year int, asOf time.Time) (int, time.Time, error) {
	if !asOf.IsZero() {
		if year == 0 {
			year = asOf.Year()
		}
		return year, asOf, nil
	}

	pool := records
	if year != 0 {
		pool = record.ForYear(records, year)
	}
	last, ok := record.LastDay(pool)
	if !ok {
		if year == 0 {
			return 0, time.Time{}, record.NewSchemaError("day", "no dated room sales")
		}
		return 0, time.Time{}, record.NewSchemaError("day", fmt.Sprintf("no room sales in %d", year))
	}
	if year == 0 {
		year = last.Year()
	}
	return year, last, nil
}

func fullOccupancy(records []record.RoomSaleRecord, ytd kpi.Window, src capacity.Source) (FullOccupancy, error) {
	prior := kpi.PriorYear(ytd)
	current, err := occupancy.CountFullOccupancyDays(records, ytd.Start.Year(), ytd.End, src)
	if err != nil {
		return FullOccupancy{}, err
	}
	baseline, err := occupancy.CountFullOccupancyDays(records, prior.Start.Year(), prior.End, src)
	if err != nil {
		return FullOccupancy{}, err
	}
	return FullOccupancy{
		Current:  current,
		Baseline: baseline,
		Change:   occupancy.CompareCounts(current, baseline),
	}, nil
}

func annualBudget(records []record.RoomSaleRecord, year int, opts Options) (Budget, error) {
	budgetYear := opts.BudgetYear
	if budgetYear == 0 {
		budgetYear = year
	}
	generate := func() []budget.Line {
		return budget.AnnualBudget(records, budgetYear, opts.BudgetGrowth)
	}

	b := Budget{Year: budgetYear}
	if opts.Budgets == nil {
		b.Lines = generate()
		b.Generated = true
	} else {
		lines, generated, err := opts.Budgets.LoadOrGenerate(budgetYear, generate)
		if err != nil {
			return Budget{}, err
		}
		b.Lines = lines
		b.Generated = generated
	}
	b.Totals = budget.Totals(b.Lines)
	return b, nil
}
