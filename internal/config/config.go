// Package config defines the data structures related to configuration and
// includes functions for loading and converting the config.
package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/breakdown"
	"github.com/iwvelando/hotel-forecast/pkg/budget"
	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for hotel-forecast.
type Configuration struct {
	Hotel    Hotel         `yaml:"hotel"`
	Data     Data          `yaml:"data"`
	Report   Report        `yaml:"report"`
	Forecast Forecast      `yaml:"forecast"`
	Budget   Budget        `yaml:"budget"`
	Logging  LoggingConfig `yaml:"logging,omitempty"`
	Output   OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Hotel describes the property. CapacityByYear keys are years ("2024").
// TotalRooms is only defaulted when absent; an explicit 0 is an error.
type Hotel struct {
	Name           string         `yaml:"name"`
	TotalRooms     *int           `yaml:"totalRooms"`
	CapacityByYear map[string]int `yaml:"capacityByYear,omitempty"`
}

// Rooms returns the configured default capacity.
func (h Hotel) Rooms() int {
	if h.TotalRooms == nil {
		return constants.DefaultTotalRooms
	}
	return *h.TotalRooms
}

// Data lists the input files.
type Data struct {
	RoomSales  []string `yaml:"roomSales"`
	Financials []string `yaml:"financials,omitempty"`
	// HeaderRow is the 1-based row holding column names. Zero searches the
	// first rows for one; the PMS export puts a title on row 1.
	HeaderRow int    `yaml:"headerRow,omitempty"`
	Sheet     string `yaml:"sheet,omitempty"`
}

// Report selects the analysed period and breakdown options.
type Report struct {
	Year            int            `yaml:"year,omitempty"`
	AsOf            string         `yaml:"asOf,omitempty"`
	CollapseMinor   bool           `yaml:"collapseMinor,omitempty"`
	MainCategories  []string       `yaml:"mainCategories,omitempty"`
	CategoryMapping []CategoryRule `yaml:"categoryMapping,omitempty"`
	MappingFallback string         `yaml:"mappingFallback,omitempty"`
	Dimensions      []string       `yaml:"dimensions,omitempty"`
}

// CategoryRule renames one raw category. Rules are a list rather than a map
// because configuration keys are case-folded on load.
type CategoryRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Forecast holds the forecast generator parameters. Seasonality keys are
// month numbers ("7") or English month names ("july").
type Forecast struct {
	HorizonMonths int                `yaml:"horizonMonths,omitempty"`
	GrowthRate    *float64           `yaml:"growthRate,omitempty"`
	Seasonality   map[string]float64 `yaml:"seasonality,omitempty"`
}

// Budget holds the annual room budget parameters.
type Budget struct {
	Year       int      `yaml:"year,omitempty"`
	GrowthRate *float64 `yaml:"growthRate,omitempty"`
	Directory  string   `yaml:"directory,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.applyDefaults()
	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Hotel.TotalRooms == nil {
		rooms := constants.DefaultTotalRooms
		c.Hotel.TotalRooms = &rooms
	}
	if c.Forecast.HorizonMonths == 0 {
		c.Forecast.HorizonMonths = constants.DefaultForecastMonths
	}
	if c.Forecast.GrowthRate == nil {
		g := constants.DefaultGrowthRate
		c.Forecast.GrowthRate = &g
	}
	if c.Budget.GrowthRate == nil {
		g := constants.DefaultGrowthRate
		c.Budget.GrowthRate = &g
	}
	if c.Budget.Directory == "" {
		c.Budget.Directory = constants.DefaultBudgetDir
	}
	if len(c.Report.Dimensions) == 0 {
		c.Report.Dimensions = []string{string(breakdown.Type)}
	}
}

// CapacityTable converts the per-year capacity overrides.
func (c *Configuration) CapacityTable() (map[int]int, error) {
	table := make(map[int]int, len(c.Hotel.CapacityByYear))
	for key, rooms := range c.Hotel.CapacityByYear {
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("invalid capacity year %q: %w", key, err)
		}
		table[year] = rooms
	}
	return table, nil
}

// Resolver builds the capacity resolver for the configured hotel.
func (c *Configuration) Resolver() (*capacity.Resolver, error) {
	table, err := c.CapacityTable()
	if err != nil {
		return nil, err
	}
	return capacity.NewFromConfig(c.Hotel.Rooms(), table)
}

// SeasonalityTable applies configured factors over the default table.
func (c *Configuration) SeasonalityTable() (budget.Seasonality, error) {
	factors := make(map[int]float64, len(c.Forecast.Seasonality))
	for key, factor := range c.Forecast.Seasonality {
		month, err := parseMonth(key)
		if err != nil {
			return budget.Seasonality{}, err
		}
		factors[month] = factor
	}
	return budget.SeasonalityFromMap(budget.DefaultSeasonality, factors)
}

func parseMonth(key string) (int, error) {
	trimmed := strings.TrimSpace(key)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, nil
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), trimmed) || strings.EqualFold(m.String()[:3], trimmed) {
			return int(m), nil
		}
	}
	return 0, fmt.Errorf("invalid seasonality month %q", key)
}

// Mapping returns the category mapping, or the built-in PMS mapping when
// none is configured.
func (c *Configuration) Mapping() breakdown.Mapping {
	if len(c.Report.CategoryMapping) == 0 && c.Report.MappingFallback == "" {
		return breakdown.DefaultTypeMapping
	}
	table := make(map[string]string, len(c.Report.CategoryMapping))
	for _, rule := range c.Report.CategoryMapping {
		table[strings.TrimSpace(rule.From)] = rule.To
	}
	return breakdown.Mapping{Table: table, Fallback: c.Report.MappingFallback}
}

// BreakdownDimensions parses the configured dimensions.
func (c *Configuration) BreakdownDimensions() ([]breakdown.Dimension, error) {
	dims := make([]breakdown.Dimension, 0, len(c.Report.Dimensions))
	for _, s := range c.Report.Dimensions {
		d, err := breakdown.ParseDimension(s)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// AsOfDate parses report.asOf. The zero time is returned when unset.
func (c *Configuration) AsOfDate() (time.Time, error) {
	if strings.TrimSpace(c.Report.AsOf) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(datetime.DateLayout, strings.TrimSpace(c.Report.AsOf))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid report.asOf %q: %w", c.Report.AsOf, err)
	}
	return t, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	years := make([]string, 0, len(c.Hotel.CapacityByYear))
	for y := range c.Hotel.CapacityByYear {
		years = append(years, y)
	}
	sort.Strings(years)
	overrides := make([]validation.CapacityOverride, 0, len(years))
	for _, y := range years {
		overrides = append(overrides, validation.CapacityOverride{Year: y, Rooms: c.Hotel.CapacityByYear[y]})
	}

	validator := validation.ConfigValidator{
		DefaultRooms:      c.Hotel.Rooms(),
		CapacityOverrides: overrides,
		RoomSalesFiles:    c.Data.RoomSales,
		AsOf:              c.Report.AsOf,
		MainCategories:    c.Report.MainCategories,
		CollapseMinor:     c.Report.CollapseMinor,
		HorizonMonths:     c.Forecast.HorizonMonths,
		ForecastGrowth:    derefOr(c.Forecast.GrowthRate, constants.DefaultGrowthRate),
		BudgetGrowth:      derefOr(c.Budget.GrowthRate, constants.DefaultGrowthRate),
		Seasonality:       c.Forecast.Seasonality,
	}
	return validator.ValidateAll()
}

func derefOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
