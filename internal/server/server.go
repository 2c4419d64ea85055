package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/hotel-forecast/internal/config"
	"github.com/iwvelando/hotel-forecast/internal/ingest"
	"github.com/iwvelando/hotel-forecast/internal/report"
	"github.com/iwvelando/hotel-forecast/pkg/budget"
	"github.com/iwvelando/hotel-forecast/pkg/capacity"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/output"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"go.uber.org/zap"
)

type handler struct {
	logger            *zap.Logger
	conf              *config.Configuration
	resolver          *capacity.Resolver
	maxUploadSize     int64
	maxForecastMonths int
	version           string
}

// NewHandler constructs the HTTP handler that serves the report and forecast
// API. conf supplies the report defaults and resolver the room capacity; the
// resolver is shared so that capacity updates apply to later requests.
// serverConf supplies the request limits; nil uses the defaults.
func NewHandler(logger *zap.Logger, conf *config.Configuration, resolver *capacity.Resolver, serverConf *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if conf == nil {
		conf = &config.Configuration{}
	}

	if resolver == nil {
		resolver = capacity.Default()
	}

	maxUploadSize := constants.DefaultMaxUploadSizeBytes
	maxForecastMonths := constants.DefaultMaxForecastMonths
	if serverConf != nil {
		if serverConf.UploadSizeBytes() > 0 {
			maxUploadSize = serverConf.UploadSizeBytes()
		}
		if serverConf.MaxForecastMonths > 0 {
			maxForecastMonths = serverConf.MaxForecastMonths
		}
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:            logger,
		conf:              conf,
		resolver:          resolver,
		maxUploadSize:     maxUploadSize,
		maxForecastMonths: maxForecastMonths,
		version:           trimmedVersion,
	}

	mux := http.NewServeMux()

	// Report API endpoint (room sales upload)
	mux.HandleFunc("/api/report", h.handleReport)

	// Forecast API endpoint for financial periods
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Capacity operator endpoint
	mux.HandleFunc("/api/capacity", h.handleCapacity)

	// Version endpoint
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type reportResponse struct {
	Report   *report.Report `json:"report"`
	CSV      string         `json:"csv"`
	Batch    batchSummary   `json:"batch"`
	Warnings []string       `json:"warnings,omitempty"`
	Duration string         `json:"duration"`
}

type batchSummary struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
}

type forecastRequest struct {
	Periods       []periodPayload `json:"periods"`
	HorizonMonths int             `json:"horizonMonths"`
	GrowthRate    *float64        `json:"growthRate"`
}

type periodPayload struct {
	Date            string  `json:"date"`
	Revenue         float64 `json:"revenue"`
	Cost            float64 `json:"cost"`
	RevenueCategory string  `json:"revenueCategory,omitempty"`
	CostCategory    string  `json:"costCategory,omitempty"`
}

type forecastResponse struct {
	Points   []budget.Point `json:"points"`
	Summary  budget.Summary `json:"summary"`
	Duration string         `json:"duration"`
}

type capacityRequest struct {
	TotalRooms int  `json:"totalRooms"`
	Year       *int `json:"year,omitempty"`
}

type capacityResponse struct {
	TotalRooms int            `json:"totalRooms"`
	Overrides  map[string]int `json:"overrides,omitempty"`
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleReport"
	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	opts, err := report.OptionsFromConfig(h.conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("invalid server configuration: %v", err), op)
		return
	}
	if err := applyQuery(&opts, r); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	loader := ingest.NewLoader(h.logger, ingest.Options{HeaderRow: h.conf.Data.HeaderRow, Sheet: h.conf.Data.Sheet})

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing room sales file", op)
		return
	}
	batch, err := loader.ReadRoomSales(file, header.Filename)
	h.closeUpload(file, op)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("failed to read room sales: %v", err), op)
		return
	}
	ds := record.Dataset{RoomSales: batch.Records}

	if finFile, finHeader, err := r.FormFile("financials"); err == nil {
		periods, err := loader.ReadFinancials(finFile, finHeader.Filename)
		h.closeUpload(finFile, op)
		if err != nil {
			h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("failed to read financials: %v", err), op)
			return
		}
		ds.Periods = periods
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read financials: %v", err), op)
		return
	}

	rep, err := report.GetReport(h.logger, ds, h.resolver, opts)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("failed to compute report: %v", err), op)
		return
	}

	var warnings []string
	if batch.Dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows with unreadable dates were dropped", batch.Dropped))
	}

	elapsed := time.Since(start)
	response := reportResponse{
		Report: rep,
		CSV:    output.CsvString(rep),
		Batch: batchSummary{
			ID:      batch.ID,
			Source:  batch.Source,
			Records: len(batch.Records),
			Dropped: batch.Dropped,
		},
		Warnings: warnings,
		Duration: elapsed.String(),
	}

	h.logger.Info("report computed",
		zap.String("op", op),
		zap.String("batch", batch.ID),
		zap.Int("records", len(batch.Records)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// applyQuery overrides the report year and as-of day from the query string.
func applyQuery(opts *report.Options, r *http.Request) error {
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid year %q", v)
		}
		opts.Year = year
	}
	if v := strings.TrimSpace(q.Get("asOf")); v != "" {
		asOf, err := time.Parse(datetime.DateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid asOf %q", v)
		}
		opts.AsOf = asOf
	}
	return nil
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleForecast"
	start := time.Now()

	var req forecastRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondErrorWithOp(w, decodeStatus(err), fmt.Sprintf("failed to decode forecast request: %v", err), op)
		return
	}

	periods := make([]record.FinancialPeriod, 0, len(req.Periods))
	for i, p := range req.Periods {
		date, err := ingest.ParsePeriodDate(p.Date)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("period %d: %v", i+1, err), op)
			return
		}
		periods = append(periods, record.FinancialPeriod{
			Date:            date,
			Revenue:         p.Revenue,
			Cost:            p.Cost,
			RevenueCategory: p.RevenueCategory,
			CostCategory:    p.CostCategory,
		})
	}

	horizon := req.HorizonMonths
	if horizon == 0 {
		horizon = h.conf.Forecast.HorizonMonths
	}
	if horizon == 0 {
		horizon = constants.DefaultForecastMonths
	}
	if horizon > h.maxForecastMonths {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("horizon of %d months exceeds the limit of %d", horizon, h.maxForecastMonths), op)
		return
	}
	growth := constants.DefaultGrowthRate
	if h.conf.Forecast.GrowthRate != nil {
		growth = *h.conf.Forecast.GrowthRate
	}
	if req.GrowthRate != nil {
		growth = *req.GrowthRate
	}

	seasonality, err := h.conf.SeasonalityTable()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("invalid server configuration: %v", err), op)
		return
	}

	points, err := budget.NewForecaster(h.logger, seasonality).Forecast(periods, horizon, growth)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, forecastResponse{
		Points:   points,
		Summary:  budget.Summarize(points),
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleCapacity(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCapacity"
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req capacityRequest
		if err := h.decodeJSON(w, r, &req); err != nil {
			h.respondErrorWithOp(w, decodeStatus(err), fmt.Sprintf("failed to decode capacity request: %v", err), op)
			return
		}
		var err error
		if req.Year != nil {
			err = h.resolver.SetOverride(*req.Year, req.TotalRooms)
		} else {
			err = h.resolver.SetDefault(req.TotalRooms)
		}
		if err != nil {
			h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
			return
		}
		h.logger.Info("capacity updated",
			zap.String("op", op),
			zap.Int("totalRooms", req.TotalRooms),
			zap.Bool("override", req.Year != nil),
		)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	overrides := h.resolver.Overrides()
	resp := capacityResponse{TotalRooms: h.resolver.DefaultRooms()}
	if len(overrides) > 0 {
		resp.Overrides = make(map[string]int, len(overrides))
		for year, rooms := range overrides {
			resp.Overrides[strconv.Itoa(year)] = rooms
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// decodeJSON reads a JSON body capped at the configured upload size.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// statusFor maps input and capacity errors to client statuses and everything
// else to 500.
func statusFor(err error) int {
	var schemaErr *record.SchemaError
	var cfgErr *capacity.ConfigurationError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingest.ErrUnsupportedFormat), errors.Is(err, budget.ErrInvalidParameter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) closeUpload(file multipart.File, op string) {
	if closeErr := file.Close(); closeErr != nil {
		h.logger.Warn("failed to close uploaded file",
			zap.String("op", op),
			zap.Error(closeErr),
		)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
