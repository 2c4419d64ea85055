// Package ingest loads room-sales and financial data files into the
// canonical record set. It renames PMS export columns, checks that the
// required fields are present and drops rows whose date cannot be read.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/datetime"
	"github.com/iwvelando/hotel-forecast/pkg/record"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Options controls how data files are read.
type Options struct {
	// HeaderRow is the 1-based row holding column names; zero detects it.
	HeaderRow int
	// Sheet is the workbook sheet to read; empty reads the first sheet.
	Sheet string
}

// Loader reads data files.
type Loader struct {
	logger *zap.Logger
	opts   Options
}

// NewLoader creates a loader. A nil logger is replaced by a no-op.
func NewLoader(logger *zap.Logger, opts Options) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger, opts: opts}
}

// Batch is the result of loading one room-sales file.
type Batch struct {
	ID      string                  `json:"id"`
	Source  string                  `json:"source"`
	Records []record.RoomSaleRecord `json:"records"`
	Dropped int                     `json:"dropped"`
}

// LoadRoomSales reads a room-sales file from disk.
func (l *Loader) LoadRoomSales(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to open room sales file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return l.ReadRoomSales(f, filepath.Base(path))
}

// ReadRoomSales reads room sales from r. name selects the format by its
// extension (.xlsx or .csv) and is recorded as each row's source file.
func (l *Loader) ReadRoomSales(r io.Reader, name string) (Batch, error) {
	rows, err := l.readRows(r, name)
	if err != nil {
		return Batch{}, err
	}

	headerIdx, err := findHeader(rows, roomSalesColumns, ColDay, l.opts.HeaderRow)
	if err != nil {
		return Batch{}, err
	}
	cols := mapColumns(rows[headerIdx], roomSalesColumns)
	for _, required := range []string{ColDay, ColRooms, ColRevenue} {
		if _, ok := cols[required]; !ok {
			return Batch{}, record.NewSchemaError(required, fmt.Sprintf("missing required column in %s", name))
		}
	}

	batch := Batch{ID: uuid.New().String(), Source: name}
	dataRows := 0
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		dataRows++
		rowNo := i + 1

		day, err := datetime.ParseDate(cell(row, cols, ColDay))
		if err != nil {
			batch.Dropped++
			l.logger.Debug("dropping row with unreadable date",
				zap.String("op", "ingest.ReadRoomSales"),
				zap.String("file", name),
				zap.Int("row", rowNo),
				zap.Error(err),
			)
			continue
		}

		rec, err := roomSaleFromRow(row, cols, rowNo)
		if err != nil {
			return Batch{}, err
		}
		rec.Day = day
		if rec.SourceFile == "" {
			rec.SourceFile = name
		}
		batch.Records = append(batch.Records, rec)
	}

	if dataRows > 0 && len(batch.Records) == 0 {
		return Batch{}, record.NewSchemaError(ColDay, fmt.Sprintf("no readable dates in %s", name))
	}
	if batch.Dropped > 0 {
		l.logger.Warn("dropped rows with unreadable dates",
			zap.String("op", "ingest.ReadRoomSales"),
			zap.String("file", name),
			zap.Int("dropped", batch.Dropped),
		)
	}
	l.logger.Info("room sales loaded",
		zap.String("op", "ingest.ReadRoomSales"),
		zap.String("batch", batch.ID),
		zap.String("file", name),
		zap.Int("records", len(batch.Records)),
	)
	return batch, nil
}

func roomSaleFromRow(row []string, cols map[string]int, rowNo int) (record.RoomSaleRecord, error) {
	rooms, err := parseCount(cell(row, cols, ColRooms))
	if err != nil {
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColRooms, Row: rowNo, Reason: err.Error()}
	}
	customers, err := parseCount(cell(row, cols, ColCustomers))
	if err != nil {
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColCustomers, Row: rowNo, Reason: err.Error()}
	}
	revenue, err := parseNumber(cell(row, cols, ColRevenue))
	if err != nil {
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColRevenue, Row: rowNo, Reason: err.Error()}
	}
	pm, err := parseNumber(cell(row, cols, ColPM))
	if err != nil {
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColPM, Row: rowNo, Reason: err.Error()}
	}

	switch {
	case rooms < 0:
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColRooms, Row: rowNo, Reason: "must not be negative"}
	case customers < 0:
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColCustomers, Row: rowNo, Reason: "must not be negative"}
	case revenue < 0:
		return record.RoomSaleRecord{}, &record.SchemaError{Field: ColRevenue, Row: rowNo, Reason: "must not be negative"}
	}

	return record.RoomSaleRecord{
		Type:       cell(row, cols, ColType),
		SousType:   cell(row, cols, ColSousType),
		NRooms:     rooms,
		NCustomers: customers,
		CARoom:     revenue,
		PM:         pm,
		SourceFile: cell(row, cols, ColSourceFile),
	}, nil
}

// LoadFinancials reads a financial periods file from disk.
func (l *Loader) LoadFinancials(path string) ([]record.FinancialPeriod, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open financials file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return l.ReadFinancials(f, filepath.Base(path))
}

// ReadFinancials reads monthly financial periods from r. Cost is required:
// it is never estimated from revenue. Negative amounts are rejected.
func (l *Loader) ReadFinancials(r io.Reader, name string) ([]record.FinancialPeriod, error) {
	rows, err := l.readRows(r, name)
	if err != nil {
		return nil, err
	}

	headerIdx, err := findHeader(rows, financialColumns, ColDate, l.opts.HeaderRow)
	if err != nil {
		return nil, err
	}
	cols := mapColumns(rows[headerIdx], financialColumns)
	for _, required := range []string{ColDate, ColFinRevenue, ColCost} {
		if _, ok := cols[required]; !ok {
			return nil, record.NewSchemaError(required, fmt.Sprintf("missing required column in %s", name))
		}
	}

	var periods []record.FinancialPeriod
	dropped, dataRows := 0, 0
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		dataRows++
		rowNo := i + 1

		date, err := ParsePeriodDate(cell(row, cols, ColDate))
		if err != nil {
			dropped++
			continue
		}
		revenue, err := parseNumber(cell(row, cols, ColFinRevenue))
		if err != nil {
			return nil, &record.SchemaError{Field: ColFinRevenue, Row: rowNo, Reason: err.Error()}
		}
		cost, err := parseNumber(cell(row, cols, ColCost))
		if err != nil {
			return nil, &record.SchemaError{Field: ColCost, Row: rowNo, Reason: err.Error()}
		}
		switch {
		case revenue < 0:
			return nil, &record.SchemaError{Field: ColFinRevenue, Row: rowNo, Reason: "must not be negative"}
		case cost < 0:
			return nil, &record.SchemaError{Field: ColCost, Row: rowNo, Reason: "must not be negative"}
		}
		periods = append(periods, record.FinancialPeriod{
			Date:            date,
			Revenue:         revenue,
			Cost:            cost,
			RevenueCategory: cell(row, cols, ColRevenueCategory),
			CostCategory:    cell(row, cols, ColCostCategory),
		})
	}

	if dataRows > 0 && len(periods) == 0 {
		return nil, record.NewSchemaError(ColDate, fmt.Sprintf("no readable dates in %s", name))
	}
	if dropped > 0 {
		l.logger.Warn("dropped financial rows with unreadable dates",
			zap.String("op", "ingest.ReadFinancials"),
			zap.String("file", name),
			zap.Int("dropped", dropped),
		)
	}
	return periods, nil
}

// ParsePeriodDate accepts full dates and year-month values, the latter
// mapped to the month's last day.
func ParsePeriodDate(value string) (time.Time, error) {
	if t, err := datetime.ParseDate(value); err == nil {
		return t, nil
	}
	t, err := time.Parse(datetime.MonthLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized period %q", value)
	}
	return datetime.MonthEnd(t.Year(), t.Month()), nil
}

// LoadDataset loads every room-sales and financials file concurrently and
// merges them in the order given.
func (l *Loader) LoadDataset(ctx context.Context, roomSalesFiles, financialFiles []string) (record.Dataset, error) {
	batches := make([]Batch, len(roomSalesFiles))
	periods := make([][]record.FinancialPeriod, len(financialFiles))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range roomSalesFiles {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := l.LoadRoomSales(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			batches[i] = b
			return nil
		})
	}
	for i, path := range financialFiles {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := l.LoadFinancials(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			periods[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return record.Dataset{}, err
	}

	var ds record.Dataset
	for _, b := range batches {
		ds.RoomSales = append(ds.RoomSales, b.Records...)
	}
	for _, p := range periods {
		ds.Periods = append(ds.Periods, p...)
	}
	return ds, nil
}

// readRows reads all rows of a CSV file or of one sheet of a workbook.
func (l *Loader) readRows(r io.Reader, name string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return l.readWorkbook(r)
	case ".csv", ".txt", "":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func (l *Loader) readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.Comma = detectDelimiter(data)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks ';' for exports written with a European locale. It
// compares the busiest of the first MaxHeaderScanRows lines, so a leading
// title line does not decide on its own.
func detectDelimiter(data []byte) rune {
	maxSemicolons, maxCommas := 0, 0
	for i, line := range bytes.SplitN(data, []byte("\n"), constants.MaxHeaderScanRows+1) {
		if i == constants.MaxHeaderScanRows {
			break
		}
		maxSemicolons = max(maxSemicolons, bytes.Count(line, []byte(";")))
		maxCommas = max(maxCommas, bytes.Count(line, []byte(",")))
	}
	if maxSemicolons > maxCommas {
		return ';'
	}
	return ','
}

// findHeader returns the index of the header row. An explicit 1-based
// headerRow is used as is; otherwise the first rows are searched for one that
// names the key column.
func findHeader(rows [][]string, table map[string]string, key string, headerRow int) (int, error) {
	if len(rows) == 0 {
		return 0, record.NewSchemaError(key, "file is empty")
	}
	if headerRow > 0 {
		if headerRow > len(rows) {
			return 0, record.NewSchemaError(key, fmt.Sprintf("header row %d beyond end of file", headerRow))
		}
		return headerRow - 1, nil
	}
	limit := len(rows)
	if limit > constants.MaxHeaderScanRows {
		limit = constants.MaxHeaderScanRows
	}
	for i := 0; i < limit; i++ {
		if _, ok := mapColumns(rows[i], table)[key]; ok {
			return i, nil
		}
	}
	return 0, record.NewSchemaError(key, "missing required column")
}
