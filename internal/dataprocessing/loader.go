package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "pqlens/internal/errors"
	"pqlens/pkg/contracts/domain"
)

// TimestampCandidates is the ordered priority list of column names that can
// serve as a table's temporal index. The first name present in the header
// wins; the order is "best known name first", not alphabetical.
var TimestampCandidates = []string{
	"Stop(E. Africa Standard Time)",
	"Start/Stop(E. Africa Standard Time)",
	"Time",
	"DateTime",
	"Timestamp",
}

// timestampLayouts are the timezone-naive layouts the metering exports
// produce. Cells matching none of these (and not an Excel serial number)
// fail the whole load.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"02/01/2006 15:04:05",
}

// excelEpoch is the zero date of Excel serial date numbers.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// WorkbookLocator resolves a station to an existing workbook file.
type WorkbookLocator interface {
	WorkbookPath(station domain.Station) (string, error)
}

// Loader turns a station's raw workbook export into a validated,
// time-indexed measurement table. Loads are all-or-nothing: a missing file
// fails with SOURCE_NOT_FOUND, an unrecognized or unparseable timestamp
// column fails with SCHEMA, and no partially populated table is ever
// returned.
type Loader struct {
	locator WorkbookLocator
	logger  *slog.Logger
}

// NewLoader creates a loader backed by the given workbook locator.
func NewLoader(locator WorkbookLocator, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		locator: locator,
		logger:  logger.With(slog.String("component", "loader")),
	}
}

// Load reads and parses the workbook for a station.
func (l *Loader) Load(ctx context.Context, station domain.Station) (*domain.MeasurementTable, error) {
	path, err := l.locator.WorkbookPath(station)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "loading station workbook",
		slog.String("station", station.String()),
		slog.String("path", path))

	table, err := l.ParseWorkbook(path, station)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "station workbook loaded",
		slog.String("station", station.String()),
		slog.String("time_column", table.TimeColumn),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", len(table.Columns)))

	return table, nil
}

// ParseWorkbook parses a single workbook file into a measurement table. The
// first sheet is used, mirroring how the exports are produced: one sheet,
// first-row header, arbitrary column order.
func (l *Loader) ParseWorkbook(path string, station domain.Station) (*domain.MeasurementTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("workbook %s has no sheets", path), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("workbook %s has an empty sheet", path), nil)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	timeIdx, timeCol := findTimestampColumn(header)
	if timeIdx < 0 {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("no recognized timestamp column in %s; header: %v", path, header), nil).
			WithContext("candidates", TimestampCandidates)
	}

	table := &domain.MeasurementTable{
		Station:    station,
		TimeColumn: timeCol,
		Series:     make(map[string][]domain.Cell),
	}

	// Value columns keep the original header order; duplicate names beyond
	// the first occurrence are ignored, as is the timestamp column itself.
	colIdx := make(map[int]string)
	for i, name := range header {
		if i == timeIdx || name == "" {
			continue
		}
		if _, seen := table.Series[name]; seen {
			continue
		}
		table.Columns = append(table.Columns, name)
		table.Series[name] = nil
		colIdx[i] = name
	}

	for rowNum, row := range rows[1:] {
		if rowIsEmpty(row) {
			continue
		}

		var cell string
		if timeIdx < len(row) {
			cell = strings.TrimSpace(row[timeIdx])
		}
		ts, err := parseTimestamp(cell)
		if err != nil {
			// No silent data loss: a single bad timestamp fails the load.
			return nil, apperrors.NewSchemaError(
				fmt.Sprintf("row %d: cannot parse %q as a timestamp in column %q", rowNum+2, cell, timeCol), err)
		}
		table.Index = append(table.Index, ts)

		for i, name := range colIdx {
			var raw string
			if i < len(row) {
				raw = strings.TrimSpace(row[i])
			}
			table.Series[name] = append(table.Series[name], parseNumericCell(raw))
		}
	}

	return table, nil
}

// findTimestampColumn scans the candidate list in priority order and returns
// the index and name of the first candidate present in the header.
func findTimestampColumn(header []string) (int, string) {
	for _, candidate := range TimestampCandidates {
		for i, name := range header {
			if name == candidate {
				return i, candidate
			}
		}
	}
	return -1, ""
}

// parseTimestamp parses a timezone-naive timestamp cell. Excel serial date
// numbers are accepted because unstyled datetime cells round-trip through
// the sheet as serials.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp cell")
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		days := int(serial)
		frac := serial - float64(days)
		return excelEpoch.AddDate(0, 0, days).
			Add(time.Duration(frac * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", s)
}

// parseNumericCell parses a measurement cell. Empty or non-numeric cells are
// recorded as missing, never as zero; they are not load errors.
func parseNumericCell(s string) domain.Cell {
	if s == "" {
		return domain.Cell{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return domain.Cell{}
	}
	return domain.Num(v)
}

// rowIsEmpty reports whether every cell of the row is blank. Trailing
// padding rows produced by the export tool are skipped rather than treated
// as schema failures.
func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
