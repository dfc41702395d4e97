package dataprocessing

import (
	"log/slog"

	apperrors "pqlens/internal/errors"
	"pqlens/pkg/contracts/domain"
)

// Indicator source columns. Each indicator is derived from exactly one
// measurement column; when that column is absent the indicator is undefined,
// which is deliberately distinct from a measured zero.
const (
	ColPower     = "PowerP_Total_avg"
	ColPF        = "PfFwdRev_Total_avg"
	ColVoltage   = "Vrms_AN_avg"
	ColCurrent   = "Irms_A_avg"
	ColFrequency = "Frequency_avg"
	ColVthd      = "Vthd_AN_avg"
	ColIthd      = "Ithd_A_avg"
)

// wattsPerKilowatt converts the averaged power reading to kW. The conversion
// is applied after aggregation, not per row.
const wattsPerKilowatt = 1000

// Summarizer derives the fixed indicator set from a measurement table.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		logger: logger.With(slog.String("component", "summarizer")),
	}
}

// Derive computes the indicator set for a table. It never fails for a
// well-formed table, including an empty one (all indicators undefined,
// data_points zero); a structurally malformed table fails with
// INVALID_INPUT. Derive is a pure function of the table: calling it twice
// yields identical results.
func (s *Summarizer) Derive(table *domain.MeasurementTable) (*domain.IndicatorSet, error) {
	if table == nil {
		return nil, apperrors.NewInvalidInputError("measurement table is nil", nil)
	}
	if err := table.Validate(); err != nil {
		return nil, apperrors.NewInvalidInputError("measurement table is structurally malformed", err)
	}

	indicators := &domain.IndicatorSet{
		AvgPower:     scale(columnMean(table, ColPower), 1.0/wattsPerKilowatt),
		AvgPF:        columnMean(table, ColPF),
		AvgVoltage:   columnMean(table, ColVoltage),
		AvgCurrent:   columnMean(table, ColCurrent),
		AvgFrequency: columnMean(table, ColFrequency),
		AvgVthd:      columnMean(table, ColVthd),
		AvgIthd:      columnMean(table, ColIthd),
		DataPoints:   table.RowCount(),
	}

	s.logger.Debug("indicators derived",
		slog.String("station", table.Station.String()),
		slog.Int("data_points", indicators.DataPoints))

	return indicators, nil
}

// columnMean returns the arithmetic mean of the numeric, non-missing cells
// of a column, or nil when the column is absent or holds no numeric values.
func columnMean(table *domain.MeasurementTable, column string) *float64 {
	cells, ok := table.Column(column)
	if !ok {
		return nil
	}

	var sum float64
	var count int
	for _, cell := range cells {
		if !cell.Valid {
			continue
		}
		sum += cell.Value
		count++
	}
	if count == 0 {
		return nil
	}

	mean := sum / float64(count)
	return &mean
}

// scale multiplies an optional value by factor; a no-op on undefined.
func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}
