package dataprocessing

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pqlens/internal/errors"
	"pqlens/pkg/contracts/domain"
)

// newTable builds an in-memory table with one row per index entry.
func newTable(index []time.Time, series map[string][]domain.Cell) *domain.MeasurementTable {
	t := &domain.MeasurementTable{
		Station:    domain.StationMvule,
		TimeColumn: "Time",
		Index:      index,
		Series:     series,
	}
	for name := range series {
		t.Columns = append(t.Columns, name)
	}
	return t
}

func stamps(n int) []time.Time {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * 10 * time.Minute)
	}
	return out
}

func TestSummarizer_Derive_DataPointsMatchesRowCount(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	table := newTable(stamps(3), map[string][]domain.Cell{
		ColFrequency: {domain.Num(50), domain.Num(49.9), domain.Num(50.1)},
	})

	indicators, err := summarizer.Derive(table)
	require.NoError(t, err)
	assert.Equal(t, table.RowCount(), indicators.DataPoints)
}

func TestSummarizer_Derive_PowerConvertedToKilowatts(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	tests := []struct {
		name  string
		cells []domain.Cell
		want  float64
	}{
		{
			name:  "single row 2000 W is 2 kW",
			cells: []domain.Cell{domain.Num(2000)},
			want:  2.0,
		},
		{
			name:  "mean of 1000 and 3000 W is 2 kW",
			cells: []domain.Cell{domain.Num(1000), domain.Num(3000)},
			want:  2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTable(stamps(len(tt.cells)), map[string][]domain.Cell{
				ColPower: tt.cells,
			})

			indicators, err := summarizer.Derive(table)
			require.NoError(t, err)
			require.NotNil(t, indicators.AvgPower)
			assert.InDelta(t, tt.want, *indicators.AvgPower, 1e-9)
		})
	}
}

func TestSummarizer_Derive_MissingColumnIsUndefined(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	table := newTable(stamps(2), map[string][]domain.Cell{
		ColVoltage: {domain.Num(230), domain.Num(232)},
	})

	indicators, err := summarizer.Derive(table)
	require.NoError(t, err)

	assert.Nil(t, indicators.AvgPower, "absent column must yield undefined, not zero")
	require.NotNil(t, indicators.AvgVoltage)
	assert.InDelta(t, 231, *indicators.AvgVoltage, 1e-9)
	assert.Equal(t, 2, indicators.DataPoints)
}

func TestSummarizer_Derive_MissingCellsExcludedFromMean(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	table := newTable(stamps(3), map[string][]domain.Cell{
		ColCurrent: {domain.Num(10), {}, domain.Num(20)},
	})

	indicators, err := summarizer.Derive(table)
	require.NoError(t, err)
	require.NotNil(t, indicators.AvgCurrent)
	assert.InDelta(t, 15, *indicators.AvgCurrent, 1e-9)
	assert.Equal(t, 3, indicators.DataPoints, "data_points counts rows, not valid cells")
}

func TestSummarizer_Derive_AllMissingColumnIsUndefined(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	table := newTable(stamps(2), map[string][]domain.Cell{
		ColVthd: {{}, {}},
	})

	indicators, err := summarizer.Derive(table)
	require.NoError(t, err)
	assert.Nil(t, indicators.AvgVthd, "a column of only missing cells has no mean")
}

func TestSummarizer_Derive_EmptyTable(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	table := newTable(nil, map[string][]domain.Cell{})

	indicators, err := summarizer.Derive(table)
	require.NoError(t, err)

	assert.Equal(t, 0, indicators.DataPoints)
	assert.Nil(t, indicators.AvgPower)
	assert.Nil(t, indicators.AvgPF)
	assert.Nil(t, indicators.AvgVoltage)
	assert.Nil(t, indicators.AvgCurrent)
	assert.Nil(t, indicators.AvgFrequency)
	assert.Nil(t, indicators.AvgVthd)
	assert.Nil(t, indicators.AvgIthd)
}

func TestSummarizer_Derive_Idempotent(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	table := newTable(stamps(2), map[string][]domain.Cell{
		ColPower: {domain.Num(1500), domain.Num(2500)},
		ColPF:    {domain.Num(0.85), domain.Num(0.87)},
	})

	first, err := summarizer.Derive(table)
	require.NoError(t, err)
	second, err := summarizer.Derive(table)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummarizer_Derive_InvalidInput(t *testing.T) {
	summarizer := NewSummarizer(slog.Default())

	tests := []struct {
		name  string
		table *domain.MeasurementTable
	}{
		{
			name:  "nil table",
			table: nil,
		},
		{
			name: "cell count disagrees with rows",
			table: &domain.MeasurementTable{
				Station:    domain.StationClinic,
				TimeColumn: "Time",
				Index:      stamps(2),
				Columns:    []string{ColPower},
				Series: map[string][]domain.Cell{
					ColPower: {domain.Num(1)},
				},
			},
		},
		{
			name: "named column without series",
			table: &domain.MeasurementTable{
				Station:    domain.StationClinic,
				TimeColumn: "Time",
				Columns:    []string{ColPower},
				Series:     map[string][]domain.Cell{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := summarizer.Derive(tt.table)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput))
		})
	}
}
