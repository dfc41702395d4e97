// Package exporter renders measurement data for download.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pqlens/pkg/contracts/domain"
)

// timestampFormat is the export format for the table's temporal index,
// matching the timezone-naive form the metering exports use.
const timestampFormat = "2006-01-02 15:04:05"

// WriteTableCSV streams a measurement table as CSV: the timestamp column
// first, then the value columns in their original order. Missing cells are
// written as empty fields, never as zero.
func WriteTableCSV(w io.Writer, table *domain.MeasurementTable) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	cw := csv.NewWriter(w)

	header := append([]string{table.TimeColumn}, table.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(header))
	for i, ts := range table.Index {
		record[0] = ts.Format(timestampFormat)
		for j, column := range table.Columns {
			cell := table.Series[column][i]
			if cell.Valid {
				record[j+1] = strconv.FormatFloat(cell.Value, 'f', -1, 64)
			} else {
				record[j+1] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteIndicatorsCSV writes an indicator set as a two-column CSV of
// indicator name and value. Undefined indicators export as empty fields.
func WriteIndicatorsCSV(w io.Writer, station domain.Station, indicators *domain.IndicatorSet) error {
	if indicators == nil {
		return fmt.Errorf("indicator set is nil")
	}

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"station", "indicator", "value"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := []struct {
		name  string
		value *float64
	}{
		{"avg_power", indicators.AvgPower},
		{"avg_pf", indicators.AvgPF},
		{"avg_voltage", indicators.AvgVoltage},
		{"avg_current", indicators.AvgCurrent},
		{"avg_frequency", indicators.AvgFrequency},
		{"avg_vthd", indicators.AvgVthd},
		{"avg_ithd", indicators.AvgIthd},
	}

	for _, row := range rows {
		value := ""
		if row.value != nil {
			value = strconv.FormatFloat(*row.value, 'f', -1, 64)
		}
		if err := cw.Write([]string{station.String(), row.name, value}); err != nil {
			return fmt.Errorf("failed to write indicator %s: %w", row.name, err)
		}
	}

	if err := cw.Write([]string{station.String(), "data_points", strconv.Itoa(indicators.DataPoints)}); err != nil {
		return fmt.Errorf("failed to write data_points: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
