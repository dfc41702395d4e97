package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Station identifies one of the fixed metering locations tracked by the
// dashboard. The set is closed: data for a station is loaded from a fixed
// workbook and stations are never created at runtime.
type Station string

const (
	StationMvule  Station = "mvule"
	StationClinic Station = "clinic"
)

// AllStations returns the known stations in display order.
func AllStations() []Station {
	return []Station{StationMvule, StationClinic}
}

// ParseStation validates a station identifier supplied by a caller.
func ParseStation(s string) (Station, error) {
	switch Station(s) {
	case StationMvule, StationClinic:
		return Station(s), nil
	}
	return "", fmt.Errorf("unknown station %q", s)
}

// String implements fmt.Stringer.
func (s Station) String() string {
	return string(s)
}

// Cell is a single measurement value. Valid is false when the source cell
// was empty or not numeric; such cells are excluded from aggregation and
// must never be conflated with a measured zero.
type Cell struct {
	Value float64
	Valid bool
}

// Num returns a valid cell holding v.
func Num(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// MarshalJSON renders missing cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON accepts null as a missing cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Cell{Value: v, Valid: true}
	return nil
}

// MeasurementTable is a time-indexed, column-oriented view of one station's
// power-quality export. Index holds the parsed timestamp for every row in
// original file order (the ordering key, not required unique); Columns lists
// the value columns in original header order; Series maps each column name to
// its cells, one per row. A table is immutable once returned by the loader.
type MeasurementTable struct {
	Station    Station           `json:"station"`
	TimeColumn string            `json:"time_column"`
	Index      []time.Time       `json:"index"`
	Columns    []string          `json:"columns"`
	Series     map[string][]Cell `json:"series"`
}

// RowCount returns the number of rows in the table.
func (t *MeasurementTable) RowCount() int {
	return len(t.Index)
}

// HasColumn reports whether a value column exists in the table.
func (t *MeasurementTable) HasColumn(name string) bool {
	_, ok := t.Series[name]
	return ok
}

// Column returns the cells of a value column, or false when the column is
// absent from the source export.
func (t *MeasurementTable) Column(name string) ([]Cell, bool) {
	cells, ok := t.Series[name]
	return cells, ok
}

// Validate checks the structural invariants the deriver relies on: every
// named column has a series, and every series has exactly one cell per row.
func (t *MeasurementTable) Validate() error {
	if t == nil {
		return fmt.Errorf("table is nil")
	}
	if len(t.Columns) != len(t.Series) {
		return fmt.Errorf("column list has %d names but %d series are present", len(t.Columns), len(t.Series))
	}
	for _, name := range t.Columns {
		cells, ok := t.Series[name]
		if !ok {
			return fmt.Errorf("column %q has no series", name)
		}
		if len(cells) != len(t.Index) {
			return fmt.Errorf("column %q has %d cells for %d rows", name, len(cells), len(t.Index))
		}
	}
	return nil
}

// TimeRange returns the first and last timestamps of the table. The second
// return value is false for an empty table.
func (t *MeasurementTable) TimeRange() (start, stop time.Time, ok bool) {
	if len(t.Index) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Index[0], t.Index[len(t.Index)-1], true
}

// IndicatorSet is the fixed mapping of summary indicators derived from one
// measurement table. A nil pointer means the indicator is undefined: its
// source column was absent or held no numeric values. Undefined is distinct
// from zero and serializes as JSON null.
type IndicatorSet struct {
	AvgPower     *float64 `json:"avg_power"`
	AvgPF        *float64 `json:"avg_pf"`
	AvgVoltage   *float64 `json:"avg_voltage"`
	AvgCurrent   *float64 `json:"avg_current"`
	AvgFrequency *float64 `json:"avg_frequency"`
	AvgVthd      *float64 `json:"avg_vthd"`
	AvgIthd      *float64 `json:"avg_ithd"`
	DataPoints   int      `json:"data_points"`
}

// StationSummary is the per-station payload shown on the overview page.
type StationSummary struct {
	Station    Station       `json:"station"`
	Indicators *IndicatorSet `json:"indicators"`
	TimeColumn string        `json:"time_column"`
	RangeStart *time.Time    `json:"range_start"`
	RangeStop  *time.Time    `json:"range_stop"`
}

// StationStatus reports workbook availability for one station.
type StationStatus struct {
	Station   Station `json:"station"`
	Workbook  string  `json:"workbook"`
	Available bool    `json:"available"`
}
