package domain

import "time"

// SeriesPoint is one plotted sample. Rows whose source cell is missing are
// omitted from the series rather than rendered as zero.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is one line on a chart, taken from a single measurement column.
type Series struct {
	Column string        `json:"column"`
	Label  string        `json:"label"`
	Points []SeriesPoint `json:"points"`
}

// ReferenceLine is a horizontal limit overlay drawn across a chart.
type ReferenceLine struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a renderable chart group: the matched series of one station's
// table plus the fixed reference limits for that quality metric.
type Chart struct {
	Name       string          `json:"name"`
	Title      string          `json:"title"`
	Unit       string          `json:"unit"`
	Station    Station         `json:"station"`
	Series     []Series        `json:"series"`
	References []ReferenceLine `json:"references"`
}
