package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "pqlens/internal/errors"
	"pqlens/pkg/contracts/domain"
)

// ChartSpec describes one of the fixed dashboard chart groups: which columns
// it plots, how values are scaled, and the reference limits drawn over it.
type ChartSpec struct {
	Name       string
	Title      string
	Unit       string
	Match      func(column string) bool
	Scale      float64
	References []domain.ReferenceLine
}

// chartSpecs is the fixed set of chart groups the dashboard renders. Limits
// are the power-quality acceptance bands the audit reports against.
var chartSpecs = []ChartSpec{
	{
		Name:  "frequency",
		Title: "Frequency Analysis",
		Unit:  "Hz",
		Match: exact("Frequency_avg"),
		References: []domain.ReferenceLine{
			{Label: "Upper Limit (50.5 Hz)", Value: 50.5},
			{Label: "Lower Limit (49.5 Hz)", Value: 49.5},
		},
	},
	{
		Name:  "voltage_thd",
		Title: "Voltage THD Analysis",
		Unit:  "%",
		Match: prefixSuffix("Vthd", "_avg"),
		References: []domain.ReferenceLine{
			{Label: "Acceptable Limit (5%)", Value: 5},
		},
	},
	{
		Name:  "current_thd",
		Title: "Current THD Analysis",
		Unit:  "%",
		Match: prefixSuffix("Ithd", "_avg"),
		References: []domain.ReferenceLine{
			{Label: "Acceptable Limit (8%)", Value: 8},
		},
	},
	{
		Name:  "voltage_ln",
		Title: "Line-to-Neutral Voltage Analysis",
		Unit:  "V",
		Match: oneOf("Vrms_AN_avg", "Vrms_BN_avg", "Vrms_CN_avg"),
		References: []domain.ReferenceLine{
			{Label: "Upper Limit (253V)", Value: 253},
			{Label: "Lower Limit (207V)", Value: 207},
		},
	},
	{
		Name:  "voltage_ll",
		Title: "Line-to-Line Voltage Analysis",
		Unit:  "V",
		Match: oneOf("Vrms_AB_avg", "Vrms_BC_avg", "Vrms_CA_avg"),
		References: []domain.ReferenceLine{
			{Label: "Upper Limit (440V)", Value: 440},
			{Label: "Lower Limit (360V)", Value: 360},
		},
	},
	{
		Name:  "current",
		Title: "Current Analysis",
		Unit:  "A",
		Match: oneOf("Irms_A_avg", "Irms_B_avg", "Irms_C_avg"),
	},
	{
		Name:  "power_factor",
		Title: "Power Factor Analysis",
		Unit:  "",
		Match: prefixSuffix("PfFwdRev", "_avg"),
		References: []domain.ReferenceLine{
			{Label: "Recommended (0.9)", Value: 0.9},
		},
	},
	{
		Name:  "active_power",
		Title: "Active Power Analysis",
		Unit:  "kW",
		Match: prefixSuffix("PowerP_", "_avg"),
		Scale: 1.0 / wattsPerKilowatt,
	},
}

// ChartNames returns the names of the known chart groups in display order.
func ChartNames() []string {
	names := make([]string, len(chartSpecs))
	for i, spec := range chartSpecs {
		names[i] = spec.Name
	}
	return names
}

// BuildChart assembles a named chart group from a table: one series per
// matched column, rows with missing cells omitted, values scaled by the
// group's scale factor. Unknown chart names fail with NOT_FOUND.
func BuildChart(table *domain.MeasurementTable, name string) (*domain.Chart, error) {
	if table == nil {
		return nil, apperrors.NewInvalidInputError("measurement table is nil", nil)
	}

	spec, ok := findSpec(name)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("chart %q", name))
	}

	chart := &domain.Chart{
		Name:       spec.Name,
		Title:      spec.Title,
		Unit:       spec.Unit,
		Station:    table.Station,
		References: spec.References,
	}

	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}

	for _, column := range table.Columns {
		if !spec.Match(column) {
			continue
		}
		cells, _ := table.Column(column)

		series := domain.Series{
			Column: column,
			Label:  strings.TrimSuffix(column, "_avg"),
		}
		for i, cell := range cells {
			if !cell.Valid {
				continue
			}
			series.Points = append(series.Points, domain.SeriesPoint{
				Timestamp: table.Index[i],
				Value:     cell.Value * scale,
			})
		}
		chart.Series = append(chart.Series, series)
	}

	return chart, nil
}

// findSpec looks up a chart spec by name.
func findSpec(name string) (ChartSpec, bool) {
	for _, spec := range chartSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return ChartSpec{}, false
}

func exact(name string) func(string) bool {
	return func(column string) bool { return column == name }
}

func oneOf(names ...string) func(string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(column string) bool {
		_, ok := set[column]
		return ok
	}
}

func prefixSuffix(prefix, suffix string) func(string) bool {
	return func(column string) bool {
		return strings.HasPrefix(column, prefix) && strings.HasSuffix(column, suffix)
	}
}
