package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pqlens/internal/errors"
	"pqlens/internal/services"
	"pqlens/pkg/contracts/domain"
)

// fakeDataService returns canned values so handler behavior can be tested
// without workbooks on disk.
type fakeDataService struct {
	stations []domain.StationStatus
	table    *domain.MeasurementTable
	summary  *domain.StationSummary
	chart    *domain.Chart
	csv      string
	err      error
}

func (f *fakeDataService) Stations(ctx context.Context) []domain.StationStatus {
	return f.stations
}

func (f *fakeDataService) Table(ctx context.Context, station domain.Station) (*domain.MeasurementTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeDataService) Summary(ctx context.Context, station domain.Station) (*domain.StationSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeDataService) Chart(ctx context.Context, station domain.Station, chart string) (*domain.Chart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chart, nil
}

func (f *fakeDataService) ExportCSV(ctx context.Context, station domain.Station, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.csv)
	return err
}

func (f *fakeDataService) ExportIndicatorsCSV(ctx context.Context, station domain.Station, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.csv)
	return err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(service DataServiceInterface) *DataHandler {
	logger := discardLogger()
	return NewDataHandler(service, logger, apperrors.NewErrorHandler(logger))
}

func serve(t *testing.T, h *DataHandler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeEnvelope(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestDataHandler_GetStations(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		stations: []domain.StationStatus{
			{Station: domain.StationMvule, Available: true},
			{Station: domain.StationClinic, Available: false},
		},
	})

	w := serve(t, handler, http.MethodGet, "/stations")
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "success", envelope["status"])
	assert.Equal(t, float64(2), envelope["count"])
}

func TestDataHandler_GetSummary(t *testing.T) {
	power := 2.0
	handler := newTestHandler(&fakeDataService{
		summary: &domain.StationSummary{
			Station: domain.StationMvule,
			Indicators: &domain.IndicatorSet{
				AvgPower:   &power,
				DataPoints: 42,
			},
		},
	})

	w := serve(t, handler, http.MethodGet, "/stations/mvule")
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "success", envelope["status"])

	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "mvule", data["station"])
}

func TestDataHandler_UnknownStation(t *testing.T) {
	handler := newTestHandler(&fakeDataService{})

	w := serve(t, handler, http.MethodGet, "/stations/depot")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "depot")
}

func TestDataHandler_WorkbookMissing(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		err: apperrors.NewSourceNotFoundError("workbook missing", nil),
	})

	w := serve(t, handler, http.MethodGet, "/stations/clinic")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "/errors/data/source-not-found")
}

func TestDataHandler_SchemaError(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		err: apperrors.NewSchemaError("no timestamp column", nil),
	})

	w := serve(t, handler, http.MethodGet, "/stations/mvule/table")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "/errors/data/schema")
}

func TestDataHandler_GetTable(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		table: &domain.MeasurementTable{
			Station:    domain.StationMvule,
			TimeColumn: "Time",
			Index:      []time.Time{time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
			Columns:    []string{"Frequency_avg"},
			Series: map[string][]domain.Cell{
				"Frequency_avg": {domain.Num(50.01)},
			},
		},
	})

	w := serve(t, handler, http.MethodGet, "/stations/mvule/table")
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, float64(1), envelope["count"])
}

func TestDataHandler_GetChart(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		chart: &domain.Chart{
			Name:    "frequency",
			Title:   "Frequency",
			Unit:    "Hz",
			Station: domain.StationMvule,
		},
	})

	w := serve(t, handler, http.MethodGet, "/stations/mvule/series/frequency")
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w.Body.Bytes())
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "frequency", data["name"])
}

func TestDataHandler_ExportCSV(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		csv: "Time,Frequency_avg\n2024-03-01 10:00:00,50.01\n",
	})

	w := serve(t, handler, http.MethodGet, "/export/mvule")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mvule_measurements.csv")
	assert.Contains(t, w.Body.String(), "Frequency_avg")
}

func TestDataHandler_ExportIndicatorsCSV(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		csv: "station,indicator,value\nmvule,avg_power,2\n",
	})

	w := serve(t, handler, http.MethodGet, "/export/mvule/indicators")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mvule_indicators.csv")
	assert.Contains(t, w.Body.String(), "avg_power")
}

func TestDataHandler_ExportCSV_LoadFails(t *testing.T) {
	handler := newTestHandler(&fakeDataService{
		err: apperrors.NewSourceNotFoundError("workbook missing", nil),
	})

	w := serve(t, handler, http.MethodGet, "/export/mvule")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

// fakeHealthService returns a fixed health report.
type fakeHealthService struct {
	status *services.HealthStatus
}

func (f *fakeHealthService) Check(ctx context.Context) *services.HealthStatus {
	return f.status
}

func TestHealthHandler_GetHealth(t *testing.T) {
	handler := NewHealthHandler(&fakeHealthService{
		status: &services.HealthStatus{
			Status:    "degraded",
			Timestamp: time.Now().UTC(),
			Stations: []domain.StationStatus{
				{Station: domain.StationMvule, Available: true},
				{Station: domain.StationClinic, Available: false},
			},
		},
	}, discardLogger())

	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope["status"])

	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "degraded", data["status"])
}
