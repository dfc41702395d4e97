package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apperrors "pqlens/internal/errors"
	"pqlens/pkg/contracts/domain"
)

// stationCtxKey carries the validated station through the request context.
type stationCtxKey struct{}

// DataHandler serves the measurement data endpoints the dashboard renders
// from: station listings, summaries, full tables, chart groups and CSV
// export.
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewDataHandler creates a data handler.
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stations", h.GetStations)

	r.Route("/stations/{station}", func(r chi.Router) {
		r.Use(h.StationCtx)
		r.Get("/", h.GetSummary)
		r.Get("/table", h.GetTable)
		r.Get("/series/{chart}", h.GetChart)
	})

	r.Route("/export/{station}", func(r chi.Router) {
		r.Use(h.StationCtx)
		r.Get("/", h.ExportCSV)
		r.Get("/indicators", h.ExportIndicatorsCSV)
	})

	return r
}

// StationCtx validates the station URL parameter and loads the parsed
// station into the request context.
func (h *DataHandler) StationCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "station")
		station, err := domain.ParseStation(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apperrors.NewNotFoundError(fmt.Sprintf("station %q", raw)))
			return
		}

		ctx := context.WithValue(r.Context(), stationCtxKey{}, station)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// stationFromCtx returns the station placed in the context by StationCtx.
func stationFromCtx(ctx context.Context) domain.Station {
	station, _ := ctx.Value(stationCtxKey{}).(domain.Station)
	return station
}

// GetStations handles GET /api/data/stations.
func (h *DataHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	stations := h.service.Stations(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stations,
		"count":  len(stations),
	})
}

// GetSummary handles GET /api/data/stations/{station}.
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	station := stationFromCtx(r.Context())

	h.logger.InfoContext(r.Context(), "fetching station summary",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("station", station.String()),
	)

	summary, err := h.service.Summary(r.Context(), station)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetTable handles GET /api/data/stations/{station}/table.
func (h *DataHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	station := stationFromCtx(r.Context())

	table, err := h.service.Table(r.Context(), station)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   table,
		"count":  table.RowCount(),
	})
}

// GetChart handles GET /api/data/stations/{station}/series/{chart}.
func (h *DataHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	station := stationFromCtx(r.Context())
	chartName := chi.URLParam(r, "chart")

	chart, err := h.service.Chart(r.Context(), station, chartName)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   chart,
	})
}

// ExportCSV handles GET /api/data/export/{station}. The table is rendered
// to a buffer first so load failures can still produce a problem response.
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	station := stationFromCtx(r.Context())

	h.logger.InfoContext(r.Context(), "exporting station CSV",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("station", station.String()),
	)

	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), station, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", station.String()+"_measurements.csv"))
	w.Write(buf.Bytes())
}

// ExportIndicatorsCSV handles GET /api/data/export/{station}/indicators.
func (h *DataHandler) ExportIndicatorsCSV(w http.ResponseWriter, r *http.Request) {
	station := stationFromCtx(r.Context())

	var buf bytes.Buffer
	if err := h.service.ExportIndicatorsCSV(r.Context(), station, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", station.String()+"_indicators.csv"))
	w.Write(buf.Bytes())
}
