package services

import (
	"context"
	"io"
	"log/slog"

	"pqlens/internal/dataprocessing"
	"pqlens/internal/exporter"
	"pqlens/internal/files"
	"pqlens/pkg/contracts/domain"
)

// DataService orchestrates the ingestion pipeline for the dashboard: it
// resolves a station through the cache-fronted loader, derives indicators,
// builds chart groups and streams CSV exports. All reads are served from the
// immutable cached tables; the service holds no mutable state of its own.
type DataService struct {
	cache      *StationCache
	summarizer *dataprocessing.Summarizer
	locator    *files.Locator
	logger     *slog.Logger
}

// NewDataService creates a data service.
func NewDataService(cache *StationCache, summarizer *dataprocessing.Summarizer, locator *files.Locator, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		cache:      cache,
		summarizer: summarizer,
		locator:    locator,
		logger:     logger.With(slog.String("component", "data_service")),
	}
}

// Stations returns the known stations with their workbook availability.
func (s *DataService) Stations(ctx context.Context) []domain.StationStatus {
	stations := domain.AllStations()
	statuses := make([]domain.StationStatus, 0, len(stations))
	for _, station := range stations {
		statuses = append(statuses, domain.StationStatus{
			Station:   station,
			Workbook:  s.locator.Workbook(station),
			Available: s.locator.Available(station),
		})
	}
	return statuses
}

// Table returns the full measurement table for a station.
func (s *DataService) Table(ctx context.Context, station domain.Station) (*domain.MeasurementTable, error) {
	return s.cache.Get(ctx, station)
}

// Summary returns the indicator set and time range for a station.
func (s *DataService) Summary(ctx context.Context, station domain.Station) (*domain.StationSummary, error) {
	table, err := s.cache.Get(ctx, station)
	if err != nil {
		return nil, err
	}

	indicators, err := s.summarizer.Derive(table)
	if err != nil {
		return nil, err
	}

	summary := &domain.StationSummary{
		Station:    station,
		Indicators: indicators,
		TimeColumn: table.TimeColumn,
	}
	if start, stop, ok := table.TimeRange(); ok {
		summary.RangeStart = &start
		summary.RangeStop = &stop
	}

	return summary, nil
}

// Chart builds a named chart group from a station's table.
func (s *DataService) Chart(ctx context.Context, station domain.Station, chart string) (*domain.Chart, error) {
	table, err := s.cache.Get(ctx, station)
	if err != nil {
		return nil, err
	}
	return dataprocessing.BuildChart(table, chart)
}

// ExportCSV streams a station's measurement table as CSV.
func (s *DataService) ExportCSV(ctx context.Context, station domain.Station, w io.Writer) error {
	table, err := s.cache.Get(ctx, station)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "exporting station table",
		slog.String("station", station.String()),
		slog.Int("rows", table.RowCount()))

	return exporter.WriteTableCSV(w, table)
}

// ExportIndicatorsCSV streams a station's derived indicators as CSV.
func (s *DataService) ExportIndicatorsCSV(ctx context.Context, station domain.Station, w io.Writer) error {
	table, err := s.cache.Get(ctx, station)
	if err != nil {
		return err
	}

	indicators, err := s.summarizer.Derive(table)
	if err != nil {
		return err
	}

	return exporter.WriteIndicatorsCSV(w, station, indicators)
}
