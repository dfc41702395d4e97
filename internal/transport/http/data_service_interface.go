package http

import (
	"context"
	"io"

	"pqlens/internal/services"
	"pqlens/pkg/contracts/domain"
)

// DataServiceInterface defines what the data handler needs from the data
// service. Kept as an interface so handler tests can substitute fakes.
type DataServiceInterface interface {
	Stations(ctx context.Context) []domain.StationStatus
	Table(ctx context.Context, station domain.Station) (*domain.MeasurementTable, error)
	Summary(ctx context.Context, station domain.Station) (*domain.StationSummary, error)
	Chart(ctx context.Context, station domain.Station, chart string) (*domain.Chart, error)
	ExportCSV(ctx context.Context, station domain.Station, w io.Writer) error
	ExportIndicatorsCSV(ctx context.Context, station domain.Station, w io.Writer) error
}

// HealthServiceInterface defines what the health handler needs.
type HealthServiceInterface interface {
	Check(ctx context.Context) *services.HealthStatus
}
