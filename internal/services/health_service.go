package services

import (
	"context"
	"log/slog"
	"time"

	"pqlens/internal/files"
	"pqlens/pkg/contracts/domain"
)

// HealthStatus is the liveness payload for the dashboard.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Stations  []domain.StationStatus `json:"stations"`
}

// HealthService reports process liveness and per-station workbook presence.
type HealthService struct {
	locator *files.Locator
	logger  *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(locator *files.Locator, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		locator: locator,
		logger:  logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the current health status. The process is "degraded" when
// one or more station workbooks are missing, since the dashboard can still
// serve the remaining station.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	for _, station := range domain.AllStations() {
		available := s.locator.Available(station)
		if !available {
			status.Status = "degraded"
		}
		status.Stations = append(status.Stations, domain.StationStatus{
			Station:   station,
			Workbook:  s.locator.Workbook(station),
			Available: available,
		})
	}

	return status
}
