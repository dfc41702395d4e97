package services

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"pqlens/pkg/contracts/domain"
)

// TableLoader loads a station's measurement table from its backing workbook.
type TableLoader interface {
	Load(ctx context.Context, station domain.Station) (*domain.MeasurementTable, error)
}

// StationCache memoizes loaded tables per station for the process lifetime.
// The workbooks are static inputs, so a table is a pure function of the
// station identity: once computed it is published and reused, and concurrent
// first callers are coalesced into a single load. Failed loads are not
// cached, so a workbook that appears later is picked up on the next call.
type StationCache struct {
	loader TableLoader
	logger *slog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	tables map[domain.Station]*domain.MeasurementTable
}

// NewStationCache creates a cache in front of the given loader.
func NewStationCache(loader TableLoader, logger *slog.Logger) *StationCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StationCache{
		loader: loader,
		logger: logger.With(slog.String("component", "station_cache")),
		tables: make(map[domain.Station]*domain.MeasurementTable),
	}
}

// Get returns the station's table, loading it on first use. The returned
// table is shared between callers and must be treated as immutable.
func (c *StationCache) Get(ctx context.Context, station domain.Station) (*domain.MeasurementTable, error) {
	c.mu.RLock()
	table, ok := c.tables[station]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	result, err, shared := c.group.Do(station.String(), func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have published
		// while this caller was queuing.
		c.mu.RLock()
		cached, ok := c.tables[station]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded, err := c.loader.Load(ctx, station)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.tables[station] = loaded
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "station table cached",
			slog.String("station", station.String()),
			slog.Int("rows", loaded.RowCount()))

		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		c.logger.DebugContext(ctx, "coalesced concurrent load",
			slog.String("station", station.String()))
	}

	return result.(*domain.MeasurementTable), nil
}

// Cached reports whether a table for the station has been published.
func (c *StationCache) Cached(station domain.Station) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[station]
	return ok
}
