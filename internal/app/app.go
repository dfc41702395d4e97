package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"pqlens/internal/config"
	apperrors "pqlens/internal/errors"
	"pqlens/internal/dataprocessing"
	"pqlens/internal/files"
	"pqlens/internal/infrastructure"
	custommw "pqlens/internal/middleware"
	"pqlens/internal/services"
	handlers "pqlens/internal/transport/http"
	"pqlens/pkg/contracts/domain"
)

const (
	// Version is the application version string reported at startup.
	Version = "1.0.0"

	// AppName is the human-facing name logged at startup.
	AppName = "pqlens - Power Quality Dashboard"
)

// Application wires configuration, services and the HTTP server together.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	DataService   *services.DataService
	HealthService *services.HealthService
	Logger        *slog.Logger
}

// NewApplication creates the application with all dependencies resolved.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("data_dir", cfg.Data.Dir),
	)

	app, err := NewApplicationWithConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// NewApplicationWithConfig builds the application from an already loaded
// configuration. Tests use this to skip env and file resolution.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	workbooks := make(map[domain.Station]string, len(domain.AllStations()))
	for _, station := range domain.AllStations() {
		path, err := cfg.WorkbookPath(station)
		if err != nil {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("cannot resolve workbook for station %q", station), err)
		}
		workbooks[station] = path

		if _, statErr := os.Stat(path); statErr != nil {
			// Non-fatal: the workbook may be dropped in later, requests
			// for the station return a problem response until then.
			logger.Warn("station workbook not found",
				slog.String("station", station.String()),
				slog.String("path", path),
			)
		}
	}

	if found, err := files.FindExcelFiles(cfg.Data.Dir); err == nil {
		logger.Info("data directory scanned",
			slog.String("dir", cfg.Data.Dir),
			slog.Int("excel_files", len(found)),
		)
	}

	locator := files.NewLocator(workbooks)
	loader := dataprocessing.NewLoader(locator, logger)
	cache := services.NewStationCache(loader, logger)
	summarizer := dataprocessing.NewSummarizer(logger)

	app := &Application{
		Config:        cfg,
		DataService:   services.NewDataService(cache, summarizer, locator, logger),
		HealthService: services.NewHealthService(locator, logger),
		Logger:        logger,
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with the middleware chain and all
// API routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)

	if a.Config.Server.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	r.Use(custommw.Timeout(a.Config.Server.WriteTimeout))

	errorHandler := apperrors.NewErrorHandler(a.Logger)
	dataHandler := handlers.NewDataHandler(a.DataService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/data", dataHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server from the configured timeouts.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving HTTP traffic. It blocks until the server stops.
func (a *Application) Start() error {
	a.Logger.Info("server listening", slog.String("addr", a.Server.Addr))

	if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server within the configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()
	return nil
}

// Run starts the server and blocks until an interrupt or termination signal
// arrives, then shuts down gracefully.
func (a *Application) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		a.Logger.Info("signal received", slog.String("signal", sig.String()))
		return a.Stop(context.Background())
	}
}
