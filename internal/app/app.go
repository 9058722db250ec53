package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"trendapi/internal/config"
	apierrors "trendapi/internal/errors"
	"trendapi/internal/infrastructure"
	customMiddleware "trendapi/internal/middleware"
	"trendapi/internal/registry"
	"trendapi/internal/services"
	handlers "trendapi/internal/transport/http"
	ws "trendapi/internal/websocket"
	"trendapi/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Store          *registry.MemoryStore
	DatasetService *services.DatasetService
	HealthService  *services.HealthService
	WebSocketHub   *ws.Hub // nil when the WebSocket endpoint is disabled
	ErrorHandler   *apierrors.ErrorHandler
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.DatasetMetrics
	Logger         *slog.Logger
}

// NewApplication wires every component from cfg. The logger is expected to
// be the process logger returned by infrastructure.InitializeLogger.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", contracts.ServiceTitle),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		Logger:        logger,
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateDatasetMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create dataset metrics: %w", err)
	}
	a.Metrics = metrics

	a.Store = registry.NewMemoryStore()

	opts := []services.DatasetServiceOption{
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(metrics),
		services.WithPreviewRows(a.Config.Analysis.PreviewRows),
	}

	if a.Config.WebSocket.Enabled {
		wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create WebSocket metrics: %w", err)
		}
		a.WebSocketHub = ws.NewHub(a.Config.WebSocket, wsMetrics, a.Logger)
		opts = append(opts, services.WithPublisher(a.WebSocketHub))
		a.HealthService = services.NewHealthService(a.Store, a.WebSocketHub, a.Logger)
	} else {
		a.HealthService = services.NewHealthService(a.Store, nil, a.Logger)
	}

	a.DatasetService = services.NewDatasetService(a.Store, a.Logger, opts...)
	return nil
}

// setupRouter configures middleware and routes.
// Order: RequestID → RealIP → Logger → Recoverer → CORS → SecurityHeaders,
// then OTel → Timeout → RateLimit for the API group.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", customMiddleware.RequestIDHeader},
			ExposedHeaders: []string{customMiddleware.RequestIDHeader},
			MaxAge:         300,
			Logger:         a.Logger,
		}))
	}
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Long-lived connections stay outside the request timeout
	if a.WebSocketHub != nil {
		r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))
	}
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	datasetHandler := handlers.NewDatasetHandler(a.DatasetService, a.Config.Server.MaxUploadBytes, a.Logger, a.ErrorHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Get("/", healthHandler.Root)

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			datasetHandler.Routes(r)
			healthHandler.Routes(r)
		})
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run listens on the configured address and serves until ctx is cancelled
// or the process receives SIGINT or SIGTERM.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within Server.ShutdownTimeout.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if a.WebSocketHub != nil {
		a.WebSocketHub.Start()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Int("datasets", a.Store.Count()))
	return errors.Join(errs...)
}
