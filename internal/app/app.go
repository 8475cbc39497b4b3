package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"application-service/internal/config"
	"application-service/internal/health"
	"application-service/internal/logger"
	"application-service/internal/mailer"
	"application-service/internal/metrics"
	"application-service/internal/middleware"
	"application-service/internal/relay"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type App struct {
	config *config.Config
	router chi.Router
	server *http.Server
	logger *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext("application-service", Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	m, err := metrics.New(otel.Meter("application-service"))
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	production := cfg.IsProduction()

	// Apply CORS and panic recovery globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.router.Use(middleware.Recoverer(production, slogLogger))

	// Health endpoints (no rate limit)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	smtpMailer := mailer.New(cfg.SMTP, slogLogger, m)
	service := relay.NewService(smtpMailer, cfg.SMTP.From, cfg.SMTP.To, slogLogger, m)
	handler := relay.NewHandler(service, cfg.Limits.MaxFileBytes, cfg.Limits.MaxTotalBytes, production, slogLogger, m)

	// The submission endpoint is rate limited in production only
	limiter := middleware.NewRateLimiter(
		cfg.RateLimit.MaxPerWindow,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		production,
		slogLogger,
		m,
	)
	app.router.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		handler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	return a.server.Shutdown(ctx)
}
