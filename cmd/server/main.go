package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/aggregator"
	"github.com/dennisdiepolder/champkpi/internal/api"
	"github.com/dennisdiepolder/champkpi/internal/auth"
	"github.com/dennisdiepolder/champkpi/internal/cache"
	"github.com/dennisdiepolder/champkpi/internal/config"
	"github.com/dennisdiepolder/champkpi/internal/metrics"
	"github.com/dennisdiepolder/champkpi/internal/refresher"
	"github.com/dennisdiepolder/champkpi/internal/report"
	"github.com/dennisdiepolder/champkpi/internal/scoring"
	"github.com/dennisdiepolder/champkpi/internal/storage"
	"github.com/dennisdiepolder/champkpi/internal/websocket"
	"github.com/dennisdiepolder/champkpi/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	sourceCfg := storage.LoadSourceConfig()

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("source_mode", string(sourceCfg.Mode)).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("starting champkpi server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStore(ctx, sourceCfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create data source")
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scoring configuration")
	}
	if !scoringCfg.Balanced() {
		log.Warn().
			Float64("total_weight", scoringCfg.TotalWeight()).
			Msg("scoring weights do not add up to 100")
	}

	snapshots := cache.NewSnapshotCache(store, cfg.CacheTTL, log.Logger)

	service := report.NewService(
		snapshots,
		aggregator.NewAggregator(log.Logger),
		scoring.NewScorer(scoringCfg, log.Logger),
		log.Logger,
	)

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	refresherService := refresher.NewRefresher(snapshots, hub, cfg.RefreshInterval, log.Logger)
	go refresherService.Start(ctx)

	r := newRouter(cfg, routes{
		auth:  auth.NewAuthenticator(cfg, log.Logger),
		kpi:   api.NewKPIHandler(service, log.Logger),
		admin: api.NewAdminHandler(snapshots, refresherService, scoringCfg, log.Logger),
		ws:    websocket.NewHandler(hub, cfg, log.Logger),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // sheet exports can be slow on a cold cache
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the refresher
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

type routes struct {
	auth  *auth.Authenticator
	kpi   *api.KPIHandler
	admin *api.AdminHandler
	ws    http.Handler
}

func newRouter(cfg *config.Config, h routes) chi.Router {
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Middleware)

		r.Get("/ws", h.ws.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/kpi/{employeeId}", h.kpi.GetReport)
			r.Get("/kpi/{employeeId}/report.pdf", h.kpi.GetReportPDF)
			r.Get("/periods", h.kpi.GetPeriods)

			r.Route("/admin", func(r chi.Router) {
				r.With(api.RequireSupervisorOrAdmin).Get("/snapshots", h.admin.GetSnapshots)
				r.With(api.RequireSupervisorOrAdmin).Get("/scoring", h.admin.GetScoring)
				r.With(api.RequireAdmin).Delete("/snapshots/{table}", h.admin.DeleteSnapshot)
				r.With(api.RequireAdmin).Post("/refresh", h.admin.RefreshSnapshots)
			})
		})
	})

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"champkpi"}`)
}
