// Lex Publica - profile sync gateway server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/api"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/config"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/feed"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/gateway"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/kv"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/internal/middleware"
	"github.com/acoulibaly-ghb/lex-publica-admin-l2hz/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "sync_enabled", cfg.SyncConfigured())

	// Initialize the backing store. Leaving it nil keeps the gateway in
	// offline mode, which is reported to callers rather than failing startup.
	var backend gateway.Backend
	var pinger api.Pinger
	if cfg.SyncConfigured() {
		kvClient := kv.NewClient(cfg.KV.URL, cfg.KV.Token, cfg.Timeout.KVRequest)
		backend = kvClient
		pinger = kvClient

		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.HealthCheck)
		if err := kvClient.Ping(pingCtx); err != nil {
			slog.Warn("KV store unreachable at startup, sync requests will fail until it recovers", "error", err)
		} else {
			slog.Info("KV store connected")
		}
		cancel()
	} else {
		slog.Info("Global sync disabled (KV_REST_API_URL or KV_REST_API_TOKEN not set)")
	}

	// Initialize services.
	gw := gateway.New(backend, logger)
	hub := feed.NewHub(feedOrigins(cfg), logger)

	// Initialize handlers.
	syncHandler := api.NewSyncHandler(gw, hub, logger)
	healthHandler := api.NewHealthHandler(pinger, cfg.Timeout.HealthCheck)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	healthHandler.RegisterHealth(r)
	syncHandler.RegisterRoutes(r)

	// Live feed for the dashboard.
	r.Get("/api/sync/feed", hub.ServeHTTP)

	// Serve embedded dashboard (catch-all).
	r.Handle("/*", web.DashboardHandler())

	// Note: feed connections are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// feedOrigins returns the WebSocket origin patterns. coder/websocket matches
// host patterns, so full origins are reduced to their host.
func feedOrigins(cfg *config.Config) []string {
	patterns := make([]string, 0, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		patterns = append(patterns, hostPattern(o))
	}
	return patterns
}
