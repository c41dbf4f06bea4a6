// Package main is the entry point for the Inkwell content API server.
// It loads configuration, connects to Postgres and Valkey, wires the
// query service and analytics aggregator, and starts the HTTP server
// with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/analytics"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/counter"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/query"
	"inkwell/internal/router"
	"inkwell/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"flush_interval", cfg.FlushInterval,
		"cache_ttl", cfg.CacheTTL,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible counter store + query cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	headingStore := store.NewHeadingStore(db)
	analyticsStore := store.NewAnalyticsStore(db)

	// Impression counters and the query-result cache share the Valkey
	// connection but use disjoint key prefixes.
	counters := counter.NewValkeyStore(valkeyClient)
	queryCache := cache.NewQueryCache(valkeyClient, cfg.CacheTTL)
	slog.Info("query cache ready", "cache", queryCache.String())

	recorder := analytics.NewRecorder(postStore, categoryStore, analyticsStore)
	svc := query.NewService(postStore, categoryStore, headingStore, queryCache, counters, recorder, cfg.PageSize)

	// Start the impression aggregator. Its context outlives requests
	// and is cancelled only at shutdown, after the HTTP server has
	// drained, so in-flight impressions still get a final flush pass.
	aggregator := analytics.NewAggregator(counters, postStore, categoryStore, analyticsStore, cfg.FlushInterval)
	aggCtx, stopAggregator := context.WithCancel(context.Background())
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		aggregator.Run(aggCtx)
	}()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	defer limiter.Stop()

	api := handlers.NewAPI(svc, recorder)
	r := router.New(api, limiter, cfg.APIKeys)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Stop the aggregator loops first so the final flush cannot
	// overlap a ticker-driven pass for the same entity type, then
	// drain whatever the counters still hold.
	stopAggregator()
	<-aggDone
	for _, entity := range []counter.EntityType{counter.EntityPost, counter.EntityCategory} {
		if err := aggregator.Flush(context.Background(), entity); err != nil {
			slog.Error("final impression flush failed", "entity", entity, "error", err)
		}
	}

	slog.Info("server stopped gracefully")
}
