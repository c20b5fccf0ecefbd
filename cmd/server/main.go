package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cultivatehq/cultivate/backend/internal/cache"
	"github.com/cultivatehq/cultivate/backend/internal/config"
	"github.com/cultivatehq/cultivate/backend/internal/graph"
	"github.com/cultivatehq/cultivate/backend/internal/logging"
	"github.com/cultivatehq/cultivate/backend/internal/metrics"
	"github.com/cultivatehq/cultivate/backend/internal/repository"
	"github.com/cultivatehq/cultivate/backend/internal/server"
	"github.com/cultivatehq/cultivate/backend/internal/service"
	"github.com/cultivatehq/cultivate/backend/internal/supabase"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	reg := metrics.New()

	graphClient, err := buildGraphClient(ctx, cfg)
	switch {
	case errors.Is(err, graph.ErrMissingURI) && cfg.Network.Source != config.SourceNeo4j:
		logger.Warn("graph store not configured; ingestion endpoints disabled")
	case err != nil:
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	var (
		store  service.ContactStore
		source service.SnapshotSource
		health = server.CompositeHealthService{server.GraphHealthService{Client: graphClient}}
	)
	if graphClient != nil {
		repo := repository.New(graphClient)
		store = repo
		source = repo
	}

	if cfg.Network.Source == config.SourceSupabase {
		q, err := supabase.NewQuerier(cfg.Supabase)
		if err != nil {
			logger.Error("failed to create supabase client", "error", err)
			os.Exit(1)
		}
		source = supabase.NewSource(q)
	}

	if cfg.Cache.Addr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Cache)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.Cache.Addr)
			os.Exit(1)
		}
		defer redisClient.Close()

		cached := cache.New(redisClient, source,
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithLogger(logger),
			cache.WithMetrics(reg),
		)
		source = cached
		health = append(health, server.PingHealthService{Name: "redis", Pinger: cached})
		logger.Info("snapshot cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL.String())
	}

	networkService := service.NewNetworkService(store, source, service.Options{
		Logger:     logger,
		Metrics:    reg,
		SourceName: cfg.Network.Source,
		MaxHops:    cfg.Network.MaxHops,
		MaxNodes:   cfg.Network.MaxNodes,
	})

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              server.NewNetworkHandlers(logger, networkService),
		Metrics:          reg,
		MetricsEnabled:   cfg.HTTP.MetricsEnabled,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}
	return graph.NewNeo4jClient(ctx, graph.OptionsFromConfig(cfg.Graph))
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(csv, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
