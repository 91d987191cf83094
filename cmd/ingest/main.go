package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/cache"
	"github.com/gamedex/gd-indexer/internal/config"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/ingest"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/pricing"
	"github.com/gamedex/gd-indexer/internal/providers"
	"github.com/gamedex/gd-indexer/internal/providers/igdb"
	"github.com/gamedex/gd-indexer/internal/providers/playstation"
	"github.com/gamedex/gd-indexer/internal/providers/steam"
	"github.com/gamedex/gd-indexer/internal/ratelimit"
	"github.com/gamedex/gd-indexer/internal/resolver"
	"github.com/gamedex/gd-indexer/internal/store"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	envPath     = flag.String("env", "", "Path to .env file")
	provider    = flag.String("provider", "", "Provider to ingest: ps-store, steam-store or igdb")
	regions     = flag.String("regions", "", "Comma-separated region priority list (overrides config)")
	maxPages    = flag.Int("max-pages", 0, "Maximum discovery pages, 0 runs to exhaustion")
	pageSize    = flag.Int("page-size", 0, "Discovery page size (overrides config)")
	concurrency = flag.Int("concurrency", 0, "Price fan-out worker count")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadIngestConfig(*configPath, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	providerKey := domain.Provider(*provider)
	if !domain.IsValidProvider(providerKey) {
		panic(fmt.Sprintf("Unknown provider %q, expected ps-store, steam-store or igdb", *provider))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "ingest", "provider": *provider},
	}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(5 * time.Second)

	logger.Info("Starting ingest", zap.String("provider", *provider))

	db, err := store.NewDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)
	logger.Info("Connected to database")

	jsonAdapter := adapter.NewJSON()
	clockAdapter := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(30 * time.Second)
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	rateLimitProxy, err := ratelimit.NewProxy(cfg.RateLimit, redisClient, clockAdapter)
	if err != nil {
		logger.Fatal("Failed to initialize rate limit proxy", zap.Error(err))
	}
	defer func() {
		if err := rateLimitProxy.Close(); err != nil {
			logger.Warn("Failed to close rate limit proxy", zap.Error(err))
		}
	}()

	rateCache := cache.NewRedisCache(redisClient, "gd:indexer:cache:")
	rates := pricing.NewStoreRateProvider(dataStore, rateCache, jsonAdapter, clockAdapter, cfg.Pricing.RateTTL)
	priceWriter := pricing.NewWriter(dataStore, rates, jsonAdapter, clockAdapter)

	// Refresh rate snapshots up front; stale snapshots from a previous run
	// still serve conversions when this fails
	fetcher := pricing.NewFetcher(httpClient, jsonAdapter, dataStore, clockAdapter, cfg.Pricing)
	if err := fetcher.RefreshAll(ctx); err != nil {
		logger.Warn("Exchange rate refresh failed, conversions may use stale snapshots", zap.Error(err))
	}

	clients := []providers.Client{
		playstation.NewClient(httpClient, rateLimitProxy, cfg.Providers.PlayStationURL, cfg.Providers.UserAgent, jsonAdapter),
		steam.NewClient(httpClient, rateLimitProxy, cfg.Providers.SteamURL, cfg.Providers.SteamAppIDs, jsonAdapter),
		igdb.NewDumpReader(cfg.Providers.IGDBDumpPath, jsonAdapter),
	}

	orchestrator := ingest.New(dataStore, resolver.New(dataStore), priceWriter, clients, clockAdapter, jsonAdapter)

	opts := ingest.RunOptions{
		Provider:    providerKey,
		Regions:     cfg.Regions,
		MaxPages:    *maxPages,
		PageSize:    cfg.PageSize,
		Concurrency: cfg.Worker.WorkerPoolSize,
		QueueSize:   cfg.Worker.WorkerQueueSize,
	}
	if *regions != "" {
		opts.Regions = splitRegions(*regions)
	}
	if *pageSize > 0 {
		opts.PageSize = *pageSize
	}
	if *concurrency > 0 {
		opts.Concurrency = *concurrency
	}

	report, err := orchestrator.Run(ctx, opts)
	if err != nil {
		logger.Fatal("Ingest run failed", zap.Error(err))
	}

	logger.Info("Ingest run completed",
		zap.String("run_id", report.RunID),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("prices_written", report.PriceRecordsWritten),
		zap.Int("errors", len(report.Errors)))
}

func splitRegions(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
