package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Process_Insights/internal/cache"
	"Process_Insights/internal/config"
	"Process_Insights/internal/dashboard"
	"Process_Insights/internal/datasource"
	"Process_Insights/internal/fetchclient"
	"Process_Insights/internal/fetcher"
	"Process_Insights/internal/http"
	"Process_Insights/internal/logger"
	"Process_Insights/internal/memo"
	"Process_Insights/internal/metrics"
	"Process_Insights/internal/models"
	"Process_Insights/internal/parser"
	"Process_Insights/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger, err := initializeLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	// Create internal log event for startup
	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting Process Insights API", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":          cfg.Port,
			"data_source":   cfg.DataSource,
			"cache_type":    cfg.CacheType,
			"cache_ttl":     cfg.CacheTTL.Seconds(),
			"fetch_retries": cfg.FetchMaxAttempts,
		},
	})

	appMetrics := metrics.New("process_insights")

	cacheService, err := initializeCache(cfg, appMetrics)
	if err != nil {
		appLogger.LogError(startupCtx, "cache_init", "", "Failed to initialize cache", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheService.Close()

	source, err := initializeSource(cfg)
	if err != nil {
		appLogger.LogError(startupCtx, "source_init", "", "Failed to initialize data source", err, models.LogSeverityHigh, nil)
		log.Fatalf("Failed to initialize data source: %v", err)
	}

	client, err := fetchclient.NewClient(fetchclient.RetryPolicy{
		MaxAttempts:   cfg.FetchMaxAttempts,
		BackoffFactor: cfg.FetchBackoffFactor,
	})
	if err != nil {
		log.Fatalf("Failed to initialize fetch client: %v", err)
	}

	memoizer, err := memo.New(client, cacheService, appLogger, appMetrics, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to initialize memoizer: %v", err)
	}

	rateLimiter, err := ratelimit.NewTwoTierLimiter(cfg.GlobalRateLimitPerSec, cfg.RateLimitPerSec)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer rateLimiter.Close()

	dashboardService := dashboard.NewService(source, memoizer, appLogger, 0)

	handler := http.NewHandler(dashboardService, appLogger)

	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		appMetrics,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			appLogger.LogError(
				startupCtx,
				logger.OpServerStart,
				"",
				"Server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": addr},
			)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("Process Insights API server started on %s (source=%s, cache=%s)\n", addr, cfg.DataSource, cfg.CacheType)
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /health                - Health check")
	fmt.Println("  GET    /api/processes         - Process list (?status= filter)")
	fmt.Println("  GET    /api/metrics           - Headline KPIs")
	fmt.Println("  GET    /api/history           - Throughput trend")
	fmt.Println("  GET    /api/overview          - All datasets with status breakdown")
	fmt.Println("  DELETE /api/cache/{dataset}   - Drop a cached dataset")
	fmt.Println("  GET    /metrics               - Prometheus metrics")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	ctx = logger.WithLogEvent(ctx, logger.NewInternalLogEvent())

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(ctx, logger.OpServerShutdown, "", "Server shutdown error", err, models.LogSeverityMedium, nil)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
		fmt.Println("Server shutdown completed")
	}
}

// initializeLogger logs to Postgres when DATABASE_URL is set, otherwise to stdout
func initializeLogger(cfg *config.Config) (logger.Service, error) {
	if cfg.DatabaseURL == "" {
		return logger.NewConsoleLogger(os.Stdout), nil
	}

	db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return logger.NewDatabaseLogger(db), nil
}

func initializeCache(cfg *config.Config, m *metrics.Metrics) (cache.Service, error) {
	switch cfg.CacheType {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL, cfg.CacheMaxEntries, m.RecordEviction)
	case "memory":
		return cache.NewMemoryCache(cfg.CacheMaxEntries, cache.WithEvictionHook(m.RecordEviction))
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}

func initializeSource(cfg *config.Config) (datasource.Source, error) {
	switch cfg.DataSource {
	case datasource.KindMock:
		return datasource.NewGenerator(datasource.WithFailureRate(cfg.MockFailureRate)), nil
	case datasource.KindUpstream:
		httpFetcher, err := fetcher.NewHTTPFetcher(cfg.UpstreamURL, time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
		if err != nil {
			return nil, err
		}
		return datasource.NewUpstream(httpFetcher, parser.NewParser()), nil
	default:
		return nil, fmt.Errorf("unsupported data source: %s", cfg.DataSource)
	}
}
