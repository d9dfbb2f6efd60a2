package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Data source
	DataSource      string
	UpstreamURL     string
	MockFailureRate float64

	// Cache
	CacheType       string
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisURL        string

	// Retrying fetch client
	FetchMaxAttempts    int
	FetchBackoffFactor  time.Duration
	FetchTimeoutSeconds int

	// Rate limiting
	GlobalRateLimitPerSec int
	RateLimitPerSec       int

	// Empty means log to stdout
	DatabaseURL string

	ServerReadTimeout     time.Duration
	ServerWriteTimeout    time.Duration
	ServerShutdownTimeout time.Duration
}

// Load reads settings from the environment (and .env). When CONFIG_FILE names
// a YAML file, its values become the defaults that the environment overrides.
func Load() *Config {
	// Load .env file if it exists (optional)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}

	defaults := defaultFile()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fromFile, err := readFile(path, defaults)
		if err != nil {
			log.Printf("Ignoring config file: %v", err)
		} else {
			defaults = fromFile
		}
	}

	return &Config{
		Port:                  getEnv("PORT", defaults.Port),
		DataSource:            getEnv("DATA_SOURCE", defaults.DataSource),
		UpstreamURL:           getEnv("UPSTREAM_URL", defaults.UpstreamURL),
		MockFailureRate:       getFloatEnv("MOCK_FAILURE_RATE", defaults.MockFailureRate),
		CacheType:             getEnv("CACHE_TYPE", defaults.Cache.Type),
		CacheTTL:              getSecondsEnv("CACHE_TTL", fractionalSeconds(defaults.Cache.TTL)),
		CacheMaxEntries:       getIntEnv("CACHE_MAX_ENTRIES", defaults.Cache.MaxEntries),
		RedisURL:              getEnv("REDIS_URL", defaults.Cache.RedisURL),
		FetchMaxAttempts:      getIntEnv("FETCH_MAX_ATTEMPTS", defaults.Fetch.MaxAttempts),
		FetchBackoffFactor:    getSecondsEnv("FETCH_BACKOFF_FACTOR", fractionalSeconds(defaults.Fetch.BackoffFactor)),
		FetchTimeoutSeconds:   getIntEnv("FETCH_TIMEOUT_SECONDS", defaults.Fetch.TimeoutSeconds),
		GlobalRateLimitPerSec: getIntEnv("GLOBAL_RATE_LIMIT_PER_SEC", defaults.RateLimit.GlobalPerSec),
		RateLimitPerSec:       getIntEnv("RATE_LIMIT_PER_SEC", defaults.RateLimit.PerClientPerSec),
		DatabaseURL:           getEnv("DATABASE_URL", defaults.DatabaseURL),
		ServerReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", seconds(defaults.Server.ReadTimeout)),
		ServerWriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", seconds(defaults.Server.WriteTimeout)),
		ServerShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", seconds(defaults.Server.ShutdownTimeout)),
	}
}

// Validate reports every setting the service cannot start with
func (c *Config) Validate() error {
	var errs []error

	switch c.DataSource {
	case "mock":
	case "upstream":
		if c.UpstreamURL == "" {
			errs = append(errs, errors.New("UPSTREAM_URL is required when DATA_SOURCE=upstream"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATA_SOURCE must be mock or upstream, got %q", c.DataSource))
	}

	if c.CacheType != "memory" && c.CacheType != "redis" {
		errs = append(errs, fmt.Errorf("CACHE_TYPE must be memory or redis, got %q", c.CacheType))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.CacheMaxEntries < 1 {
		errs = append(errs, errors.New("CACHE_MAX_ENTRIES must be at least 1"))
	}
	if c.FetchMaxAttempts < 1 {
		errs = append(errs, errors.New("FETCH_MAX_ATTEMPTS must be at least 1"))
	}
	if c.FetchBackoffFactor < 0 {
		errs = append(errs, errors.New("FETCH_BACKOFF_FACTOR must not be negative"))
	}
	if c.MockFailureRate < 0 || c.MockFailureRate > 1 {
		errs = append(errs, errors.New("MOCK_FAILURE_RATE must be between 0 and 1"))
	}
	if c.GlobalRateLimitPerSec < 1 || c.RateLimitPerSec < 1 {
		errs = append(errs, errors.New("rate limits must be at least 1 per second"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getDurationEnv reads a whole number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal) * time.Second
		}
	}
	return defaultValue
}

// getSecondsEnv reads a fractional number of seconds, e.g. 0.3
func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return time.Duration(floatVal * float64(time.Second))
		}
	}
	return defaultValue
}
