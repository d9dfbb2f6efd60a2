package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML file named by CONFIG_FILE.
// Its values replace the built-in defaults; environment variables still win.
type fileConfig struct {
	Port            string        `yaml:"port"`
	DataSource      string        `yaml:"data_source"`
	UpstreamURL     string        `yaml:"upstream_url"`
	MockFailureRate float64       `yaml:"mock_failure_rate"`
	Cache           cacheFile     `yaml:"cache"`
	Fetch           fetchFile     `yaml:"fetch"`
	RateLimit       rateLimitFile `yaml:"rate_limit"`
	DatabaseURL     string        `yaml:"database_url"`
	Server          serverFile    `yaml:"server"`
}

type cacheFile struct {
	Type       string  `yaml:"type"`
	TTL        float64 `yaml:"ttl"`
	MaxEntries int     `yaml:"max_entries"`
	RedisURL   string  `yaml:"redis_url"`
}

type fetchFile struct {
	MaxAttempts    int     `yaml:"max_attempts"`
	BackoffFactor  float64 `yaml:"backoff_factor"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type rateLimitFile struct {
	GlobalPerSec    int `yaml:"global_per_sec"`
	PerClientPerSec int `yaml:"per_client_per_sec"`
}

type serverFile struct {
	ReadTimeout     int `yaml:"read_timeout"`
	WriteTimeout    int `yaml:"write_timeout"`
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

// defaultFile holds the built-in defaults in file form
func defaultFile() fileConfig {
	return fileConfig{
		Port:       "8080",
		DataSource: "mock",
		Cache: cacheFile{
			Type:       "memory",
			TTL:        60,
			MaxEntries: 32,
			RedisURL:   "redis://localhost:6379",
		},
		Fetch: fetchFile{
			MaxAttempts:    3,
			BackoffFactor:  0.3,
			TimeoutSeconds: 10,
		},
		RateLimit: rateLimitFile{
			GlobalPerSec:    100,
			PerClientPerSec: 10,
		},
		Server: serverFile{
			ReadTimeout:     15,
			WriteTimeout:    15,
			ShutdownTimeout: 30,
		},
	}
}

// readFile overlays the YAML document at path onto base.
// Keys absent from the file keep their value in base; unknown keys are an error.
func readFile(path string, base fileConfig) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	overlay := base
	if err := decoder.Decode(&overlay); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return overlay, nil
}

func seconds(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func fractionalSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
