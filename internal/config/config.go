// Package config loads the client configuration from the environment.
// Every setting has a working default so the CLI runs against a local
// backend without any setup.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultBaseURL matches the development backend.
const DefaultBaseURL = "http://localhost:5784"

type Config struct {
	API           APIConfig
	State         StateConfig
	Observability ObservabilityConfig
	Environment   string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// PageSize is the default expense list page size.
	PageSize int
}

type StateConfig struct {
	// Path of the sqlite file holding session state. Empty means the
	// default under the user config directory.
	Path string
}

type ObservabilityConfig struct {
	// MetricsAddr, when set, exposes a Prometheus endpoint on that
	// address for the lifetime of the command.
	MetricsAddr string
	LogLevel    string
}

func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:  getEnv("BEZORGEN_API_BASE_URL", DefaultBaseURL),
			Timeout:  getDurationEnv("BEZORGEN_HTTP_TIMEOUT", 30*time.Second),
			PageSize: getIntEnv("BEZORGEN_PAGE_SIZE", 50),
		},
		State: StateConfig{
			Path: getEnv("BEZORGEN_STATE_PATH", ""),
		},
		Observability: ObservabilityConfig{
			MetricsAddr: getEnv("BEZORGEN_METRICS_ADDR", ""),
			LogLevel:    getEnv("BEZORGEN_LOG_LEVEL", "info"),
		},
		Environment: getEnv("APP_ENV", "development"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// StatePath resolves the session state file, falling back to
// bezorgen/state.db under the OS user config directory.
func (c *Config) StatePath() (string, error) {
	if c.State.Path != "" {
		return c.State.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "bezorgen")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
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

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
