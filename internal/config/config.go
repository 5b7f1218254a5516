package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"salesdash/internal/log"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"`
	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit    float64  `toml:"rate_limit"`
	AllowOrigins []string `toml:"allow_origins"`
}

type DataConfig struct {
	Path string `toml:"path"`
	TopN int    `toml:"top_n"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file or env var overrides it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			RateLimit:    20,
			AllowOrigins: []string{"*"},
		},
		Data: DataConfig{
			Path: "Online Sales Data.csv",
			TopN: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads an optional TOML file and then applies environment overrides.
// An empty path skips the file; a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Data.Path = getEnv("SALES_DATA_PATH", cfg.Data.Path)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.RateLimit = getEnvFloat("RATE_LIMIT", cfg.Server.RateLimit)
	cfg.Data.TopN = getEnvInt("TOP_N", cfg.Data.TopN)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	if origins := getEnv("CORS_ALLOW_ORIGINS", ""); origins != "" {
		cfg.Server.AllowOrigins = strings.Split(origins, ",")
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %v: must not be negative", c.Server.RateLimit))
	}

	if strings.TrimSpace(c.Data.Path) == "" {
		errors = append(errors, "data path cannot be empty")
	}
	if c.Data.TopN < 1 {
		errors = append(errors, fmt.Sprintf("invalid top_n %d: must be at least 1", c.Data.TopN))
	} else if c.Data.TopN > 1000 {
		errors = append(errors, fmt.Sprintf("invalid top_n %d: must be at most 1000", c.Data.TopN))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.Log.Level))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
