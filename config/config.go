package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lucasjlepore/igc-route/route"
)

const defaultMaxUploadBytes = 10 << 20

// Config holds environment-driven settings for the route API.
type Config struct {
	Port           int
	LogLevel       string
	LogDir         string
	DefaultLevel   route.Level
	MaxUploadBytes int64
	BearerToken    string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:           8080,
		LogLevel:       "info",
		DefaultLevel:   route.DefaultLevel,
		MaxUploadBytes: defaultMaxUploadBytes,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if lvl := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))); lvl != "" {
		switch lvl {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = lvl
		default:
			return cfg, fmt.Errorf("invalid LOG_LEVEL: %s", lvl)
		}
	}
	cfg.LogDir = os.Getenv("LOG_DIR")

	if lvlStr := os.Getenv("DEFAULT_DETAIL_LEVEL"); lvlStr != "" {
		lvl, err := route.ParseLevel(lvlStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid DEFAULT_DETAIL_LEVEL: %w", err)
		}
		cfg.DefaultLevel = lvl
	}

	if maxStr := os.Getenv("MAX_UPLOAD_BYTES"); maxStr != "" {
		if n, err := strconv.ParseInt(maxStr, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		} else {
			return cfg, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %s", maxStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
