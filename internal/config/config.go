// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brads3290/ccviewer/internal/constants"
)

type Config struct {
	Port       int
	Host       string
	ClaudeDir  string
	DBPath     string // empty disables the metadata cache
	ConfigPath string
	PageSize   int
	Timezone   string
	LogLevel   string

	Location *time.Location
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".ccviewer")

	cfg := &Config{
		Port:       envInt("CCVIEWER_PORT", 3400),
		Host:       envStr("CCVIEWER_HOST", "127.0.0.1"),
		ClaudeDir:  envStr("CLAUDE_DIR", filepath.Join(home, ".claude")),
		DBPath:     envStrAllowEmpty("CCVIEWER_DB_PATH", filepath.Join(dataDir, "cache.db")),
		ConfigPath: envStr("CCVIEWER_CONFIG_PATH", filepath.Join(dataDir, "config.yaml")),
		PageSize:   envInt("CCVIEWER_PAGE_SIZE", constants.DefaultPageSize),
		Timezone:   envStr("CCVIEWER_TIMEZONE", "Local"),
		LogLevel:   envStr("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("CCVIEWER_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ClaudeDir == "" {
		return fmt.Errorf("CLAUDE_DIR must not be empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("CCVIEWER_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("CCVIEWER_TIMEZONE: %w", err)
	}
	c.Location = loc
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envStrAllowEmpty distinguishes an unset variable from one set to "".
func envStrAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
