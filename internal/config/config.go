// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/amaumene/goanistream/internal/constants"
)

const (
	defaultConfigFile   = "config.json"
	defaultDatabasePath = "./data.db"
)

// Config holds the application configuration. Values come from environment
// variables with an optional JSON file underneath; environment wins.
type Config struct {
	// TMDB API key, required for the identity-resolution fallbacks
	TMDBAPIKey string `json:"TMDB_API_KEY"`

	// HTTP server
	Port string `json:"PORT"`

	// Storage settings
	DatabasePath  string        `json:"DATABASE_PATH"`
	CacheSize     int           `json:"CACHE_SIZE"`
	CacheTTLHours int           `json:"CACHE_TTL_HOURS"`
	CacheTTL      time.Duration `json:"-"`

	// Default embed provider when a user has no stored settings
	DefaultProvider string `json:"DEFAULT_PROVIDER"`

	LogLevel string `json:"LOG_LEVEL"`
}

// Load reads configuration from the optional JSON file and then the
// environment. Returns an error only for an unreadable or malformed file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            constants.DefaultPort,
		DatabasePath:    defaultDatabasePath,
		CacheSize:       constants.DefaultCacheSize,
		CacheTTLHours:   constants.DefaultCacheTTL,
		DefaultProvider: constants.ProviderVidsrc,
		LogLevel:        constants.DefaultLogLevel,
	}

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		c.TMDBAPIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		c.DatabasePath = path
	}
	if size := os.Getenv("CACHE_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			c.CacheSize = n
		}
	}
	if hours := os.Getenv("CACHE_TTL_HOURS"); hours != "" {
		if n, err := strconv.Atoi(hours); err == nil {
			c.CacheTTLHours = n
		}
	}
	if provider := os.Getenv("DEFAULT_PROVIDER"); provider != "" {
		c.DefaultProvider = provider
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// Validate checks the configuration and fills defaults for optional fields.
func (c *Config) Validate() error {
	switch c.DefaultProvider {
	case constants.ProviderEmbedAPI, constants.ProviderVidsrc, constants.ProviderVideasy:
	default:
		return fmt.Errorf("unknown default provider: %s", c.DefaultProvider)
	}

	if c.CacheSize <= 0 {
		c.CacheSize = constants.DefaultCacheSize
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = constants.DefaultCacheTTL
	}
	c.CacheTTL = time.Duration(c.CacheTTLHours) * time.Hour

	// TMDB_API_KEY stays optional: without it the external-links step still
	// works, only the search and external-ids fallbacks are disabled.
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
