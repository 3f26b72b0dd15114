package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Cache backends for the general (snapshot) tier.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds all configuration for the client.
type Config struct {
	// API gateway configuration
	APIBaseURL string
	Locale     string

	// Local cache configuration
	DataDir          string
	CacheBackend     string
	SecurePassphrase string

	// Redis configuration (CacheBackend == "redis")
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Federated sign-in configuration (optional)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// LoadConfig builds a Config from environment variables, applying defaults
// where the variable is unset.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIBaseURL:       getEnv("MEALWISE_API_URL", "https://api.mealwise.example.com"),
		Locale:           getEnv("MEALWISE_LOCALE", "en"),
		DataDir:          getEnv("MEALWISE_DATA_DIR", defaultDataDir()),
		CacheBackend:     getEnv("MEALWISE_CACHE", CacheSQLite),
		SecurePassphrase: os.Getenv("MEALWISE_PASSPHRASE"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OIDCIssuer:       os.Getenv("OIDC_ISSUER"),
		OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", raw, err)
		}
		cfg.RedisDB = db
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SecureStorePath is the location of the encrypted credential file.
func (c *Config) SecureStorePath() string {
	return filepath.Join(c.DataDir, "secure.bin")
}

// SnapshotDBPath is the location of the SQLite snapshot database.
func (c *Config) SnapshotDBPath() string {
	return filepath.Join(c.DataDir, "snapshots.db")
}

// OIDCEnabled reports whether federated sign-in is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mealwise"
	}
	return filepath.Join(home, ".mealwise")
}
