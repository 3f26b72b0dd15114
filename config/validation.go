package config

import (
	"fmt"
	"net/url"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is internally consistent
// before any component is constructed from it.
func ValidateConfig(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return ValidationError{Field: "MEALWISE_API_URL", Message: "is required"}
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "MEALWISE_API_URL", Message: fmt.Sprintf("%q is not an absolute URL", cfg.APIBaseURL)}
	}

	switch cfg.CacheBackend {
	case CacheSQLite, CacheRedis, CacheMemory:
	default:
		return ValidationError{Field: "MEALWISE_CACHE", Message: fmt.Sprintf("unknown backend %q", cfg.CacheBackend)}
	}

	if cfg.CacheBackend == CacheRedis && cfg.RedisURL == "" && cfg.RedisHost == "" {
		return ValidationError{Field: "REDIS_HOST", Message: "is required for the redis cache backend"}
	}

	if IsProduction() && cfg.SecurePassphrase == "" {
		return ValidationError{Field: "MEALWISE_PASSPHRASE", Message: "is required in production"}
	}

	if cfg.OIDCIssuer != "" && cfg.OIDCClientID == "" {
		return ValidationError{Field: "OIDC_CLIENT_ID", Message: "is required when OIDC_ISSUER is set"}
	}

	return nil
}
