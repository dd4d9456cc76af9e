// Package config provides environment-driven configuration for topicd.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL    Secret
	Port           string
	ListenHost     string
	CORSOrigins    []string
	ClusterURL     string
	LogLevel       string
	KeyphraseCount int
	RecentLimit    int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		Port:        envOrDefault("PORT", "3040"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		ClusterURL:  envOrDefault("CLUSTER_URL", "http://localhost:8000"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
	}

	keyphrases, err := strconv.Atoi(envOrDefault("KEYPHRASE_COUNT", "3"))
	if err != nil || keyphrases < 1 || keyphrases > 10 {
		return nil, fmt.Errorf("KEYPHRASE_COUNT must be an integer between 1 and 10")
	}
	cfg.KeyphraseCount = keyphrases

	recent, err := strconv.Atoi(envOrDefault("RECENT_LIMIT", "50"))
	if err != nil || recent < 1 || recent > 500 {
		return nil, fmt.Errorf("RECENT_LIMIT must be an integer between 1 and 500")
	}
	cfg.RecentLimit = recent

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func (c *Config) validate() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if !strings.HasPrefix(c.DatabaseURL.Value(), "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL.Value(), "postgresql://") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// URL")
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}

	u, err := url.Parse(c.ClusterURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CLUSTER_URL must be a valid http(s) URL: %q", c.ClusterURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CLUSTER_URL scheme must be http or https: %q", u.Scheme)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %q", c.LogLevel)
	}

	for _, o := range c.CORSOrigins {
		if o == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain a wildcard")
		}
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
