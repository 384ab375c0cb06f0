package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config holds the full process configuration. It is built once at
// startup and passed explicitly; nothing reads the environment after
// Load returns.
type Config struct {
	// Deployment mode: "development" or "production".
	Mode string

	// Server bind port.
	AppPort string

	// Serve TLS when true. Requires CertFile and KeyFile.
	TLS      bool
	CertFile string
	KeyFile  string

	// Log level for the slog handler.
	LogLevel string

	// Session settings.
	SessionSecret string
	CookieName    string

	// Postgres connection string for the user directory.
	DatabaseDSN string

	// Redis connection for the session store.
	RedisAddr     string
	RedisPassword string

	// Google OAuth client.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// Load reads configuration from environment variables with fallback
// defaults and validates it. Missing TLS material when TLS is requested
// is a hard error so the process never reaches the listener.
func Load() (Config, error) {
	cfg := Config{
		Mode:     getEnv("NODE_ENV", ModeDevelopment),
		AppPort:  getEnv("PORT", "3000"),
		TLS:      getEnvBool("HTTPS", false),
		CertFile: getEnv("TLS_CERT_FILE", "cert.pem"),
		KeyFile:  getEnv("TLS_KEY_FILE", "key.pem"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieName:    getEnv("SESSION_NAME", "session"),

		DatabaseDSN: getEnv("DB_URL", "postgres://localhost:5432/review-it?sslmode=disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	}

	if cfg.Mode != ModeDevelopment && cfg.Mode != ModeProduction {
		return Config{}, fmt.Errorf("config: unknown mode %q", cfg.Mode)
	}

	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("config: SESSION_SECRET is required")
	}

	if cfg.TLS {
		if err := fileExists(cfg.CertFile); err != nil {
			return Config{}, fmt.Errorf("config: TLS requested: %w", err)
		}
		if err := fileExists(cfg.KeyFile); err != nil {
			return Config{}, fmt.Errorf("config: TLS requested: %w", err)
		}
	}

	return cfg, nil
}

// Production reports whether the config is for a production deployment.
func (c Config) Production() bool {
	return c.Mode == ModeProduction
}

func fileExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("missing %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
