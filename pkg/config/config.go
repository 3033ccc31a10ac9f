package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAuthBaseURI = "https://rest.cleverreach.com/oauth"
	DefaultRestBaseURI = "https://rest.cleverreach.com"
)

// Settings backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendZap      = "zap"
)

type Config struct {
	AuthBaseURI  string
	RestBaseURI  string
	AdminBaseURL string

	HTTPAddr     string
	HTTPTimeout  time.Duration
	HTTPMaxTries uint

	SettingsBackend      string
	SubmissionLogBackend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		AuthBaseURI:          getEnv("CLEVERREACH_AUTH_BASE_URI", DefaultAuthBaseURI),
		RestBaseURI:          getEnv("CLEVERREACH_REST_BASE_URI", DefaultRestBaseURI),
		AdminBaseURL:         strings.TrimRight(os.Getenv("ADMIN_BASE_URL"), "/"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		SettingsBackend:      getEnv("SETTINGS_BACKEND", BackendMemory),
		SubmissionLogBackend: getEnv("SUBMISSION_LOG_BACKEND", BackendZap),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT is invalid: %w", err)
	}
	cfg.HTTPTimeout = timeout

	maxTries, err := strconv.ParseUint(getEnv("HTTP_MAX_TRIES", "1"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("HTTP_MAX_TRIES is invalid: %w", err)
	}
	cfg.HTTPMaxTries = uint(maxTries)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB is invalid: %w", err)
	}
	cfg.RedisDB = redisDB

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AuthBaseURI == "" {
		return fmt.Errorf("CLEVERREACH_AUTH_BASE_URI is required")
	}
	if c.RestBaseURI == "" {
		return fmt.Errorf("CLEVERREACH_REST_BASE_URI is required")
	}
	if c.AdminBaseURL == "" {
		return fmt.Errorf("ADMIN_BASE_URL is required")
	}
	if c.HTTPMaxTries == 0 {
		return fmt.Errorf("HTTP_MAX_TRIES must be at least 1")
	}
	switch c.SettingsBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("SETTINGS_BACKEND %q is not supported", c.SettingsBackend)
	}
	switch c.SubmissionLogBackend {
	case BackendZap, BackendPostgres:
	default:
		return fmt.Errorf("SUBMISSION_LOG_BACKEND %q is not supported", c.SubmissionLogBackend)
	}
	return nil
}

// CallbackURL is the redirect_uri registered for the OAuth handshake.
func (c *Config) CallbackURL() string {
	return c.AdminBaseURL + "/?ff_cleverreach_auth=1"
}

// SettingsPageURL is where the admin lands after the handshake completes.
func (c *Config) SettingsPageURL() string {
	return c.AdminBaseURL + "/admin.php?page=fluent_forms_settings#general-cleverreach-settings"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
