package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	HTTPAddr string

	// Admin configuration. Bcrypt hash of the operator bearer token;
	// empty disables the admin endpoints.
	AdminTokenHash string

	// Stream update job configuration
	SchedulerInterval time.Duration // how often the scheduled trigger fires
	LeaseTimeout      time.Duration // stale-lock takeover threshold
	BatchSize         int           // artists per batch for scheduled runs

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	mu       sync.Mutex
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		cfg, err := load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		instance = cfg
	}
	return instance
}

// SetTestConfig replaces the global configuration for tests
func SetTestConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// ResetConfig clears the global configuration so the next Get reloads it
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
}

// NewTestConfig returns a configuration suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:          ":0",
		SchedulerInterval: time.Hour,
		LeaseTimeout:      8 * time.Minute,
		BatchSize:         120,
		Environment:       "test",
	}
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),

		// Job settings with defaults
		SchedulerInterval: time.Hour,
		LeaseTimeout:      8 * time.Minute,
		BatchSize:         120,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if interval := os.Getenv("SCHEDULER_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.SchedulerInterval = parsed
		}
	}
	if lease := os.Getenv("LEASE_TIMEOUT"); lease != "" {
		if parsed, err := time.ParseDuration(lease); err == nil {
			config.LeaseTimeout = parsed
		}
	}
	if size := os.Getenv("BATCH_SIZE"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil && parsed > 0 {
			config.BatchSize = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
