package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

const envPrefix = "TL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration for the environment named by TL_ENV
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(DotEnvPaths); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}
	return Load(getEnvironment(), ConfigPaths)
}

// Load reads configs/<env>.yaml from the first matching path and applies
// TL_ environment overrides on top of it
func Load(env string, paths []string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// defaults and environment are enough to run without a file
		fmt.Printf("Warning: no config file found for environment %q, using defaults\n", env)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile loads the first readable .env file; variables already set win
func loadDotEnvFile(paths []string) error {
	var lastError error

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load .env file: %w", lastError)
	}
	return nil
}

// setDefaults sets defaults for every non-secret setting
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.nodeId", 1)
	v.SetDefault("server.readTimeout", 10)      // seconds
	v.SetDefault("server.writeTimeout", 30)     // seconds
	v.SetDefault("server.idleTimeout", 120)     // seconds
	v.SetDefault("server.readHeaderTimeout", 5) // seconds
	v.SetDefault("server.shutdownTimeout", 30)  // seconds
	v.SetDefault("server.allowedOrigins", []string{})

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 10) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.service", "topup-ledger")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// RabbitMQ defaults
	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.exchange", "settlement")

	// Fulfillment defaults
	v.SetDefault("fulfillment.baseUrl", "http://localhost:9090")
	v.SetDefault("fulfillment.timeout", 10) // seconds

	// Settlement defaults
	v.SetDefault("settlement.pollInterval", 500) // milliseconds
	v.SetDefault("settlement.batchSize", 100)
	v.SetDefault("settlement.streamHeartbeat", 15) // seconds

	// Confirmation defaults
	v.SetDefault("confirmation.lockTtl", 30)         // seconds
	v.SetDefault("confirmation.cleanupInterval", 60) // seconds

	// Catalog defaults
	v.SetDefault("catalog.seedDemo", false)
}

// getEnvironment determines the environment from TL_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv(envPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// envOverride binds a short environment variable to a config key
type envOverride struct {
	env     string
	key     string
	numeric bool
}

// envOverrides are short aliases kept for secrets and connection settings
var envOverrides = []envOverride{
	{env: "TL_DB_HOST", key: "database.host"},
	{env: "TL_DB_PORT", key: "database.port", numeric: true},
	{env: "TL_DB_USERNAME", key: "database.username"},
	{env: "TL_DB_PASSWORD", key: "database.password"},
	{env: "TL_DB_NAME", key: "database.database"},
	{env: "TL_DB_SSL_MODE", key: "database.sslMode"},
	{env: "TL_DB_DRIVER", key: "database.driver"},
	{env: "TL_DB_MAX_OPEN_CONNS", key: "database.maxOpenConns", numeric: true},
	{env: "TL_DB_MAX_IDLE_CONNS", key: "database.maxIdleConns", numeric: true},
	{env: "TL_SERVER_PORT", key: "server.port", numeric: true},
	{env: "TL_NODE_ID", key: "server.nodeId", numeric: true},
	{env: "TL_LOG_LEVEL", key: "logger.level"},
	{env: "TL_REDIS_ADDR", key: "redis.addr"},
	{env: "TL_REDIS_PASSWORD", key: "redis.password"},
	{env: "TL_RABBITMQ_URL", key: "rabbitmq.url"},
	{env: "TL_FULFILLMENT_BASE_URL", key: "fulfillment.baseUrl"},
	{env: "TL_FULFILLMENT_API_KEY", key: "fulfillment.apiKey"},
	{env: "TL_JWT_SECRET", key: "auth.jwtSecret"},
	{env: "TL_ADMIN_API_KEY", key: "auth.adminApiKey"},
}

// processEnvOverrides ensures environment variables override config values.
// Malformed numeric values are ignored.
func processEnvOverrides(v *viper.Viper) {
	for _, o := range envOverrides {
		raw := os.Getenv(o.env)
		if raw == "" {
			continue
		}
		if !o.numeric {
			v.Set(o.key, raw)
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil {
			v.Set(o.key, n)
		}
	}
}

// processDurations converts the raw integer settings into durations of their documented unit
func processDurations(config *Config) {
	seconds := func(d *time.Duration) { *d = time.Duration(*d) * time.Second }
	minutes := func(d *time.Duration) { *d = time.Duration(*d) * time.Minute }
	millis := func(d *time.Duration) { *d = time.Duration(*d) * time.Millisecond }

	seconds(&config.Server.ReadTimeout)
	seconds(&config.Server.WriteTimeout)
	seconds(&config.Server.IdleTimeout)
	seconds(&config.Server.ReadHeaderTimeout)
	seconds(&config.Server.ShutdownTimeout)

	minutes(&config.Database.ConnMaxLifetime)
	minutes(&config.Database.ConnMaxIdleTime)
	seconds(&config.Database.QueryTimeout)
	seconds(&config.Database.RetryDelay)

	seconds(&config.Fulfillment.Timeout)
	millis(&config.Settlement.PollInterval)
	seconds(&config.Settlement.StreamHeartbeat)
	seconds(&config.Confirmation.LockTTL)
	seconds(&config.Confirmation.CleanupInterval)
}
