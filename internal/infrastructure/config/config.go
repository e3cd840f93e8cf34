package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Redis        RedisConfig        `mapstructure:"redis"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
	Fulfillment  FulfillmentConfig  `mapstructure:"fulfillment"`
	Settlement   SettlementConfig   `mapstructure:"settlement"`
	Confirmation ConfirmationConfig `mapstructure:"confirmation"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	NodeID            int64         `mapstructure:"nodeId"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
	AllowedOrigins    []string      `mapstructure:"allowedOrigins"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Service string `mapstructure:"service"`
}

// RedisConfig contains the confirmation lock store settings.
// When disabled, confirmation locks are kept in the database.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RabbitMQConfig contains the settlement message bus settings.
// When disabled, settlement events are only logged and streamed.
type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// FulfillmentConfig contains the provider API settings
type FulfillmentConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}

// SettlementConfig contains the outbox relay and stream settings
type SettlementConfig struct {
	PollInterval    time.Duration `mapstructure:"pollInterval"` // milliseconds
	BatchSize       int           `mapstructure:"batchSize"`
	StreamHeartbeat time.Duration `mapstructure:"streamHeartbeat"` // seconds
}

// ConfirmationConfig contains the confirmation guard settings
type ConfirmationConfig struct {
	LockTTL         time.Duration `mapstructure:"lockTtl"`         // seconds
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"` // seconds
}

// AuthConfig contains API credentials
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwtSecret"`
	AdminAPIKey string `mapstructure:"adminApiKey"`
}

// CatalogConfig contains catalog bootstrap settings
type CatalogConfig struct {
	SeedDemo bool `mapstructure:"seedDemo"`
}

// IsProduction reports whether the production environment is active
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Validate checks that every required setting is present.
// It returns warnings for settings that are legal but unsafe in production.
func (c *Config) Validate() ([]string, error) {
	switch c.Environment {
	case Development, Production, Test:
	case "":
		return nil, errors.New("missing required configuration: environment")
	default:
		return nil, fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			c.Environment, Development, Production, Test)
	}

	var missing []string
	require := func(ok bool, key string) {
		if !ok {
			missing = append(missing, key)
		}
	}

	require(c.Server.Port > 0, "server.port")
	require(c.Server.ReadTimeout > 0, "server.readTimeout")
	require(c.Server.ShutdownTimeout > 0, "server.shutdownTimeout")
	require(c.Logger.Level != "", "logger.level")

	switch c.Database.Driver {
	case "postgres":
		require(c.Database.Host != "", "database.host (or TL_DB_HOST)")
		require(c.Database.Port > 0, "database.port (or TL_DB_PORT)")
		require(c.Database.Username != "", "database.username (or TL_DB_USERNAME)")
		require(c.Database.Password != "", "database.password (or TL_DB_PASSWORD)")
		require(c.Database.Database != "", "database.database (or TL_DB_NAME)")
		require(c.Database.QueryTimeout > 0, "database.queryTimeout")
	case "memory":
	default:
		return nil, fmt.Errorf("invalid database.driver: %q, must be postgres or memory", c.Database.Driver)
	}

	if c.Redis.Enabled {
		require(c.Redis.Addr != "", "redis.addr (or TL_REDIS_ADDR)")
	}
	if c.RabbitMQ.Enabled {
		require(c.RabbitMQ.URL != "", "rabbitmq.url (or TL_RABBITMQ_URL)")
		require(c.RabbitMQ.Exchange != "", "rabbitmq.exchange")
	}

	require(c.Fulfillment.BaseURL != "", "fulfillment.baseUrl")
	require(c.Fulfillment.Timeout > 0, "fulfillment.timeout")
	require(c.Settlement.PollInterval > 0, "settlement.pollInterval")
	require(c.Settlement.BatchSize > 0, "settlement.batchSize")
	require(c.Confirmation.LockTTL > 0, "confirmation.lockTtl")
	require(c.Auth.JWTSecret != "", "auth.jwtSecret (or TL_JWT_SECRET)")

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configurations: %v", missing)
	}

	var warnings []string
	if c.Confirmation.LockTTL < c.Fulfillment.Timeout {
		warnings = append(warnings, "confirmation.lockTtl is shorter than fulfillment.timeout")
	}
	if !c.IsProduction() {
		return warnings, nil
	}

	if c.Database.Driver == "memory" {
		warnings = append(warnings, "database.driver memory keeps no data across restarts")
	}
	if c.Database.Driver == "postgres" {
		switch strings.ToLower(c.Database.SSLMode) {
		case "require", "verify-ca", "verify-full":
		default:
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
	}
	if len(c.Auth.JWTSecret) < 32 {
		warnings = append(warnings, "auth.jwtSecret should be at least 32 bytes in production")
	}
	if c.Catalog.SeedDemo {
		warnings = append(warnings, "catalog.seedDemo is enabled in production")
	}
	if !c.RabbitMQ.Enabled {
		warnings = append(warnings, "rabbitmq is disabled, settlement events will not leave the process")
	}
	if c.Server.ReadTimeout < 5*time.Second {
		warnings = append(warnings, "server.readTimeout is too low for production")
	}

	return warnings, nil
}
