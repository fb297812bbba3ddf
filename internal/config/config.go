// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when one is present), loads them into structured Go types, and
// validates that required values are present so they can be reused
// across the application runtime.
//
// Responsibilities:
//   - Start from DefaultConfig so every block has a usable value.
//   - Overlay environment variables prefixed with SURVIVAL_.
//   - Validate struct tags plus the rules each block enforces itself.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process environment
	// before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the SURVIVAL_ prefix. Keys are lowercased, the
	prefix is removed and a double underscore marks one nesting level:

	  SURVIVAL_STORE__BACKEND       -> store.backend    -> Config.Store.Backend
	  SURVIVAL_DATABASE__SSL_MODE   -> database.ssl_mode
	  SURVIVAL_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level

	Lambda does not accept dots in variable names, hence "__" instead of ".".
*/

// EnvPrefix is the prefix shared by every configuration variable.
const EnvPrefix = "SURVIVAL_"

// Store backends accepted by StoreConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Identifier strategies accepted by IDConfig.Strategy.
const (
	IDStrategyRange = "range"
	IDStrategyUUID  = "uuid"
)

// Config is the root configuration object for the application.
//
// Only the block matching Store.Backend needs to be filled in; the other
// backend blocks are ignored.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Database      DatabaseConfig       `koanf:"database"`
	Redis         RedisConfig          `koanf:"redis"`
	SQLite        SQLiteConfig         `koanf:"sqlite"`
	DynamoDB      DynamoDBConfig       `koanf:"dynamodb"`
	Model         ModelConfig          `koanf:"model" validate:"required"`
	IDs           IDConfig             `koanf:"ids" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP transport (cmd/api).
//
// Timeouts are expressed in seconds. RateLimit is requests per second per
// client IP; zero disables the limiter.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	RateLimit          float64  `koanf:"rate_limit" validate:"gte=0"`
}

// StoreConfig selects the RecordStore backend.
//
// Timeout bounds every store call so a stalled backend turns into a
// 500 response instead of a hung request.
type StoreConfig struct {
	Backend string        `koanf:"backend" validate:"required,oneof=memory postgres redis sqlite dynamodb"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1ms"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
	Migrate         bool   `koanf:"migrate"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; HashKey is the hash holding every record.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	HashKey  string `koanf:"hash_key"`
}

// SQLiteConfig points at the SQLite database file.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// DynamoDBConfig names the table and, for local emulators, an endpoint override.
type DynamoDBConfig struct {
	Table    string `koanf:"table"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"`
}

// ModelConfig locates the predictor artifact.
//
// When Version is set, the artifact must declare the same version or
// loading fails, so a deploy cannot silently pick up the wrong model.
type ModelConfig struct {
	Path    string `koanf:"path" validate:"required"`
	Version string `koanf:"version"`
}

// IDConfig controls how passenger ids are generated when the caller omits one.
type IDConfig struct {
	Strategy string `koanf:"strategy" validate:"required,oneof=range uuid"`
	Min      int    `koanf:"min" validate:"gte=0"`
	Max      int    `koanf:"max" validate:"gtefield=Min"`
}

// DefaultConfig returns the configuration used before the environment is applied.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			Timeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			HashKey: "survival:predictions",
		},
		SQLite: SQLiteConfig{
			Path: "data/survival.db",
		},
		DynamoDB: DynamoDBConfig{
			Table:  "SurvivalPredictions",
			Region: "us-east-1",
		},
		Model: ModelConfig{
			Path: "models/survival-v1.json",
		},
		IDs: IDConfig{
			Strategy: IDStrategyRange,
			Min:      10000,
			Max:      99999,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// Validate checks the block of the selected backend.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("postgres backend requires database.host, database.user and database.name")
		}
		if c.Database.Port <= 0 {
			return fmt.Errorf("invalid database.port: %d", c.Database.Port)
		}
	case BackendRedis:
		if c.Redis.Address == "" || c.Redis.HashKey == "" {
			return fmt.Errorf("redis backend requires redis.address and redis.hash_key")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite backend requires sqlite.path")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" || c.DynamoDB.Region == "" {
			return fmt.Errorf("dynamodb backend requires dynamodb.table and dynamodb.region")
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it, and returns the resulting config.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Unmarshal onto the defaults: keys absent from the environment keep
	// their default value.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// The service name is fixed; the environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
