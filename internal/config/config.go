// Package config manages runtime configuration.
//
// Values are layered from three sources, later ones winning:
//   - built-in defaults (see defaults below)
//   - an optional JSON file named by TOKENFARMS_CONFIG_FILE
//   - environment variables prefixed with TOKENFARMS_ (optionally from a `.env` file)
//
// The merged result is unmarshalled into Config and validated so the app fails
// fast on bad or missing values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env, if present,
	// before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from environment variable names before mapping.
	EnvPrefix = "TOKENFARMS_"

	// ConfigFileEnv names the environment variable holding the JSON config path.
	ConfigFileEnv = EnvPrefix + "CONFIG_FILE"

	// ServiceName tags every log line emitted by this service.
	ServiceName = "tokenfarms-api"
)

/*
	Env vars map onto koanf keys like this:
	  - the TOKENFARMS_ prefix is removed
	  - the rest is lowercased
	  - a double underscore marks nesting

	e.g. TOKENFARMS_DATABASE__MAX_CONNS -> database.max_conns -> Config.Database.MaxConns
*/

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	ShutdownTimeout    int      `koanf:"shutdown_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// MaxConns is the hard ceiling of concurrently checked-out connections;
// acquisitions beyond it wait for a release.
type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns        int32         `koanf:"max_conns" validate:"required,min=1"`
	MinConns        int32         `koanf:"min_conns" validate:"min=0,ltefield=MaxConns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"min=0"`
	QueryTimeout    time.Duration `koanf:"query_timeout" validate:"required,min=1ms"`
}

// defaults: port 3000, pool of 20, CORS open to everyone.
var defaults = map[string]any{
	"primary.env": "development",

	"server.port":                 "3000",
	"server.read_timeout":         30,
	"server.write_timeout":        30,
	"server.idle_timeout":         60,
	"server.shutdown_timeout":     30,
	"server.cors_allowed_origins": []string{"*"},

	"database.host":               "localhost",
	"database.port":               5432,
	"database.name":               "tokenfarms",
	"database.ssl_mode":           "disable",
	"database.max_conns":          20,
	"database.min_conns":          0,
	"database.conn_max_lifetime":  time.Hour,
	"database.conn_max_idle_time": 30 * time.Minute,
	"database.query_timeout":      10 * time.Second,

	"observability.logging.format":               "json",
	"observability.logging.slow_query_threshold": 500 * time.Millisecond,
	"observability.health_checks.timeout":        5 * time.Second,
}

// LoadConfig reads every configuration source, unmarshals the merged result
// into Config, validates it and fills in observability defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate injects observability defaults when the block is missing, checks
// struct tags and then runs the observability rules.
func (c *Config) Validate() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

// IsLocal reports whether SQL statements should be traced to the log.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}

// envKeyValue maps an env var onto its koanf key. List values are comma separated.
func envKeyValue(name, value string) (string, any) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")

	if key == "server.cors_allowed_origins" {
		origins := strings.Split(value, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return key, origins
	}

	return key, value
}
