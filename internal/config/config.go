// Package config loads application configuration from an optional YAML file
// and PROCFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-procflow/internal/service"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// RedisConfig configures the event bus and the historic status cache. An
// empty Addr disables both.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	PoolSize  int           `mapstructure:"pool_size"`
	StatusTTL time.Duration `mapstructure:"status_ttl"`
}

type EngineConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TrackerConfig struct {
	TerminateMatch string `mapstructure:"terminate_match"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:         "host=localhost user=postgres password=postgres dbname=procflow port=5432 sslmode=disable",
			AutoMigrate: true,
		},
		Store: StoreConfig{Driver: StoreDriverPostgres},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  100,
			StatusTTL: 24 * time.Hour,
		},
		Engine: EngineConfig{
			BaseURL: "http://localhost:8081/engine-rest",
			Timeout: 10 * time.Second,
		},
		Tracker: TrackerConfig{TerminateMatch: service.MatchByInstanceID.String()},
		Log:     LogConfig{Level: "info"},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("store.driver", d.Store.Driver)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.status_ttl", d.Redis.StatusTTL)

	v.SetDefault("engine.base_url", d.Engine.BaseURL)
	v.SetDefault("engine.timeout", d.Engine.Timeout)

	v.SetDefault("tracker.terminate_match", d.Tracker.TerminateMatch)

	v.SetDefault("log.level", d.Log.Level)
}

// Load reads configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("PROCFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.Engine.BaseURL) == "" {
		errs = append(errs, errors.New("engine.base_url is required"))
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, errors.New("engine.timeout must be positive"))
	}
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			errs = append(errs, errors.New("database.dsn is required for the postgres store"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of postgres, memory", c.Store.Driver))
	}
	if _, err := service.ParseMatchPolicy(c.Tracker.TerminateMatch); err != nil {
		errs = append(errs, fmt.Errorf("tracker.terminate_match: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
