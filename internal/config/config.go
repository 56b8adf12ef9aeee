// Package config loads application configuration from config.yaml and
// GYMSCOPE_-prefixed environment variables, and initializes the global
// logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leap-analytics/gymscope/internal/warehouse"
)

// Config holds the full application configuration.
type Config struct {
	Warehouse warehouse.PostgresConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Cache     CacheConfig              `yaml:"cache" mapstructure:"cache"`
	Snapshot  SnapshotConfig           `yaml:"snapshot" mapstructure:"snapshot"`
	Server    ServerConfig             `yaml:"server" mapstructure:"server"`
	Log       LogConfig                `yaml:"log" mapstructure:"log"`
}

// CacheConfig tunes the data-access cache.
type CacheConfig struct {
	// TTLMinutes is how long fetched warehouse data stays fresh.
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`

	// QueriesPerMinute throttles upstream warehouse queries on cache
	// misses. Zero disables throttling.
	QueriesPerMinute int `yaml:"queries_per_minute" mapstructure:"queries_per_minute"`
}

// SnapshotConfig configures the local SQLite snapshot used offline.
type SnapshotConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GYMSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	// Keys without defaults are invisible to Unmarshal unless bound, so the
	// credential fields get explicit env bindings.
	for _, key := range []string{
		"warehouse.host", "warehouse.user", "warehouse.password", "warehouse.database",
	} {
		_ = v.BindEnv(key)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Defaults returns the default settings keyed by viper path. The warehouse
// host/user/database have no defaults: they are critical fields the operator
// must supply, and their absence fails fast at connect time.
func Defaults() map[string]any {
	return map[string]any{
		"warehouse.port":                5432,
		"warehouse.sslmode":             "prefer",
		"warehouse.mart_schema":         "dev_marts",
		"warehouse.intermediate_schema": "dev_intermediate",
		"warehouse.max_conns":           4,
		"warehouse.min_conns":           1,
		"cache.ttl_minutes":             60,
		"cache.queries_per_minute":      6,
		"snapshot.path":                 "gymscope.db",
		"server.port":                   8080,
		"server.allowed_origins":        []string{"*"},
		"log.level":                     "info",
		"log.format":                    "json",
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
