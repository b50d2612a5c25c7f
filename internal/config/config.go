// Package config loads the fit server configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Store   StoreConfig   `mapstructure:"store"`
	Avatar  AvatarConfig  `mapstructure:"avatar"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	WarmUp  bool          `mapstructure:"warm_up"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxRequestSize int           `mapstructure:"max_request_size"`
	Concurrency    int           `mapstructure:"concurrency"`
}

type LoggingConfig struct {
	File string `mapstructure:"file"`
	JSON bool   `mapstructure:"json"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"` // empty = built-in catalog
}

// StoreConfig selects the profile store. Driver is "memory" or "redis".
type StoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type AvatarConfig struct {
	Delay   time.Duration `mapstructure:"delay"`
	BaseURL string        `mapstructure:"base_url"`
}

type ScoringConfig struct {
	TightThreshold   float64 `mapstructure:"tight_threshold"`
	LooseThreshold   float64 `mapstructure:"loose_threshold"`
	PerfectTolerance float64 `mapstructure:"perfect_tolerance"`
	TightPenalty     int     `mapstructure:"tight_penalty"`
	LoosePenalty     int     `mapstructure:"loose_penalty"`
	PerfectFitScore  int     `mapstructure:"perfect_fit_score"`
	MaxScore         int     `mapstructure:"max_score"`
}

// Load reads the configuration from path (optional) and FIT_* environment
// variables, e.g. FIT_SERVER_PORT or FIT_STORE_REDIS_ADDRESS.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_request_size", 1024*1024)
	v.SetDefault("server.concurrency", 0)

	v.SetDefault("logging.file", "")
	v.SetDefault("logging.json", true)

	v.SetDefault("catalog.path", "")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redis.address", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "ervenista:")
	v.SetDefault("store.redis.ttl", 0)

	v.SetDefault("avatar.delay", 3*time.Second)
	v.SetDefault("avatar.base_url", "https://cdn.ervenista.app")

	v.SetDefault("scoring.tight_threshold", 5.0)
	v.SetDefault("scoring.loose_threshold", 5.0)
	v.SetDefault("scoring.perfect_tolerance", 2.0)
	v.SetDefault("scoring.tight_penalty", 30)
	v.SetDefault("scoring.loose_penalty", 20)
	v.SetDefault("scoring.perfect_fit_score", 85)
	v.SetDefault("scoring.max_score", 100)

	v.SetDefault("warm_up", true)
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxRequestSize <= 0 {
		return errors.New("server.max_request_size must be positive")
	}
	switch c.Store.Driver {
	case "memory":
	case "redis":
		if c.Store.Redis.Address == "" {
			return errors.New("store.redis.address is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Avatar.Delay < 0 {
		return errors.New("avatar.delay must not be negative")
	}
	return nil
}
