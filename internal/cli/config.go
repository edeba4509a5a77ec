package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds application configuration. It is read from impose.toml and
// IMPOSE_* environment variables; the environment wins.
//
//	log_level = "info"
//	dpi = 300
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
// Nested keys map to variables with underscores: IMPOSE_CACHE_REDIS_URL.
type Config struct {
	LogLevel    string       `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	DPI         int          `mapstructure:"dpi" validate:"gte=72,lte=2400"`
	Concurrency int          `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	Cache       CacheConfig  `mapstructure:"cache"`
	Server      ServerConfig `mapstructure:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=file redis none"`
	Dir      string `mapstructure:"dir"`
	RedisURL string `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	Prefix   string `mapstructure:"prefix"`
}

// ServerConfig configures `impose serve`.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

var configDefaults = map[string]any{
	"log_level":             "info",
	"dpi":                   300,
	"concurrency":           4,
	"cache.backend":         CacheFile,
	"cache.dir":             "",
	"cache.redis_url":       "",
	"cache.prefix":          appName + ":",
	"server.addr":           ":8080",
	"server.read_timeout":   "30s",
	"server.write_timeout":  "60s",
	"server.max_body_bytes": 1 << 20,
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		DPI:         300,
		Concurrency: 4,
		Cache:       CacheConfig{Backend: CacheFile, Prefix: appName + ":"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
	}
}

// LoadConfig reads configuration from path, or from impose.toml in the
// working directory or the user config directory when path is empty. A
// missing default file is not an error; a missing explicit one is.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return errs.New(errs.ErrCodeInvalidInput, "config %s: invalid value %v (%s)", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "config")
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
