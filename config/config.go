// Package config loads botdag settings from a YAML file, a .env file and
// environment variables, in that order of precedence from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/meikuraledutech/botdag/logger"
	"github.com/spf13/viper"
)

// ErrNoJWTSecret is returned when a command needs auth.jwt_secret and it is unset.
var ErrNoJWTSecret = errors.New("config: auth.jwt_secret is required")

// EnvPrefix is prepended to every environment key, e.g. BOTDAG_API_TOKEN.
const EnvPrefix = "BOTDAG"

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	API      APIConfig      `mapstructure:"api"`
	Log      logger.Config  `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig selects the store; an empty URL means the in-memory store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"`
}

// APIConfig is used by the CLI when talking to a backend.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type loaderConfig struct {
	configFile string
	envFile    string
}

// Option configures Load.
type Option func(*loaderConfig)

// WithConfigFile sets an explicit YAML config file path.
func WithConfigFile(path string) Option {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// Load reads the configuration. Missing optional files are skipped.
func Load(opts ...Option) (*Config, error) {
	lc := loaderConfig{envFile: ".env"}
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.envFile != "" && exists(lc.envFile) {
		if err := godotenv.Load(lc.envFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", lc.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", lc.configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional names used by the original tooling.
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("api.url", EnvPrefix+"_API_URL", "CF_URL")
	_ = v.BindEnv("api.token", EnvPrefix+"_API_TOKEN", "CF_TOKEN")
	_ = v.BindEnv("auth.jwt_secret", EnvPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Log.ApplyDefaults()
	return &cfg, nil
}

// ValidateServer checks the settings the reference server needs.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		return ErrNoJWTSecret
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	return c.Log.Validate()
}

// ValidateClient checks the settings API commands need.
func (c *Config) ValidateClient() error {
	if c.API.URL == "" {
		return errors.New("config: api.url is required (set CF_URL or BOTDAG_API_URL)")
	}
	if c.API.Token == "" {
		return errors.New("config: api.token is required (set CF_TOKEN or BOTDAG_API_TOKEN)")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("catalog.file", "")
	v.SetDefault("api.url", "http://127.0.0.1:8000/api/v1")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatConsole)
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.caller", false)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
