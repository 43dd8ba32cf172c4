// Package config loads notes-api settings from an optional YAML file and NOTES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete runtime configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Render   RenderConfig   `mapstructure:"render"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// LogLevel is the gorm logger level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level"`
}

type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	Issuer            string        `mapstructure:"issuer"`
	Audience          string        `mapstructure:"audience"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	BootstrapUsername string        `mapstructure:"bootstrap_username"`
	BootstrapPassword string        `mapstructure:"bootstrap_password"`
}

// RenderConfig sizes the Markdown render cache.
type RenderConfig struct {
	TTL                 time.Duration `mapstructure:"ttl"`
	MaxSize             int           `mapstructure:"max_size"`
	LargeInputThreshold int           `mapstructure:"large_input_threshold"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	LargeWorkers        int           `mapstructure:"large_workers"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8008")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "notes.db")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("auth.jwt_secret", "development-insecure-secret-change-me")
	v.SetDefault("auth.issuer", "notes-api")
	v.SetDefault("auth.audience", "notes-admin")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bootstrap_username", "admin")
	v.SetDefault("auth.bootstrap_password", "")

	v.SetDefault("render.ttl", time.Hour)
	v.SetDefault("render.max_size", 100)
	v.SetDefault("render.large_input_threshold", 10000)
	v.SetDefault("render.sweep_interval", 10*time.Minute)
	v.SetDefault("render.large_workers", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads configuration. path may be empty, in which case config.yaml is looked up
// in the working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port must not be empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must not be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Render.TTL <= 0 {
		errs = append(errs, errors.New("render.ttl must be positive"))
	}
	if c.Render.MaxSize <= 0 {
		errs = append(errs, errors.New("render.max_size must be positive"))
	}
	if c.Render.LargeInputThreshold <= 0 {
		errs = append(errs, errors.New("render.large_input_threshold must be positive"))
	}
	if c.Render.SweepInterval <= 0 {
		errs = append(errs, errors.New("render.sweep_interval must be positive"))
	}
	if c.Render.LargeWorkers <= 0 {
		errs = append(errs, errors.New("render.large_workers must be positive"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}
