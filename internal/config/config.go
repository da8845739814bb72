// Package config loads darkdork settings from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/rsclarke/darkdork/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g. DARKDORK_DB.
const EnvPrefix = "DARKDORK"

type Config struct {
	DBPath      string    `mapstructure:"db"`
	LibraryPath string    `mapstructure:"library"`
	Seed        bool      `mapstructure:"seed"`
	Log         LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Logging converts the log section into a logging.Config.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
		Compress:   c.Log.Compress,
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", "~/.darkdork/darkdork.db")
	v.SetDefault("library", "~/.darkdork/dork_library.json")
	v.SetDefault("seed", true)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := fromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load layers an optional config file and DARKDORK_* env vars over the defaults.
// When path is empty, darkdork.yaml is looked up in the working directory and
// in ~/.darkdork; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName("darkdork")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.darkdork")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	var err error
	if cfg.DBPath, err = homedir.Expand(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("expand db path: %w", err)
	}
	if cfg.LibraryPath, err = homedir.Expand(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("expand library path: %w", err)
	}
	if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
		return nil, fmt.Errorf("expand log file path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db must not be empty")
	}
	if c.LibraryPath == "" {
		return errors.New("library must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
