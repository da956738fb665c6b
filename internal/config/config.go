// Package config resolves keto settings from defaults, an optional
// config.yaml, a .env file and KETO_* environment variables, in increasing
// order of precedence. Command-line flags bound to the same keys win over all
// of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/saadjs/keto-cli/internal/logging"
)

const (
	EnvPrefix         = "KETO"
	DefaultWindowDays = 10
	MaxWindowDays     = 62
)

// Config is the effective keto configuration.
type Config struct {
	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db_path"`
	// User is the user name or id to act as when --user is not given.
	User string `mapstructure:"user"`
	// WindowDays is the length of the rolling planner/log window.
	WindowDays int           `mapstructure:"window_days"`
	Log        LoggingConfig `mapstructure:"log"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func Default() *Config {
	return &Config{
		WindowDays: DefaultWindowDays,
		Log: LoggingConfig{
			Level: "warn",
		},
	}
}

func SetDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("user", defaults.User)
	v.SetDefault("window_days", defaults.WindowDays)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.development", defaults.Log.Development)
}

// Setup wires defaults, the config file and the environment into v. An
// explicit cfgFile must exist; the default locations are optional.
func Setup(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.User = strings.TrimSpace(cfg.User)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.WindowDays < 1 || c.WindowDays > MaxWindowDays {
		errs = append(errs, fmt.Errorf("window_days must be between 1 and %d, got %d", MaxWindowDays, c.WindowDays))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "keto")
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".keto"
	}
	return filepath.Join(base, "keto")
}

func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
