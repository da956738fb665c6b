package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/saadjs/keto-cli/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.WindowDays != config.DefaultWindowDays {
		t.Fatalf("expected window of %d days, got %d", config.DefaultWindowDays, cfg.WindowDays)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected warn log level, got %q", cfg.Log.Level)
	}
}

func TestSetupReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "window_days: 7\nuser: sam\nlog:\n  level: info\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KETO_LOG_LEVEL", "debug")

	v := viper.New()
	if err := config.Setup(v, path); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WindowDays != 7 || cfg.User != "sam" {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected env to override log level, got %q", cfg.Log.Level)
	}
}

func TestSetupWithoutConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	if err := config.Setup(v, ""); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := config.Load(v); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.WindowDays = 0
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation errors")
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := config.ConfigFile(); got != filepath.Join(dir, "keto", "config.yaml") {
		t.Fatalf("unexpected config file %q", got)
	}
}
