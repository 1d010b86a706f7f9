package platform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/ploog/pkg/core"
)

// ConfigFileName is the project configuration file looked up by FindConfig.
const ConfigFileName = "ploog.yaml"

// Environment variables consulted by Resolve and LogLevel.
const (
	EnvAddr     = "PLOOG_ADDR"
	EnvLogLevel = "PLOOG_LOG_LEVEL"
)

// FileConfig is the on-disk shape of ploog.yaml.
type FileConfig struct {
	Addr       string   `yaml:"addr"`
	Settle     string   `yaml:"settle"`
	Ignore     []string `yaml:"ignore"`
	FlatLayout bool     `yaml:"flat_layout"`
	LogLevel   string   `yaml:"log_level"`
}

// ReadConfigFile decodes a YAML config file. Unknown keys are rejected.
func ReadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig

	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("decode config %s: %w", path, err)
	}
	return fc, nil
}

// LoadEnv loads KEY=VALUE files into the process environment. Missing files
// are skipped and variables already set are left alone.
func LoadEnv(files ...string) error {
	for _, name := range files {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Resolve layers the config file and the environment under the values
// already set in flags. Flags win over the environment, which wins over the
// file. The result has defaults applied.
func Resolve(flags core.Config, fc FileConfig, getenv func(string) string) (core.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := flags

	if cfg.Addr == "" {
		cfg.Addr = getenv(EnvAddr)
	}
	if cfg.Addr == "" {
		cfg.Addr = fc.Addr
	}
	if cfg.Settle <= 0 && fc.Settle != "" {
		d, err := time.ParseDuration(fc.Settle)
		if err != nil {
			return core.Config{}, fmt.Errorf("settle: %w", err)
		}
		if d <= 0 {
			return core.Config{}, fmt.Errorf("settle must be positive, got %s", fc.Settle)
		}
		cfg.Settle = d
	}
	if cfg.Ignore == nil && fc.Ignore != nil {
		cfg.Ignore = append([]string(nil), fc.Ignore...)
	}
	cfg.FlatLayout = cfg.FlatLayout || fc.FlatLayout

	return cfg.WithDefaults(), nil
}

// LogLevel picks the log level: verbose forces debug, otherwise the
// environment and then the config file are consulted. The default is info.
func LogLevel(verbose bool, fc FileConfig, getenv func(string) string) (slog.Level, error) {
	if verbose {
		return slog.LevelDebug, nil
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	raw := getenv(EnvLogLevel)
	if raw == "" {
		raw = fc.LogLevel
	}
	if raw == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
