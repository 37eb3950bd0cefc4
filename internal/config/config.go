// Package config loads railio settings from an optional YAML file and the
// environment. Environment variables override the file; command line flags
// override both and are applied by the binaries.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"railio/internal/application"
	"railio/internal/application/mileage"
	"railio/internal/railml"
)

const (
	DefaultExportVersion = "2.5"
	DefaultWorkers       = 4
	DefaultLogLevel      = "info"
)

// Config holds every setting the binaries read
type Config struct {
	DB            string `yaml:"db"`
	Mileage       string `yaml:"mileage"`
	Fallback      string `yaml:"fallback"`
	ExportVersion string `yaml:"export_version"`
	Workers       int    `yaml:"workers"`
	LogLevel      string `yaml:"log_level"`
	Neo4j         Neo4j  `yaml:"neo4j"`
}

// Neo4j holds the topology publisher connection
type Neo4j struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Default returns the settings used when neither file nor environment set anything
func Default() Config {
	return Config{
		Mileage:       string(mileage.FromFile),
		Fallback:      string(mileage.FallbackMissing),
		ExportVersion: DefaultExportVersion,
		Workers:       DefaultWorkers,
		LogLevel:      DefaultLogLevel,
		Neo4j:         Neo4j{User: "neo4j"},
	}
}

// Path returns the config file location from RAILIO_CONFIG,
// falling back to railio/config.yaml under the user config directory
func Path() string {
	if env := os.Getenv("RAILIO_CONFIG"); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "railio", "config.yaml")
}

// Load reads the config file when present and applies environment overrides
func Load() (Config, error) {
	return LoadFrom(Path(), os.Getenv)
}

// LoadFrom reads path (missing files are ignored) and applies overrides from getenv
func LoadFrom(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DB, "RAILIO_DB")
	set(&c.Mileage, "RAILIO_MILEAGE")
	set(&c.Fallback, "RAILIO_FALLBACK")
	set(&c.ExportVersion, "RAILIO_EXPORT_VERSION")
	set(&c.LogLevel, "RAILIO_LOG_LEVEL")
	set(&c.Neo4j.URI, "RAILIO_NEO4J_URI")
	set(&c.Neo4j.User, "RAILIO_NEO4J_USER")
	set(&c.Neo4j.Password, "RAILIO_NEO4J_PASSWORD")

	if v := getenv("RAILIO_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &application.ValidationError{Field: "RAILIO_WORKERS", Message: fmt.Sprintf("not a number: %q", v)}
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the settings that have a closed set of values
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := railml.ParseVersion(c.ExportVersion); err != nil {
		return &application.ValidationError{Field: "export_version", Message: err.Error()}
	}
	if c.Workers < 1 {
		return &application.ValidationError{Field: "workers", Message: "must be at least 1"}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Policy returns the configured mileage policy
func (c Config) Policy() (mileage.Policy, error) {
	mode, err := mileage.ParseMode(c.Mileage)
	if err != nil {
		return mileage.Policy{}, err
	}
	fallback, err := mileage.ParseFallback(c.Fallback)
	if err != nil {
		return mileage.Policy{}, err
	}
	return mileage.Policy{Mode: mode, Fallback: fallback}, nil
}

// Version returns the configured export version
func (c Config) Version() railml.Version {
	v, err := railml.ParseVersion(c.ExportVersion)
	if err != nil {
		return railml.Version25
	}
	return v
}

// Level returns the slog level named by LogLevel
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return level, &application.ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	return level, nil
}

// Redacted renders the settings for logs with the neo4j password hidden
func (c Config) Redacted() string {
	password := ""
	if c.Neo4j.Password != "" {
		password = "[REDACTED]"
	}
	return fmt.Sprintf("db=%s mileage=%s fallback=%s export_version=%s workers=%d log_level=%s neo4j=%s user=%s password=%s",
		c.DB, c.Mileage, c.Fallback, c.ExportVersion, c.Workers, c.LogLevel, c.Neo4j.URI, c.Neo4j.User, password)
}
