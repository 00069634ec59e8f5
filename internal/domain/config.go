package domain

import (
	"fmt"
	"strings"
)

// Default locations, relative to the project directory.
const (
	DefaultMappingFile   = "schema/mapping.yaml"
	DefaultMigrationsDir = "migrations"
	DefaultProxiesDir    = "var/proxies"
)

// ValidLogLevels enumerates accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// ProjectConfig holds project-level configuration loaded from .schemactl.yaml.
type ProjectConfig struct {
	Persistence PersistenceSettings `yaml:"persistence" json:"persistence"`
	Logging     LoggingConfig       `yaml:"logging"     json:"logging"`
}

// PersistenceSettings is the persistence namespace handed to the command router.
type PersistenceSettings struct {
	BackendOptions BackendOptions `yaml:"backend_options" json:"backend_options"`
	Mapping        string         `yaml:"mapping"         json:"mapping,omitempty"`
	Migrations     string         `yaml:"migrations"      json:"migrations,omitempty"`
	Proxies        string         `yaml:"proxies"         json:"proxies,omitempty"`
}

// BackendOptions describes the database backend.
// Pointer types distinguish "not set" (null) from an empty value.
type BackendOptions struct {
	Driver *string `yaml:"driver" json:"driver"`
	Path   *string `yaml:"path"   json:"path"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level      string `yaml:"level"        json:"level,omitempty"`
	File       string `yaml:"file"         json:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"  json:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups"  json:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days,omitempty"`
	Compress   *bool  `yaml:"compress"     json:"compress,omitempty"`
}

// HasBackend reports whether both driver and path are configured. Commands
// touching the database are skipped otherwise.
func (s PersistenceSettings) HasBackend() bool {
	return s.BackendOptions.Driver != nil && s.BackendOptions.Path != nil
}

// Driver returns the configured driver or "" when unset.
func (s PersistenceSettings) Driver() string {
	if s.BackendOptions.Driver == nil {
		return ""
	}
	return *s.BackendOptions.Driver
}

// DatabasePath returns the configured database path or "" when unset.
func (s PersistenceSettings) DatabasePath() string {
	if s.BackendOptions.Path == nil {
		return ""
	}
	return *s.BackendOptions.Path
}

// DefaultConfig returns a config with no backend; every database command is gated.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		Persistence: PersistenceSettings{
			Mapping:    DefaultMappingFile,
			Migrations: DefaultMigrationsDir,
			Proxies:    DefaultProxiesDir,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// WithDefaults fills every unset location and logging level from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.Persistence.Mapping == "" {
		c.Persistence.Mapping = d.Persistence.Mapping
	}
	if c.Persistence.Migrations == "" {
		c.Persistence.Migrations = d.Persistence.Migrations
	}
	if c.Persistence.Proxies == "" {
		c.Persistence.Proxies = d.Persistence.Proxies
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	return c
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("unknown logging.level %q (valid: debug, info, warn, error)", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("logging.max_size_mb = %d (must not be negative)", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("logging.max_backups = %d (must not be negative)", c.Logging.MaxBackups)
	}
	if c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("logging.max_age_days = %d (must not be negative)", c.Logging.MaxAgeDays)
	}
	if c.Persistence.Migrations != "" && c.Persistence.Migrations == c.Persistence.Proxies {
		return fmt.Errorf("persistence.migrations and persistence.proxies must differ (both %q)", c.Persistence.Migrations)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
