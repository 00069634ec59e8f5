package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/schemactl/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project directory.
const FileName = ".schemactl.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .schemactl.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .schemactl.yaml from projectPath.
// Returns DefaultConfig if the file does not exist, which leaves every
// database command gated.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before merging so typos in the user's raw input surface.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg.WithDefaults(), nil
}

// Resolve makes a configured location absolute relative to projectPath.
func Resolve(projectPath, location string) string {
	if location == "" || filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(projectPath, location)
}
