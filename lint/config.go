package lint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	tt "github.com/gnolang/tealer/internal/types"
)

// DefaultConfigPath is read when no configuration file is given.
const DefaultConfigPath = ".tealer.yaml"

// Config represents the overall configuration of a tealer run.
type Config struct {
	Name      string                    `yaml:"name" toml:"name"`
	Detectors map[string]DetectorConfig `yaml:"detectors,omitempty" toml:"detectors,omitempty"`
	// ExportDir is where graph exports are written. Empty means the
	// working directory.
	ExportDir string `yaml:"export_dir,omitempty" toml:"export_dir,omitempty"`
	NoExport  bool   `yaml:"no_export,omitempty" toml:"no_export,omitempty"`
	// MinImpact drops findings classified below it.
	MinImpact           tt.Impact `yaml:"min_impact" toml:"min_impact"`
	ComplexityThreshold int       `yaml:"complexity_threshold,omitempty" toml:"complexity_threshold,omitempty"`
}

// DetectorConfig configures a single detector.
type DetectorConfig struct {
	Off bool `yaml:"off" toml:"off"`
}

// DefaultConfig is used when no configuration file exists.
func DefaultConfig() Config {
	return Config{
		Name:      "tealer",
		Detectors: map[string]DetectorConfig{},
	}
}

// LoadConfig reads a configuration file. Files ending in .toml are decoded
// as TOML, anything else as YAML.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, &config)
	} else {
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return config, nil
}

// loadConfigOrDefault reads path; an empty path falls back to
// DefaultConfigPath and to DefaultConfig when that file does not exist.
func loadConfigOrDefault(path string) (Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	config, err := LoadConfig(DefaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return config, err
}

// WriteConfig encodes config into path, as TOML or YAML by extension.
func WriteConfig(path string, config Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isTOML(path) {
		return toml.NewEncoder(f).Encode(config)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return err
	}
	return enc.Close()
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
