// Package config loads annodoc configuration from .annodoc/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the configuration directory.
const ConfigDirName = ".annodoc"

// Config holds all annodoc configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Tests    TestsConfig    `yaml:"tests"`
	Coverage CoverageConfig `yaml:"coverage"`
	Output   OutputConfig   `yaml:"output"`
}

// PathsConfig controls module-name inference from source paths.
type PathsConfig struct {
	// Containers are directory names that never name a module.
	Containers []string `yaml:"containers"`
	// AppRoots are directories whose next segment is an application root.
	AppRoots []string `yaml:"app_roots"`
	// EntryFiles are file stems that defer to their directory.
	EntryFiles []string `yaml:"entry_files"`
}

// TestsConfig controls test discovery and correlation conventions.
type TestsConfig struct {
	Patterns    []string `yaml:"patterns"`
	TestDirs    []string `yaml:"test_dirs"`
	ActionGlobs []string `yaml:"action_globs"`
	ScreenGlobs []string `yaml:"screen_globs"`
	E2EGlobs    []string `yaml:"e2e_globs"`
}

// CoverageConfig holds the tunable coverage score weights.
type CoverageConfig struct {
	PerTest        int `yaml:"per_test"`
	TestCap        int `yaml:"test_cap"`
	PerCategory    int `yaml:"per_category"`
	MissingPenalty int `yaml:"missing_penalty"`
}

// OutputConfig holds snapshot output settings.
type OutputConfig struct {
	Snapshot string `yaml:"snapshot"`
	Format   string `yaml:"format"`
	Workers  int    `yaml:"workers"`
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"json", "toon"}

// ErrConfigNotFound is returned when no config directory can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .annodoc/config.yaml, searching upward from workDir.
// If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path, merges it over the defaults
// and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Weights are seeded so that an explicit zero survives decoding.
	loaded := &Config{Coverage: DefaultConfig().Coverage}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .annodoc directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	current := absDir
	for {
		dir := filepath.Join(current, ConfigDirName)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrConfigNotFound
		}
		current = parent
	}
}

// Validate checks that config values are usable.
func Validate(cfg *Config) error {
	valid := false
	for _, f := range ValidFormats {
		if cfg.Output.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: output.format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if cfg.Output.Workers < 0 {
		return fmt.Errorf("%w: output.workers must be non-negative, got %d",
			ErrInvalidConfig, cfg.Output.Workers)
	}

	c := cfg.Coverage
	if c.PerTest < 0 || c.PerCategory < 0 || c.MissingPenalty < 0 {
		return fmt.Errorf("%w: coverage weights must be non-negative", ErrInvalidConfig)
	}
	if c.TestCap <= 0 {
		return fmt.Errorf("%w: coverage.test_cap must be positive, got %d",
			ErrInvalidConfig, c.TestCap)
	}
	if c.PerCategory <= c.PerTest {
		return fmt.Errorf("%w: coverage.per_category (%d) must exceed coverage.per_test (%d)",
			ErrInvalidConfig, c.PerCategory, c.PerTest)
	}

	globs := [][]string{cfg.Tests.Patterns, cfg.Tests.ActionGlobs, cfg.Tests.ScreenGlobs, cfg.Tests.E2EGlobs}
	for _, group := range globs {
		for _, g := range group {
			if !doublestar.ValidatePattern(g) {
				return fmt.Errorf("%w: bad glob %q", ErrInvalidConfig, g)
			}
		}
	}
	return nil
}

// SaveDefault writes the default configuration to .annodoc/config.yaml in
// workDir. An existing file is only replaced when force is set.
func SaveDefault(workDir string, force bool) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	configDir := filepath.Join(absDir, ConfigDirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	header := "# annodoc configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
