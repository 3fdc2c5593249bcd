package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the subset of the index writer/query settings that are
// read once at Init time and fed into lifecycle.Settings.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// WriterThreads is the writer's internal thread count. 0 selects
	// max(1, runtime.NumCPU()).
	WriterThreads int `yaml:"writer_threads" json:"writer_threads"`

	// WriterHeapMB bounds the writer's in-memory batch size, in megabytes.
	WriterHeapMB int `yaml:"writer_heap_mb" json:"writer_heap_mb"`

	// StopWords is passed on to lifecycle.Settings.StopWords; the content
	// analyzer has no stop-word filter, so it does not change indexing.
	StopWords []string `yaml:"stop_words" json:"stop_words"`

	// QueryLimit is the default search limit when the caller passes
	// limit <= 0.
	QueryLimit int `yaml:"query_limit" json:"query_limit"`

	// LockTimeoutMs bounds how long Init waits to acquire the directory
	// lock before giving up.
	LockTimeoutMs int64 `yaml:"lock_timeout_ms" json:"lock_timeout_ms"`
}

const (
	configFileName     = ".fcindex.yaml"
	configFileNameAlt  = ".fcindex.yml"
	defaultWriterHeap  = 64 // MB
	defaultQueryLimit  = 50
	defaultLockTimeout = 5000 // ms
)

// NewConfig creates a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version:       1,
		WriterThreads: runtime.NumCPU(),
		WriterHeapMB:  defaultWriterHeap,
		StopWords:     nil,
		QueryLimit:    defaultQueryLimit,
		LockTimeoutMs: defaultLockTimeout,
	}
}

// GetUserConfigPath returns the path to the user/global configuration
// file. It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/fcindex/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/fcindex/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fcindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "fcindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "fcindex", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load loads configuration for an index rooted at dir, applying the
// three tiers in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/fcindex/config.yaml)
//  3. Project config (.fcindex.yaml in dir)
//  4. Environment variables (FCINDEX_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .fcindex.yaml or
// .fcindex.yml in dir. No config file present is not an error.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, configFileName)
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, configFileNameAlt)
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.WriterThreads != 0 {
		c.WriterThreads = other.WriterThreads
	}
	if other.WriterHeapMB != 0 {
		c.WriterHeapMB = other.WriterHeapMB
	}
	if len(other.StopWords) > 0 {
		c.StopWords = other.StopWords
	}
	if other.QueryLimit != 0 {
		c.QueryLimit = other.QueryLimit
	}
	if other.LockTimeoutMs != 0 {
		c.LockTimeoutMs = other.LockTimeoutMs
	}
}

// applyEnvOverrides applies FCINDEX_* environment variable overrides,
// the highest-precedence tier.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FCINDEX_WRITER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WriterThreads = n
		}
	}
	if v := os.Getenv("FCINDEX_WRITER_HEAP_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WriterHeapMB = n
		}
	}
	if v := os.Getenv("FCINDEX_QUERY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.QueryLimit = n
		}
	}
	if v := os.Getenv("FCINDEX_LOCK_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.LockTimeoutMs = n
		}
	}
	if v := os.Getenv("FCINDEX_STOP_WORDS"); v != "" {
		c.StopWords = strings.Split(v, ",")
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.WriterThreads < 0 {
		return fmt.Errorf("writer_threads must be non-negative, got %d", c.WriterThreads)
	}
	if c.WriterHeapMB < 0 {
		return fmt.Errorf("writer_heap_mb must be non-negative, got %d", c.WriterHeapMB)
	}
	if c.QueryLimit < 0 {
		return fmt.Errorf("query_limit must be non-negative, got %d", c.QueryLimit)
	}
	if c.LockTimeoutMs < 0 {
		return fmt.Errorf("lock_timeout_ms must be non-negative, got %d", c.LockTimeoutMs)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// WriterHeapBytes returns WriterHeapMB converted to bytes, for feeding
// directly into lifecycle.Settings.
func (c *Config) WriterHeapBytes() uint64 {
	return uint64(c.WriterHeapMB) * 1024 * 1024
}

// FindProjectRoot finds the project root directory by walking up from
// startDir looking for a .git directory or a .fcindex.yaml/.yml file.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, configFileName)) ||
			fileExists(filepath.Join(currentDir, configFileNameAlt)) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
