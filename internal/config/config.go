package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the rpick configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Picker  PickerConfig  `yaml:"picker"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig says which report server and project to talk to.
type ServerConfig struct {
	Endpoint  string `yaml:"endpoint"`   // Server root URL
	Project   string `yaml:"project"`    // Project name
	Token     string `yaml:"token"`      // API bearer token
	TimeoutMs int    `yaml:"timeout_ms"` // Per-request timeout
}

// PickerConfig tunes the interactive list.
type PickerConfig struct {
	PageSize          int    `yaml:"page_size"`           // Items requested per page
	DebounceMs        int    `yaml:"debounce_ms"`         // Quiet period before a search fires
	LazyLoadThreshold int    `yaml:"lazy_load_threshold"` // Rows from the end that trigger the next page
	Dedupe            bool   `yaml:"dedupe"`              // Drop repeated ids when appending pages
	OnSelect          string `yaml:"on_select"`           // Command run with the pick ({id}, {name})
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// StorageConfig holds pick-history settings.
type StorageConfig struct {
	History       bool `yaml:"history"`        // Record picks locally
	RetentionDays int  `yaml:"retention_days"` // Picks older than this are pruned (0 = keep)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			TimeoutMs: 10000,
		},
		Picker: PickerConfig{
			PageSize:          10,
			DebounceMs:        300,
			LazyLoadThreshold: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			History:       true,
			RetentionDays: 30,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Debounce returns the search quiet period as a duration.
func (p PickerConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

// ErrServerNotConfigured is returned by RequireServer when endpoint or
// project is missing.
var ErrServerNotConfigured = errors.New("server not configured")

// RequireServer checks that enough is set to reach the API.
func (c *Config) RequireServer() error {
	var missing []string
	if c.Server.Endpoint == "" {
		missing = append(missing, "server.endpoint (or RP_ENDPOINT)")
	}
	if c.Server.Project == "" {
		missing = append(missing, "server.project (or RP_PROJECT)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrServerNotConfigured, strings.Join(missing, " and "))
	}
	return nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads the configuration from a specific file. A missing file
// yields the defaults; environment overrides apply either way.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile saves the configuration to a specific file. The file holds the
// API token, so it is written owner-only.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by "section.key".
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "server":
		return c.getServerField(field)
	case "picker":
		return c.getPickerField(field)
	case "log":
		return c.getLogField(field)
	case "storage":
		return c.getStorageField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by "section.key".
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "server":
		return c.setServerField(field, value)
	case "picker":
		return c.setPickerField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "storage":
		return c.setStorageField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getServerField(field string) (string, error) {
	switch field {
	case "endpoint":
		return c.Server.Endpoint, nil
	case "project":
		return c.Server.Project, nil
	case "token":
		return c.Server.Token, nil
	case "timeout_ms":
		return strconv.Itoa(c.Server.TimeoutMs), nil
	default:
		return "", fmt.Errorf("unknown field: server.%s", field)
	}
}

func (c *Config) setServerField(field, value string) error {
	switch field {
	case "endpoint":
		if value != "" && !isValidEndpoint(value) {
			return fmt.Errorf("invalid endpoint: %s (must be an http or https URL)", value)
		}
		c.Server.Endpoint = value
	case "project":
		c.Server.Project = value
	case "token":
		c.Server.Token = value
	case "timeout_ms":
		v, err := parseNonNegative("timeout_ms", value)
		if err != nil {
			return err
		}
		c.Server.TimeoutMs = v
	default:
		return fmt.Errorf("unknown field: server.%s", field)
	}
	return nil
}

func (c *Config) getPickerField(field string) (string, error) {
	switch field {
	case "page_size":
		return strconv.Itoa(c.Picker.PageSize), nil
	case "debounce_ms":
		return strconv.Itoa(c.Picker.DebounceMs), nil
	case "lazy_load_threshold":
		return strconv.Itoa(c.Picker.LazyLoadThreshold), nil
	case "dedupe":
		return strconv.FormatBool(c.Picker.Dedupe), nil
	case "on_select":
		return c.Picker.OnSelect, nil
	default:
		return "", fmt.Errorf("unknown field: picker.%s", field)
	}
}

func (c *Config) setPickerField(field, value string) error {
	switch field {
	case "page_size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for page_size: %w", err)
		}
		if v < 1 || v > maxPageSize {
			return fmt.Errorf("invalid page_size: must be between 1 and %d", maxPageSize)
		}
		c.Picker.PageSize = v
	case "debounce_ms":
		v, err := parseNonNegative("debounce_ms", value)
		if err != nil {
			return err
		}
		c.Picker.DebounceMs = v
	case "lazy_load_threshold":
		v, err := parseNonNegative("lazy_load_threshold", value)
		if err != nil {
			return err
		}
		c.Picker.LazyLoadThreshold = v
	case "dedupe":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for dedupe: %w", err)
		}
		c.Picker.Dedupe = b
	case "on_select":
		c.Picker.OnSelect = value
	default:
		return fmt.Errorf("unknown field: picker.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func (c *Config) getStorageField(field string) (string, error) {
	switch field {
	case "history":
		return strconv.FormatBool(c.Storage.History), nil
	case "retention_days":
		return strconv.Itoa(c.Storage.RetentionDays), nil
	default:
		return "", fmt.Errorf("unknown field: storage.%s", field)
	}
}

func (c *Config) setStorageField(field, value string) error {
	switch field {
	case "history":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for history: %w", err)
		}
		c.Storage.History = b
	case "retention_days":
		v, err := parseNonNegative("retention_days", value)
		if err != nil {
			return err
		}
		c.Storage.RetentionDays = v
	default:
		return fmt.Errorf("unknown field: storage.%s", field)
	}
	return nil
}

func parseNonNegative(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must be non-negative", name)
	}
	return v, nil
}

// maxPageSize caps page_size; the server rejects larger pages.
const maxPageSize = 300

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Endpoint != "" && !isValidEndpoint(c.Server.Endpoint) {
		return fmt.Errorf("server.endpoint must be an http or https URL (got: %s)", c.Server.Endpoint)
	}
	if c.Server.TimeoutMs < 0 {
		return errors.New("server.timeout_ms must be >= 0")
	}
	if c.Picker.PageSize < 1 || c.Picker.PageSize > maxPageSize {
		return fmt.Errorf("picker.page_size must be between 1 and %d (got: %d)", maxPageSize, c.Picker.PageSize)
	}
	if c.Picker.DebounceMs < 0 {
		return errors.New("picker.debounce_ms must be >= 0")
	}
	if c.Picker.LazyLoadThreshold < 0 {
		return errors.New("picker.lazy_load_threshold must be >= 0")
	}
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}
	if c.Storage.RetentionDays < 0 {
		return errors.New("storage.retention_days must be >= 0")
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RP_ENDPOINT"); v != "" {
		c.Server.Endpoint = v
	}
	if v := os.Getenv("RP_PROJECT"); v != "" {
		c.Server.Project = v
	}
	if v := os.Getenv("RP_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("RPICK_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("RPICK_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns every settable configuration key.
func ListKeys() []string {
	return []string{
		"server.endpoint",
		"server.project",
		"server.token",
		"server.timeout_ms",
		"picker.page_size",
		"picker.debounce_ms",
		"picker.lazy_load_threshold",
		"picker.dedupe",
		"picker.on_select",
		"log.level",
		"log.file",
		"storage.history",
		"storage.retention_days",
	}
}

// IsSecretKey reports whether a key's value should be masked when printed.
func IsSecretKey(key string) bool {
	return key == "server.token"
}
