// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for friendsfixer.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env and environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.friendsfixer/config.toml
//   - ~/.friendsfixer/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/friendsfixer-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete friendsfixer configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Correction service connection
	Server ServerConfig `toml:"server" json:"server"`

	// Health polling
	Monitor MonitorConfig `toml:"monitor" json:"monitor"`

	// Chat session behaviour
	Chat ChatConfig `toml:"chat" json:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging
	Log LogConfig `toml:"log" json:"log"`
}

// ServerConfig describes how to reach the correction service.
type ServerConfig struct {
	// BaseURL is the service root, e.g. http://192.168.0.10:8000
	BaseURL string `toml:"base_url" json:"base_url"`

	// HealthTimeoutSecs bounds each health check
	HealthTimeoutSecs int `toml:"health_timeout_secs" json:"health_timeout_secs"`

	// ChatTimeoutSecs bounds each correction request
	ChatTimeoutSecs int `toml:"chat_timeout_secs" json:"chat_timeout_secs"`
}

// MonitorConfig contains health polling settings.
type MonitorConfig struct {
	PollIntervalSecs int `toml:"poll_interval_secs" json:"poll_interval_secs"`
}

// ChatConfig contains chat session settings.
type ChatConfig struct {
	// ShowHints asks the service to return Konglish hints with each reply
	ShowHints bool `toml:"show_hints" json:"show_hints"`

	// Greeting is the first assistant message of every session
	Greeting string `toml:"greeting" json:"greeting"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme: "auto", "dark", or "light"
	Theme string `toml:"theme" json:"theme"`

	// ShowTiming shows processing time and model under replies
	ShowTiming bool `toml:"show_timing" json:"show_timing"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level: "debug", "info", "warn", or "error"
	Level string `toml:"level" json:"level"`

	// File receives TUI logs. Empty uses ~/.friendsfixer/friendsfixer.log.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			BaseURL:           "http://127.0.0.1:8000",
			HealthTimeoutSecs: 5,
			ChatTimeoutSecs:   30,
		},
		Monitor: MonitorConfig{
			PollIntervalSecs: 5,
		},
		Chat: ChatConfig{
			ShowHints: false,
		},
		UI: UIConfig{
			Theme:      "auto",
			ShowTiming: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// HealthTimeout returns the health check timeout as a duration.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.Server.HealthTimeoutSecs) * time.Second
}

// ChatTimeout returns the chat request timeout as a duration.
func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.Server.ChatTimeoutSecs) * time.Second
}

// PollInterval returns the health poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollIntervalSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the friendsfixer configuration directory path.
// FRIENDSFIXER_CONFIG_DIR overrides the default ~/.friendsfixer.
func ConfigDir() (string, error) {
	if dir := os.Getenv("FRIENDSFIXER_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".friendsfixer"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the log file path, honouring log.file.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "friendsfixer.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=VALUE pairs from .env in the working directory into
// the process environment. Variables already set are left alone and a
// missing file is not an error.
func LoadDotEnv() error {
	return loadDotEnvFile(".env")
}

func loadDotEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// .env and environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if err := LoadDotEnv(); err != nil {
		loadErr = err
	}

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err = finish(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finish applies env overrides, migration, defaults, and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.Migrate()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	cfg.SetDefaults()
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
// Booleans are not touched: false is a valid explicit choice.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// Server
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.HealthTimeoutSecs == 0 {
		c.Server.HealthTimeoutSecs = defaults.Server.HealthTimeoutSecs
	}
	if c.Server.ChatTimeoutSecs == 0 {
		c.Server.ChatTimeoutSecs = defaults.Server.ChatTimeoutSecs
	}

	// Monitor
	if c.Monitor.PollIntervalSecs == 0 {
		c.Monitor.PollIntervalSecs = defaults.Monitor.PollIntervalSecs
	}

	// UI
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Migrate normalizes values written by hand or by older versions.
func (c *Config) Migrate() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))

	// "warning" was accepted by early builds
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer

	// Write header comment
	fmt.Fprintln(&buf, "# friendsfixer configuration file")
	fmt.Fprintln(&buf, "# Generated by friendsfixer - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Server
	// ==========================================================================

	if err := ValidateBaseURL(c.Server.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "server.base_url", Message: err.Error()})
	}
	if c.Server.HealthTimeoutSecs < 1 || c.Server.HealthTimeoutSecs > 60 {
		errs = append(errs, ValidationError{
			Field:   "server.health_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 60, got %d", c.Server.HealthTimeoutSecs),
		})
	}
	if c.Server.ChatTimeoutSecs < 1 || c.Server.ChatTimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "server.chat_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Server.ChatTimeoutSecs),
		})
	}

	// ==========================================================================
	// Monitor
	// ==========================================================================

	if c.Monitor.PollIntervalSecs < 1 || c.Monitor.PollIntervalSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "monitor.poll_interval_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Monitor.PollIntervalSecs),
		})
	}

	// ==========================================================================
	// UI and logging
	// ==========================================================================

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBaseURL checks that raw is an absolute http or https URL with a host.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme '%s', must be http or https", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("URL has no host")
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - FRIENDSFIXER_URL: overrides server.base_url
//   - FRIENDSFIXER_SHOW_HINTS: set to "1" or "true" to request hints
//   - FRIENDSFIXER_POLL_INTERVAL: overrides monitor.poll_interval_secs
//   - FRIENDSFIXER_LOG_LEVEL: overrides log.level
//   - FRIENDSFIXER_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("FRIENDSFIXER_URL"); u != "" {
		c.Server.BaseURL = u
	}

	if hints := os.Getenv("FRIENDSFIXER_SHOW_HINTS"); hints != "" {
		c.Chat.ShowHints = hints == "1" || strings.ToLower(hints) == "true"
	}

	if interval := os.Getenv("FRIENDSFIXER_POLL_INTERVAL"); interval != "" {
		if secs, err := strconv.Atoi(interval); err == nil {
			c.Monitor.PollIntervalSecs = secs
		}
	}

	if level := os.Getenv("FRIENDSFIXER_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if theme := os.Getenv("FRIENDSFIXER_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "chat.show_hints").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"server.base_url",
		"server.health_timeout_secs",
		"server.chat_timeout_secs",
		"monitor.poll_interval_secs",
		"chat.show_hints",
		"chat.greeting",
		"ui.theme",
		"ui.show_timing",
		"log.level",
		"log.file",
	}
}
