// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FRIENDSFIXER_CONFIG_DIR", dir)
	for _, key := range []string{
		"FRIENDSFIXER_URL",
		"FRIENDSFIXER_SHOW_HINTS",
		"FRIENDSFIXER_POLL_INTERVAL",
		"FRIENDSFIXER_LOG_LEVEL",
		"FRIENDSFIXER_THEME",
	} {
		t.Setenv(key, "")
	}
	return dir
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("unexpected default base URL %q", cfg.Server.BaseURL)
	}
	if cfg.HealthTimeout() != 5*time.Second {
		t.Errorf("expected 5s health timeout, got %v", cfg.HealthTimeout())
	}
	if cfg.ChatTimeout() != 30*time.Second {
		t.Errorf("expected 30s chat timeout, got %v", cfg.ChatTimeout())
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %v", cfg.PollInterval())
	}
	if cfg.Chat.ShowHints {
		t.Error("hints should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		field   string
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, "", false},
		{"https url", func(c *Config) { c.Server.BaseURL = "https://fixer.example.com" }, "", false},
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url", true},
		{"ftp scheme", func(c *Config) { c.Server.BaseURL = "ftp://example.com" }, "server.base_url", true},
		{"no host", func(c *Config) { c.Server.BaseURL = "http://" }, "server.base_url", true},
		{"no scheme", func(c *Config) { c.Server.BaseURL = "192.168.0.1:8000" }, "server.base_url", true},
		{"zero health timeout", func(c *Config) { c.Server.HealthTimeoutSecs = 0 }, "server.health_timeout_secs", true},
		{"huge chat timeout", func(c *Config) { c.Server.ChatTimeoutSecs = 10000 }, "server.chat_timeout_secs", true},
		{"zero poll interval", func(c *Config) { c.Monitor.PollIntervalSecs = 0 }, "monitor.poll_interval_secs", true},
		{"invalid theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme", true},
		{"invalid level", func(c *Config) { c.Log.Level = "trace" }, "log.level", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidateErrors, got %T", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verrs[0].Field)
			}
		})
	}
}

// TestConfig_EnvOverrides tests FRIENDSFIXER_* variables.
func TestConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("FRIENDSFIXER_URL", "http://192.168.0.10:8000/")
	t.Setenv("FRIENDSFIXER_SHOW_HINTS", "true")
	t.Setenv("FRIENDSFIXER_POLL_INTERVAL", "10")
	t.Setenv("FRIENDSFIXER_LOG_LEVEL", "DEBUG")
	t.Setenv("FRIENDSFIXER_THEME", "light")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "http://192.168.0.10:8000" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if !cfg.Chat.ShowHints {
		t.Error("show hints should be enabled")
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Errorf("poll interval = %v", cfg.PollInterval())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

// TestConfig_EnvOverrideInvalid tests that a bad override is rejected by validation.
func TestConfig_EnvOverrideInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("FRIENDSFIXER_URL", "not a url")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for bad FRIENDSFIXER_URL")
	}
}

// TestConfig_DotEnv tests that .env values fill unset variables only.
func TestConfig_DotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv("FRIENDSFIXER_URL")
	os.Unsetenv("FRIENDSFIXER_THEME")
	t.Cleanup(func() {
		os.Unsetenv("FRIENDSFIXER_URL")
		os.Unsetenv("FRIENDSFIXER_THEME")
	})

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "FRIENDSFIXER_URL=http://10.1.1.1:9000\nFRIENDSFIXER_THEME=dark\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	os.Setenv("FRIENDSFIXER_THEME", "light")

	if err := loadDotEnvFile(envFile); err != nil {
		t.Fatalf("loadDotEnvFile() error = %v", err)
	}

	if got := os.Getenv("FRIENDSFIXER_URL"); got != "http://10.1.1.1:9000" {
		t.Errorf("FRIENDSFIXER_URL = %q", got)
	}
	if got := os.Getenv("FRIENDSFIXER_THEME"); got != "light" {
		t.Errorf("existing variable overwritten: %q", got)
	}

	if err := loadDotEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should not be an error: %v", err)
	}
}

// TestConfig_SaveLoadTOML tests round-tripping through the TOML file.
func TestConfig_SaveLoadTOML(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.Server.BaseURL = "http://192.168.0.20:8000"
	cfg.Chat.ShowHints = true
	cfg.Chat.Greeting = "Hi!"
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if os.PathSeparator == '/' && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.BaseURL != "http://192.168.0.20:8000" || !loaded.Chat.ShowHints || loaded.Chat.Greeting != "Hi!" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

// TestConfig_LoadFromPathFillsDefaults tests partial files.
func TestConfig_LoadFromPathFillsDefaults(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "partial.toml")
	if err := os.WriteFile(path, []byte("[server]\nbase_url = \"http://10.0.0.9:8000/\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Server.BaseURL != "http://10.0.0.9:8000" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.ChatTimeoutSecs != 30 || cfg.Monitor.PollIntervalSecs != 5 {
		t.Errorf("defaults not filled: %+v", cfg)
	}
	if !cfg.UI.ShowTiming {
		t.Error("show_timing default lost")
	}
}

// TestConfig_LoadJSON tests the JSON fallback.
func TestConfig_LoadJSON(t *testing.T) {
	dir := isolate(t)

	data := []byte(`{"ui": {"theme": "dark"}}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0600); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", loaded.UI.Theme)
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("server.base_url")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "http://127.0.0.1:8000" {
		t.Errorf("Get('server.base_url') = %v", val)
	}

	if err := cfg.Set("chat.show_hints", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !cfg.Chat.ShowHints {
		t.Error("Set('chat.show_hints') had no effect")
	}

	if err := cfg.Set("monitor.poll_interval_secs", "15"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Monitor.PollIntervalSecs != 15 {
		t.Errorf("poll interval = %d", cfg.Monitor.PollIntervalSecs)
	}

	if err := cfg.Set("monitor.poll_interval_secs", "soon"); err == nil {
		t.Error("Set() with non-integer should fail")
	}
	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}

	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("GetAllKeys lists unknown key %s: %v", key, err)
		}
	}
}
