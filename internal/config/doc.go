// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for friendsfixer.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Correction service URL and timeouts
//   - MonitorConfig: Health poll interval
//   - ChatConfig: Hint requests and greeting
//   - UIConfig, LogConfig: Presentation and logging
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FRIENDSFIXER_*), including those set by ./.env
//   - ~/.friendsfixer/config.toml
//   - ~/.friendsfixer/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	url := cfg.Server.BaseURL
//	every := cfg.PollInterval()
package config
