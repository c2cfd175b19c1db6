// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap loggers used across friendsfixer.
//
// CLI commands log JSON to stderr. The TUI owns the terminal, so it logs to
// a file instead (see config.LogPath).
package logging
