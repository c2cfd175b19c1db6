// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the friendsfixer command line.
//
// # Commands
//
//	friendsfixer              full-screen chat (falls back to "chat" without a TTY)
//	friendsfixer chat         line-mode chat with history and slash commands
//	friendsfixer ask TEXT     one correction, printed to stdout
//	friendsfixer status       connection status and service health
//	friendsfixer stats        service statistics
//	friendsfixer config ...   show, path, init, get, set
//	friendsfixer stub         run a local stand-in correction service
//	friendsfixer version
//
// Global flags --url, --config and --verbose apply to every command.
package cli
