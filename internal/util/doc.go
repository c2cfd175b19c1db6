// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for friendsfixer.
//
// # Key Functions
//
// Change Notification:
//   - Notifier: Coalescing fan-out signal for state-change subscriptions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: Display-width truncation (Hangul and other wide runes)
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	n := util.NewNotifier()
//	ch, cancel := n.Subscribe()
//	defer cancel()
//	go func() { n.Notify() }()
//	<-ch // something changed; read a fresh snapshot
package util
