// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// ConnectionStatus describes whether the correction service can take requests.
type ConnectionStatus string

const (
	// StatusChecking is the initial state before any health result arrives.
	StatusChecking ConnectionStatus = "checking"
	// StatusReady means the service is reachable and its model is loaded.
	StatusReady ConnectionStatus = "ready"
	// StatusLoading means the service is reachable but still loading its model.
	StatusLoading ConnectionStatus = "loading"
	// StatusError means the service is unreachable or answered non-2xx.
	StatusError ConnectionStatus = "error"
)

// String returns the string representation of the status.
func (s ConnectionStatus) String() string {
	return string(s)
}

// IsReady reports whether submissions are allowed.
func (s ConnectionStatus) IsReady() bool {
	return s == StatusReady
}

// DisplayName returns a human-readable label for status bars.
func (s ConnectionStatus) DisplayName() string {
	switch s {
	case StatusChecking:
		return "Checking..."
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading model"
	case StatusError:
		return "Disconnected"
	default:
		return string(s)
	}
}
