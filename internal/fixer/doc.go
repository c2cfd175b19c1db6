// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fixer provides the HTTP client for the FriendsFixer correction service.
//
// The client is a thin, stateless transport wrapper. It issues the health
// check and the chat (correction) request with bounded timeouts and turns
// every failure into a *ClientError. It never retries; retry policy belongs
// to the callers.
//
// # Key Types
//
//   - Client: HTTP client for the correction service
//   - HealthResponse: Decoded GET /health payload
//   - ChatResponse: Decoded POST /api/v1/chat payload with optional hints
//   - ClientError: Typed failure (transport, timeout, service, invalid response)
//
// # Usage
//
//	client := fixer.NewClient("http://127.0.0.1:8000")
//	health, err := client.Health(ctx)
//	if err == nil && health.Ready {
//	    resp, err := client.SendMessage(ctx, "Let's grab coffee")
//	    if fixer.IsService(err) {
//	        // server rejected the request; err.Error() carries its detail text
//	    }
//	    fmt.Println(resp.Response)
//	}
package fixer
