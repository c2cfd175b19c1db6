// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the correction chat.
//
// This package defines the core domain types shared by the connection
// monitor, the chat session, and the presentation layer.
//
// # Key Types
//
//   - ConnectionStatus: Reachability/readiness of the correction service
//   - Message: Single immutable chat entry with role, content and hints
//   - Hint: Konglish phrase paired with its natural alternative
//   - History: Append-only ordered message sequence
//   - Role: Message role enumeration (user, assistant, error)
//
// # Usage
//
// Seed a history with the greeting and append a user message:
//
//	h := model.NewHistory(model.NewAssistantMessage("Yo! Send me any text.", nil))
//	h.Append(model.NewUserMessage("Let's grab coffee"))
//	for _, msg := range h.Messages() {
//	    fmt.Println(msg.Role.DisplayName(), msg.Content)
//	}
package model
