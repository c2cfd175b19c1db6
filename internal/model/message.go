// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Kong"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// HINT TYPE
// =============================================================================

// Hint pairs a non-idiomatic (Konglish) phrase with a natural alternative.
type Hint struct {
	Konglish string `json:"konglish"`
	Natural  string `json:"natural"`

	// Optional retrieval details reported by the service.
	Why        string  `json:"why,omitempty"`
	Similarity float64 `json:"sim,omitempty"`
}

// String formats the hint as "konglish -> natural".
func (h Hint) String() string {
	return h.Konglish + " -> " + h.Natural
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the chat history.
// Messages are never modified after they are appended; use Clone when
// handing one to code that might.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Content
	Content string `json:"content"`

	// Alternative phrasing suggestions (assistant messages only)
	Hints []Hint `json:"hints,omitempty"`

	// Informational metrics reported by the service (assistant messages only)
	ProcessingTime *float64 `json:"processing_time,omitempty"` // seconds
	ModelUsed      string   `json:"model_used,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message. Empty hint lists are
// dropped so HasHints is the only check callers need.
func NewAssistantMessage(content string, hints []Hint) Message {
	msg := NewMessage(RoleAssistant, content)
	if len(hints) > 0 {
		msg.Hints = append([]Hint(nil), hints...)
	}
	return msg
}

// NewErrorMessage creates an error message describing a failed request.
func NewErrorMessage(content string) Message {
	return NewMessage(RoleError, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasHints returns true if the message carries at least one hint.
func (m Message) HasHints() bool {
	return len(m.Hints) > 0
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	c := m
	if m.Hints != nil {
		c.Hints = append([]Hint(nil), m.Hints...)
	}
	if m.ProcessingTime != nil {
		pt := *m.ProcessingTime
		c.ProcessingTime = &pt
	}
	return c
}

// FormatStats returns a short footer for assistant messages, for example
// "1.42s | qwen2.5-1.5b-friendsfixer". Returns "" when nothing was reported.
func (m Message) FormatStats() string {
	if m.Role != RoleAssistant {
		return ""
	}

	var parts []string
	if m.ProcessingTime != nil {
		parts = append(parts, fmt.Sprintf("%.2fs", *m.ProcessingTime))
	}
	if m.ModelUsed != "" {
		parts = append(parts, m.ModelUsed)
	}
	return strings.Join(parts, " | ")
}
