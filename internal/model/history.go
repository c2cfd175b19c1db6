// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// History is the append-only, ordered message log of one chat session.
// Insertion order is display order. History is not safe for concurrent use;
// the owning session serializes access.
type History struct {
	messages []Message
}

// NewHistory creates a history seeded with the given messages, typically the
// assistant greeting.
func NewHistory(seed ...Message) *History {
	h := &History{messages: make([]Message, 0, len(seed)+8)}
	for _, msg := range seed {
		h.Append(msg)
	}
	return h
}

// Append adds a message to the end of the history.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg.Clone())
}

// Messages returns a copy of all messages in order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	for i, msg := range h.messages {
		out[i] = msg.Clone()
	}
	return out
}
