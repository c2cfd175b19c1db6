// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the chat session: the message history, the single
// in-flight request, and the rules for when a draft may be submitted.
//
// A draft is accepted only when its trimmed text is non-empty, no request is
// pending, and the connection status is ready. Rejected drafts leave no trace.
// Each accepted draft appends the user message at once and exactly one result
// (assistant reply or error) when the request completes.
package chat
