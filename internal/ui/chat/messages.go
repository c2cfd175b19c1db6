// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/friendsfixer-tui/internal/chat"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/monitor"
)

// =============================================================================
// CORE -> UI MESSAGES
// =============================================================================

// StatusChangedMsg carries a monitor snapshot after a change signal.
type StatusChangedMsg struct {
	Snapshot monitor.Snapshot
}

// SessionChangedMsg carries a session snapshot after a change signal.
type SessionChangedMsg struct {
	Snapshot core.Snapshot
}

// ReplyMsg delivers the result of one accepted submission.
type ReplyMsg struct {
	Message model.Message
}

// RetryDoneMsg reports the status after a manual retry.
type RetryDoneMsg struct {
	Status model.ConnectionStatus
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForSignal blocks on a notifier subscription and converts the next
// signal into a message. A closed channel ends the listen loop.
func waitForSignal(ch <-chan struct{}, build func() tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return build()
	}
}

// waitForReply waits for the single result of a submission.
func waitForReply(ch <-chan model.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return ReplyMsg{Message: msg}
	}
}
