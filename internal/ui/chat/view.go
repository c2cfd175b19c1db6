// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/ui/styles"
	"github.com/jeranaias/friendsfixer-tui/internal/util"
)

// View renders the chat view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatusBar(),
		m.theme.InputContainer.Width(m.width).Render(m.input.View()),
	)
}

// =============================================================================
// HEADER / STATUS BAR
// =============================================================================

func (m Model) renderHeader() string {
	const title = "FriendsFixer"
	line := m.theme.HeaderTitle.Render(title)
	// narrow terminals drop the URL
	if m.opts.ServerURL != "" && m.theme.GetLayoutMode() != styles.LayoutNarrow {
		line += "  " + util.TruncateWidth(m.opts.ServerURL, m.width-len(title)-4)
	}
	return m.theme.Header.Width(m.width).MaxWidth(m.width).Render(line)
}

func (m Model) renderStatusBar() string {
	parts := []string{m.theme.RenderStatus(m.status)}
	if m.snap.Pending {
		parts = append(parts, m.spinner.View()+" Kong is thinking...")
	}
	if m.notice != "" {
		parts = append(parts, m.theme.Notice.Render(m.notice))
	}

	left := strings.Join(parts, "  ")
	help := m.theme.Help.Render(m.keys.ShortHelp())

	// styled text carries escape codes, so measure with lipgloss
	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(help)
	line := left
	if gap >= 2 {
		line = left + strings.Repeat(" ", gap) + help
	}
	return m.theme.StatusBar.Width(m.width).MaxWidth(m.width).Render(line)
}

// =============================================================================
// HISTORY
// =============================================================================

func (m Model) bubbleWidth() int {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return w
}

// renderHistory renders every message in the latest session snapshot.
// Quick prompts are offered until the user has sent something.
func (m Model) renderHistory() string {
	var b strings.Builder
	for _, msg := range m.snap.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.snap.Submitted == 0 {
		b.WriteString(m.theme.Help.Render("Try one (tab):"))
		b.WriteString("\n")
		for i, p := range quickPrompts() {
			b.WriteString(m.theme.QuickPrompt.Render("  " + string(rune('1'+i)) + ". " + p))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderMessage(msg model.Message) string {
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName() + "  " + formatTimestamp(msg.CreatedAt))
	width := m.bubbleWidth()

	var body string
	switch msg.Role {
	case model.RoleUser:
		body = m.theme.UserBubble.Width(width).Render(msg.Content)
	case model.RoleError:
		body = m.theme.ErrorBubble.Width(width).Render(msg.Content)
	default:
		content := m.renderMarkdown(msg.Content)
		if m.opts.ShowHints && msg.HasHints() {
			hints := make([]string, 0, len(msg.Hints))
			for _, h := range msg.Hints {
				hints = append(hints, m.theme.RenderHint(h))
			}
			content += "\n\n" + strings.Join(hints, "\n")
		}
		if m.opts.ShowTiming {
			if stats := msg.FormatStats(); stats != "" {
				content += "\n" + m.theme.Stats.Render(stats)
			}
		}
		body = m.theme.AssistantBubble.Width(width).Render(content)
	}
	return label + "\n" + body
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}
