// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/friendsfixer-tui/internal/model"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER / STATUS BAR
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	Notice      lipgloss.Style

	StatusReady    lipgloss.Style
	StatusLoading  lipgloss.Style
	StatusChecking lipgloss.Style
	StatusError    lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	Hint            lipgloss.Style
	HintWhy         lipgloss.Style
	Stats           lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	QuickPrompt    lipgloss.Style
	Help           lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light").
// Unknown modes behave like "auto". Forcing a mode also pins lipgloss's
// background detection so AdaptiveColor agrees with the theme.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Notice = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.StatusReady = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusLoading = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusChecking = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(ErrorBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Hint = lipgloss.NewStyle().Foreground(Cyan)
	t.HintWhy = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Stats = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.QuickPrompt = lipgloss.NewStyle().Foreground(Cyan)
	t.Help = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)

// GlamourStyle returns the glamour standard style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return ModeDark
	}
	return ModeLight
}

// =============================================================================
// STATUS RENDERING
// =============================================================================

// StatusStyle returns the style for a connection status.
func (t *Theme) StatusStyle(status model.ConnectionStatus) lipgloss.Style {
	switch status {
	case model.StatusReady:
		return t.StatusReady
	case model.StatusLoading:
		return t.StatusLoading
	case model.StatusError:
		return t.StatusError
	default:
		return t.StatusChecking
	}
}

// StatusIndicator returns the ASCII shape shown next to a status.
func StatusIndicator(status model.ConnectionStatus) string {
	switch status {
	case model.StatusReady:
		return StatusIndicators.Success
	case model.StatusLoading:
		return StatusIndicators.Warning
	case model.StatusError:
		return StatusIndicators.Error
	default:
		return StatusIndicators.Pending
	}
}

// RenderStatus renders "[OK] Ready" style text for a status.
func (t *Theme) RenderStatus(status model.ConnectionStatus) string {
	return t.StatusStyle(status).Render(StatusIndicator(status) + " " + status.DisplayName())
}

// RenderHint renders one hint as "konglish -> natural (why)".
func (t *Theme) RenderHint(h model.Hint) string {
	line := t.Hint.Render("  * " + h.String())
	if h.Why != "" {
		line += " " + t.HintWhy.Render("("+h.Why+")")
	}
	return line
}
