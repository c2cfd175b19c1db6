// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
	color.NoColor = !ColorsEnabled()
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.FgHiBlack)
	userColor    = color.New(color.FgGreen, color.Bold)
	kongColor    = color.New(color.FgMagenta, color.Bold)
	hintColor    = color.New(color.FgCyan)
	mutedColor   = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)
