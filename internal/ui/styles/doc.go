// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the friendsfixer TUI.

# Color System (colors.go)

All colors use Lip Gloss AdaptiveColor so they follow the terminal
background:

	Purple  - Header, assistant bubbles
	Cyan    - User bubbles, quick prompts
	Emerald - Ready status
	Amber   - Loading status, notices
	Rose    - Disconnected status, failed requests

Status text always carries an ASCII indicator ([OK], [X], [!], [ ]) so it
reads without color.

# Theme System (theme.go)

A Theme is built once per program from the ui.theme setting:

	theme := styles.NewTheme("auto") // or "dark", "light"
	bar := theme.RenderStatus(model.StatusReady)

"auto" asks termenv whether the background is dark. The chosen mode is
also handed to glamour through GlamourStyle so rendered replies match.
*/
package styles
