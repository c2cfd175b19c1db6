// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the terminal chat view for friendsfixer.

The Model is a Bubble Tea model that draws a chat.Session and a
monitor.Monitor. It owns no conversation state of its own: every frame is
rendered from the latest session and monitor snapshots, which arrive as
SessionChangedMsg and StatusChangedMsg whenever the core signals a change.

# Layout

	header      - title and service URL
	viewport    - message history (assistant replies rendered with glamour)
	status bar  - connection status, pending spinner, notices, key help
	input       - single-line draft input

# Keys

	Enter     submit the draft (ignored unless the service is ready)
	Tab       fill the input with the next quick prompt
	Ctrl+R    re-check the connection now
	PgUp/PgDn scroll history
	Ctrl+C    quit (cancels any in-flight request)
*/
package chat
