// friendsfixer - terminal client for the FriendsFixer Konglish correction service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/jeranaias/friendsfixer-tui/internal/cli"

func main() {
	cli.Main()
}
