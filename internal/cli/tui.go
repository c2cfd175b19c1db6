// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	uichat "github.com/jeranaias/friendsfixer-tui/internal/ui/chat"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}
}

// runTUI starts the Bubble Tea chat. Without a terminal it falls back to
// line mode so piped use still works.
func runTUI(cmd *cobra.Command, a *app) error {
	if !IsTTY() || !IsStdoutTTY() {
		return runChat(cmd, a)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	client, mon, sess := a.newCore()
	m := uichat.New(uichat.Options{
		Session:    sess,
		Monitor:    mon,
		ServerURL:  client.BaseURL(),
		Theme:      a.cfg.UI.Theme,
		ShowHints:  a.cfg.Chat.ShowHints,
		ShowTiming: a.cfg.UI.ShowTiming,
		NoColor:    !ColorsEnabled(),
		Context:    ctx,
		Logger:     a.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(uichat.Model); ok {
		fm.Shutdown()
	} else {
		sess.Close()
		mon.Stop()
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Shutting down...")
	}
	return nil
}
