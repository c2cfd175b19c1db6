// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/friendsfixer-tui/internal/model"
)

type askOptions struct {
	json  bool
	plain bool
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [text]",
		Short: "Correct one sentence and print the reply",
		Long: `Sends one sentence to the correction service and prints Kong's reply.
With no arguments the text is read from stdin.

Examples:
  friendsfixer ask "My hand phone is broken"
  echo "Let's play pocket ball" | friendsfixer ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, a, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the reply as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "do not render markdown")
	return cmd
}

func runAsk(cmd *cobra.Command, a *app, opts askOptions, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 64<<10))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to correct")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, mon, sess := a.newCore()
	defer sess.Close()

	reply, err := askOnce(ctx, mon, sess, text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}
	if reply.Role == model.RoleError {
		return errors.New(reply.Content)
	}

	content := reply.Content
	if !opts.plain && IsStdoutTTY() {
		content = renderMarkdown(content)
	}
	fmt.Fprintln(out, content)
	if a.cfg.Chat.ShowHints {
		for _, h := range reply.Hints {
			fmt.Fprintf(out, "  %s %s\n", hintColor.Sprint("*"), h.String())
		}
	}
	if a.cfg.UI.ShowTiming {
		if stats := reply.FormatStats(); stats != "" {
			mutedColor.Fprintln(out, stats)
		}
	}
	return nil
}

// askOnce checks the connection once and, when ready, sends text and
// waits for the result.
func askOnce(ctx context.Context, mon statusChecker, sess submitter, text string) (model.Message, error) {
	if status := mon.RetryNow(ctx); !status.IsReady() {
		return model.Message{}, fmt.Errorf("service not ready: %s", status.DisplayName())
	}
	ch, ok := sess.Submit(ctx, text)
	if !ok {
		return model.Message{}, errors.New("message was not accepted")
	}
	return <-ch, nil
}

type statusChecker interface {
	RetryNow(ctx context.Context) model.ConnectionStatus
}

type submitter interface {
	Submit(ctx context.Context, text string) (<-chan model.Message, bool)
}

// renderMarkdown renders markdown for terminal display, falling back to
// the raw text when glamour is unavailable.
func renderMarkdown(content string) string {
	style := glamour.WithAutoStyle()
	if !ColorsEnabled() {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(GetTerminalWidth()-4),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}
