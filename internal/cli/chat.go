// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/friendsfixer-tui/internal/chat"
	"github.com/jeranaias/friendsfixer-tui/internal/config"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/monitor"
	"github.com/jeranaias/friendsfixer-tui/internal/util"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-mode chat with input history",
		Long: `Line-mode chat. Type a sentence and Kong replies with a correction.

Slash commands:
  /retry      check the connection now
  /status     show connection status
  /history    print the conversation so far
  /try N      send quick prompt N
  /help       list commands
  /quit       leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, a)
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input after showing prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line and records non-empty input in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// scanReader reads lines from a non-terminal input.
type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (s *scanReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

// =============================================================================
// REPL
// =============================================================================

func runChat(cmd *cobra.Command, a *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, mon, sess := a.newCore()
	defer mon.Stop()
	defer sess.Close()

	var in lineReader
	if IsTTY() {
		cli := NewChatCLI()
		defer cli.Close()
		in = cli
	} else {
		in = &scanReader{scanner: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	}

	r := &repl{
		in:         in,
		out:        cmd.OutOrStdout(),
		sess:       sess,
		mon:        mon,
		serverURL:  client.BaseURL(),
		showHints:  a.cfg.Chat.ShowHints,
		showTiming: a.cfg.UI.ShowTiming,
		logger:     a.logger,
	}
	return r.run(ctx)
}

// repl drives one line-mode conversation.
type repl struct {
	in         lineReader
	out        io.Writer
	sess       *chat.Session
	mon        *monitor.Monitor
	serverURL  string
	showHints  bool
	showTiming bool
	logger     *zap.Logger
}

func (r *repl) run(ctx context.Context) error {
	// one synchronous check so the banner shows a real status
	r.mon.RetryNow(ctx)
	r.mon.Start(ctx)

	titleColor.Fprintln(r.out, "FriendsFixer")
	fmt.Fprintf(r.out, "%s %s\n", labelColor.Sprint("Server:"), r.serverURL)
	r.printStatus()
	fmt.Fprintln(r.out)

	for _, msg := range r.sess.History() {
		r.printMessage(msg)
	}
	r.printQuickPrompts()

	for {
		line, err := r.in.Prompt("you> ")
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				r.logger.Warn("input error", zap.Error(err))
			}
			fmt.Fprintln(r.out)
			r.printSummary()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if !r.handleCommand(ctx, line) {
				r.printSummary()
				return nil
			}
			continue
		}

		r.send(ctx, line)
		if ctx.Err() != nil {
			r.printSummary()
			return nil
		}
	}
}

// send submits one draft and waits for its result.
func (r *repl) send(ctx context.Context, text string) {
	ch, ok := r.sess.Submit(ctx, text)
	if !ok {
		status := r.mon.Status()
		if !status.IsReady() {
			warnColor.Fprintf(r.out, "Not connected (%s). Type /retry to check again.\n", status.DisplayName())
		} else {
			warnColor.Fprintln(r.out, "Still waiting for the previous reply.")
		}
		return
	}

	mutedColor.Fprintln(r.out, "Kong is thinking...")
	if msg, ok := <-ch; ok {
		r.printMessage(msg)
	}
}

// handleCommand runs a slash command. Returns false to leave the REPL.
func (r *repl) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return false

	case "/retry":
		status := r.mon.RetryNow(ctx)
		fmt.Fprintf(r.out, "%s %s\n", labelColor.Sprint("Connection:"), colorStatus(status))

	case "/status":
		r.printStatus()

	case "/history":
		r.printHistory()

	case "/try":
		n := 0
		if len(fields) > 1 {
			n, _ = strconv.Atoi(fields[1])
		}
		if n < 1 || n > len(chat.QuickPrompts) {
			warnColor.Fprintf(r.out, "Usage: /try 1-%d\n", len(chat.QuickPrompts))
			return true
		}
		prompt := chat.QuickPrompts[n-1]
		fmt.Fprintf(r.out, "%s %s\n", userColor.Sprint("You:"), prompt)
		r.send(ctx, prompt)

	case "/help":
		fmt.Fprintln(r.out, "/retry  /status  /history  /try N  /help  /quit")

	default:
		warnColor.Fprintf(r.out, "Unknown command %s (try /help)\n", fields[0])
	}
	return true
}

// =============================================================================
// OUTPUT
// =============================================================================

func colorStatus(status model.ConnectionStatus) string {
	label := status.DisplayName()
	switch status {
	case model.StatusReady:
		return successColor.Sprint(label)
	case model.StatusLoading:
		return warnColor.Sprint(label)
	case model.StatusError:
		return errorColor.Sprint(label)
	default:
		return mutedColor.Sprint(label)
	}
}

func (r *repl) printStatus() {
	snap := r.mon.Snapshot()
	fmt.Fprintf(r.out, "%s %s\n", labelColor.Sprint("Status:"), colorStatus(snap.Status))
	if r.mon.Running() {
		fmt.Fprintf(r.out, "%s every %s\n", labelColor.Sprint("Polling:"), r.mon.Interval())
	} else {
		fmt.Fprintf(r.out, "%s stopped\n", labelColor.Sprint("Polling:"))
	}
	if snap.Err != nil {
		fmt.Fprintf(r.out, "%s %v\n", labelColor.Sprint("Last error:"), snap.Err)
	}
	if snap.Health != nil && len(snap.Health.Files) > 0 {
		keys := make([]string, 0, len(snap.Health.Files))
		for k := range snap.Health.Files {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(r.out, "  %s %v\n", labelColor.Sprint(k+":"), snap.Health.Files[k])
		}
	}
}

func (r *repl) printQuickPrompts() {
	mutedColor.Fprintln(r.out, "Try one with /try N:")
	for i, p := range chat.QuickPrompts {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, hintColor.Sprint(p))
	}
	fmt.Fprintln(r.out)
}

func (r *repl) printMessage(msg model.Message) {
	switch msg.Role {
	case model.RoleUser:
		return
	case model.RoleError:
		fmt.Fprintf(r.out, "%s %s\n\n", errorColor.Sprint("[X]"), msg.Content)
		return
	}

	fmt.Fprintf(r.out, "%s %s\n", kongColor.Sprint("Kong:"), msg.Content)
	if r.showHints {
		for _, h := range msg.Hints {
			fmt.Fprintf(r.out, "  %s %s\n", hintColor.Sprint("*"), hintColor.Sprint(h.String()))
		}
	}
	if r.showTiming {
		if stats := msg.FormatStats(); stats != "" {
			mutedColor.Fprintln(r.out, "  "+stats)
		}
	}
	fmt.Fprintln(r.out)
}

// historyPreviewLen caps each /history line, in runes.
const historyPreviewLen = 72

// printHistory lists the conversation one line per message.
func (r *repl) printHistory() {
	for _, msg := range r.sess.History() {
		line := util.TruncateRunes(util.FirstLine(msg.Content), historyPreviewLen)
		switch msg.Role {
		case model.RoleUser:
			fmt.Fprintf(r.out, "%s %s\n", userColor.Sprint("You:"), line)
		case model.RoleError:
			fmt.Fprintf(r.out, "%s %s\n", errorColor.Sprint("[X]"), line)
		default:
			fmt.Fprintf(r.out, "%s %s\n", kongColor.Sprint("Kong:"), line)
		}
	}
}

func (r *repl) printSummary() {
	snap := r.sess.Snapshot()
	mutedColor.Fprintf(r.out, "Sent %d, failed %d. Bye!\n", snap.Submitted, snap.Failed)
}
