// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	core "github.com/jeranaias/friendsfixer-tui/internal/chat"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/monitor"
	"github.com/jeranaias/friendsfixer-tui/internal/ui/styles"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Options configures the chat view.
type Options struct {
	Session *core.Session
	Monitor *monitor.Monitor

	// ServerURL is shown in the header.
	ServerURL string

	// Theme is "auto", "dark" or "light".
	Theme string

	// ShowHints renders hint lists under assistant replies.
	ShowHints bool

	// ShowTiming renders the processing time / model footer.
	ShowTiming bool

	// PlainText disables markdown rendering of replies.
	PlainText bool

	// NoColor renders replies with glamour's uncoloured style.
	NoColor bool

	// Context bounds the monitor and every submission. Defaults to Background.
	Context context.Context

	Logger *zap.Logger
}

// layout rows outside the viewport: header, status bar, input (with border)
const chromeHeight = 4

// glamour's standard style without colours
const noColorMarkdownStyle = "notty"

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	session *core.Session
	monitor *monitor.Monitor
	opts    Options
	ctx     context.Context
	logger  *zap.Logger

	theme    *styles.Theme
	keys     KeyMap
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	statusSub    <-chan struct{}
	statusUnsub  func()
	sessionSub   <-chan struct{}
	sessionUnsub func()

	status     model.ConnectionStatus
	snap       core.Snapshot
	notice     string
	promptNext int

	width, height int
	sized         bool
	quitting      bool
}

// New creates the chat view. Subscriptions are taken immediately so no
// change between New and the first Update is missed.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	theme := styles.NewTheme(opts.Theme)

	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.StatusLoading),
	)

	m := Model{
		session: opts.Session,
		monitor: opts.Monitor,
		opts:    opts,
		ctx:     ctx,
		logger:  logger.Named("tui"),
		theme:   theme,
		keys:    DefaultKeyMap(),
		input:   input,
		spinner: sp,
		status:  opts.Monitor.Status(),
		snap:    opts.Session.Snapshot(),
	}
	m.statusSub, m.statusUnsub = opts.Monitor.Subscribe()
	m.sessionSub, m.sessionUnsub = opts.Session.Subscribe()
	m.viewport = viewport.New(80, 20)
	m.updatePlaceholder()
	return m
}

// Init starts health polling and the signal listeners.
func (m Model) Init() tea.Cmd {
	m.monitor.Start(m.ctx)
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.listenStatus(),
		m.listenSession(),
	)
}

func (m Model) listenStatus() tea.Cmd {
	mon := m.monitor
	return waitForSignal(m.statusSub, func() tea.Msg {
		return StatusChangedMsg{Snapshot: mon.Snapshot()}
	})
}

func (m Model) listenSession() tea.Cmd {
	sess := m.session
	return waitForSignal(m.sessionSub, func() tea.Msg {
		return SessionChangedMsg{Snapshot: sess.Snapshot()}
	})
}

// Shutdown cancels in-flight work and stops polling. Safe to call twice.
func (m *Model) Shutdown() {
	if m.quitting {
		return
	}
	m.quitting = true
	m.statusUnsub()
	m.sessionUnsub()
	m.session.Close()
	m.monitor.Stop()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Shutdown()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			return m.submit()

		case key.Matches(msg, m.keys.Retry):
			m.notice = "Checking connection..."
			mon, ctx := m.monitor, m.ctx
			return m, func() tea.Msg {
				return RetryDoneMsg{Status: mon.RetryNow(ctx)}
			}

		case key.Matches(msg, m.keys.QuickPrompt):
			m.input.SetValue(core.QuickPrompts[m.promptNext%len(core.QuickPrompts)])
			m.input.CursorEnd()
			m.promptNext++
			return m, nil

		case key.Matches(msg, m.keys.PageUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, m.keys.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		}

	case StatusChangedMsg:
		m.status = msg.Snapshot.Status
		if m.status.IsReady() {
			m.notice = ""
		}
		m.updatePlaceholder()
		return m, m.listenStatus()

	case SessionChangedMsg:
		m.snap = msg.Snapshot
		m.refreshViewport()
		m.updatePlaceholder()
		return m, m.listenSession()

	case ReplyMsg:
		if msg.Message.Role == model.RoleError {
			m.logger.Debug("reply failed", zap.String("content", msg.Message.Content))
		}
		return m, nil

	case RetryDoneMsg:
		m.status = msg.Status
		m.notice = "Connection: " + msg.Status.DisplayName()
		m.updatePlaceholder()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit hands the draft to the session. Rejected drafts stay in the input
// and the reason goes to the status bar.
func (m Model) submit() (tea.Model, tea.Cmd) {
	draft := m.input.Value()
	if _, ok := core.ValidateDraft(draft); !ok {
		return m, nil
	}

	ch, ok := m.session.Submit(m.ctx, draft)
	if !ok {
		m.notice = m.rejectReason()
		return m, nil
	}

	m.notice = ""
	m.input.Reset()
	m.updatePlaceholder()
	return m, waitForReply(ch)
}

func (m Model) rejectReason() string {
	switch {
	case m.session.Pending():
		return "Kong is still answering your last message"
	case !m.monitor.Status().IsReady():
		return "Not connected (" + m.monitor.Status().DisplayName() + "). Press ctrl+r to retry."
	default:
		return "Message not sent"
	}
}

func (m *Model) updatePlaceholder() {
	switch {
	case m.session.CanSubmit():
		m.input.Placeholder = "Type a sentence for Kong to fix..."
	case m.session.Pending():
		m.input.Placeholder = "Kong is thinking..."
	default:
		m.input.Placeholder = "Waiting for the correction service..."
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	vh := height - chromeHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.input.Width = width - 4

	if !m.opts.PlainText {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.glamourStyle()),
			glamour.WithWordWrap(m.bubbleWidth()-4),
		)
		if err != nil {
			m.logger.Warn("markdown renderer unavailable", zap.Error(err))
			r = nil
		}
		m.renderer = r
	}

	m.sized = true
	m.refreshViewport()
}

func (m Model) glamourStyle() string {
	if m.opts.NoColor {
		return noColorMarkdownStyle
	}
	return m.theme.GlamourStyle()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
