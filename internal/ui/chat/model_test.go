// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/friendsfixer-tui/internal/chat"
	"github.com/jeranaias/friendsfixer-tui/internal/fixer"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/monitor"
	"github.com/jeranaias/friendsfixer-tui/internal/stub"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type harness struct {
	stub    *stub.Server
	monitor *monitor.Monitor
	session *core.Session
}

func newHarness(t *testing.T, showHints bool) *harness {
	t.Helper()
	return newHarnessWith(t, stub.Config{}, showHints)
}

func newHarnessWith(t *testing.T, cfg stub.Config, showHints bool) *harness {
	t.Helper()
	s := stub.New(cfg)
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)

	client := fixer.NewClientWithConfig(&fixer.ClientConfig{BaseURL: server.URL, ShowHints: showHints})
	mon := monitor.New(client, monitor.Config{PollInterval: time.Hour})
	sess := core.New(client, mon, core.Config{ServerURL: server.URL})
	t.Cleanup(func() {
		sess.Close()
		mon.Stop()
	})
	return &harness{stub: s, monitor: mon, session: sess}
}

func (h *harness) model(opts Options) Model {
	opts.Session = h.session
	opts.Monitor = h.monitor
	opts.PlainText = true
	if opts.Theme == "" {
		opts.Theme = "dark"
	}
	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func makeReady(t *testing.T, h *harness, m Model) Model {
	t.Helper()
	if got := h.monitor.RetryNow(context.Background()); got != model.StatusReady {
		t.Fatalf("RetryNow() = %v, want ready", got)
	}
	m, _ = update(t, m, StatusChangedMsg{Snapshot: h.monitor.Snapshot()})
	return m
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestView_Initial(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{ServerURL: "http://127.0.0.1:8000"})

	view := m.View()
	if !strings.Contains(view, "FriendsFixer") {
		t.Error("View() should contain the title")
	}
	if !strings.Contains(view, "Checking...") {
		t.Errorf("View() should show checking status, got:\n%s", view)
	}

	history := m.renderHistory()
	if !strings.Contains(history, "Yo! Kong here!") {
		t.Error("history should start with the greeting")
	}
	for _, p := range core.QuickPrompts {
		if !strings.Contains(history, p) {
			t.Errorf("history should offer quick prompt %q", p)
		}
	}
}

func TestGlamourStyle_NoColor(t *testing.T) {
	h := newHarness(t, false)
	if got := h.model(Options{Theme: "light"}).glamourStyle(); got != "light" {
		t.Errorf("glamourStyle() = %q, want light", got)
	}
	if got := h.model(Options{Theme: "light", NoColor: true}).glamourStyle(); got != "notty" {
		t.Errorf("glamourStyle() with NoColor = %q, want notty", got)
	}
}

func TestHeader_NarrowDropsURL(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{ServerURL: "http://127.0.0.1:8000"})
	if !strings.Contains(m.renderHeader(), "127.0.0.1") {
		t.Error("wide header should show the server URL")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 30})
	header := m.renderHeader()
	if strings.Contains(header, "127.0.0.1") {
		t.Errorf("narrow header should drop the URL, got %q", header)
	}
	if !strings.Contains(header, "FriendsFixer") {
		t.Error("narrow header should keep the title")
	}
}

func TestView_BeforeSize(t *testing.T) {
	h := newHarness(t, false)
	m := New(Options{Session: h.session, Monitor: h.monitor, PlainText: true})
	if m.View() != "Loading..." {
		t.Errorf("View() before resize = %q", m.View())
	}
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_RejectedWhileChecking(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{})

	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("rejected submit should not return a command")
	}
	if !strings.Contains(m.notice, "Not connected") {
		t.Errorf("notice = %q, want a not-connected notice", m.notice)
	}
	if m.input.Value() != "hello" {
		t.Errorf("draft should stay in the input, got %q", m.input.Value())
	}
	if got := len(h.session.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestSubmit_EmptyDraftIgnored(t *testing.T) {
	h := newHarness(t, false)
	m := makeReady(t, h, h.model(Options{}))

	m = typeText(t, m, "   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("whitespace draft should not be submitted")
	}
	if m.notice != "" {
		t.Errorf("notice = %q, want none", m.notice)
	}
}

func TestSubmit_RoundTrip(t *testing.T) {
	h := newHarness(t, true)
	m := makeReady(t, h, h.model(Options{ShowHints: true, ShowTiming: true}))

	m = typeText(t, m, "I want to go open car driving")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("accepted submit should return a reply command")
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}

	reply, ok := cmd().(ReplyMsg)
	if !ok {
		t.Fatal("reply command should produce ReplyMsg")
	}
	if reply.Message.Role != model.RoleAssistant {
		t.Fatalf("reply role = %v, content %q", reply.Message.Role, reply.Message.Content)
	}

	m, _ = update(t, m, reply)
	m, _ = update(t, m, SessionChangedMsg{Snapshot: h.session.Snapshot()})

	history := m.renderHistory()
	if !strings.Contains(history, "I want to go open car driving") {
		t.Error("history should contain the user message")
	}
	if !strings.Contains(history, "convertible") {
		t.Error("history should contain the correction")
	}
	if !strings.Contains(history, "open car -> convertible") {
		t.Error("history should render hints")
	}
	if !strings.Contains(history, stub.ModelName) {
		t.Error("history should render the timing footer")
	}
	if strings.Contains(history, "Try one") {
		t.Error("quick prompts should be hidden after the first submit")
	}
}

func TestSubmit_ServiceErrorRendered(t *testing.T) {
	h := newHarness(t, false)
	h.stub.SetFailure("model overloaded")
	m := makeReady(t, h, h.model(Options{}))

	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	reply := cmd().(ReplyMsg)
	if reply.Message.Role != model.RoleError {
		t.Fatalf("reply role = %v, want error", reply.Message.Role)
	}

	m, _ = update(t, m, SessionChangedMsg{Snapshot: h.session.Snapshot()})
	if !strings.Contains(m.renderHistory(), "model overloaded") {
		t.Error("history should show the service detail")
	}
	if m.status != model.StatusReady {
		t.Errorf("status = %v, a failed request must not change it", m.status)
	}
}

// =============================================================================
// KEY TESTS
// =============================================================================

func TestQuickPromptKey(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.input.Value() != core.QuickPrompts[0] {
		t.Errorf("input = %q, want first quick prompt", m.input.Value())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.input.Value() != core.QuickPrompts[1] {
		t.Errorf("input = %q, want second quick prompt", m.input.Value())
	}
}

func TestRetryKey(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.notice != "Checking connection..." {
		t.Errorf("notice = %q", m.notice)
	}
	done, ok := cmd().(RetryDoneMsg)
	if !ok {
		t.Fatal("retry command should produce RetryDoneMsg")
	}
	m, _ = update(t, m, done)
	if m.status != model.StatusReady {
		t.Errorf("status = %v, want ready", m.status)
	}
	if m.notice != "Connection: Ready" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestQuitKey(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{})
	h.monitor.Start(context.Background())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce QuitMsg")
	}
	if h.monitor.Running() {
		t.Error("monitor should be stopped")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
	// Second shutdown is a no-op
	m.Shutdown()
}

func TestStatusChangedClearsNotice(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{})
	m.notice = "Not connected"

	h.monitor.RetryNow(context.Background())
	m, cmd := update(t, m, StatusChangedMsg{Snapshot: h.monitor.Snapshot()})
	if m.notice != "" {
		t.Errorf("notice = %q, want cleared", m.notice)
	}
	if cmd == nil {
		t.Error("status listener should be re-armed")
	}
	if !strings.Contains(m.input.Placeholder, "Kong") {
		t.Errorf("placeholder = %q", m.input.Placeholder)
	}
}

func TestPlaceholder_FollowsSession(t *testing.T) {
	h := newHarnessWith(t, stub.Config{Latency: 5 * time.Second}, false)
	m := h.model(Options{})
	if !strings.Contains(m.input.Placeholder, "Waiting") {
		t.Errorf("placeholder while checking = %q", m.input.Placeholder)
	}

	m = makeReady(t, h, m)
	if !strings.Contains(m.input.Placeholder, "sentence") {
		t.Errorf("placeholder when ready = %q", m.input.Placeholder)
	}

	m = typeText(t, m, "hello")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("accepted submit should wait for the reply")
	}
	if !strings.Contains(m.input.Placeholder, "thinking") {
		t.Errorf("placeholder while pending = %q", m.input.Placeholder)
	}
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestWaitForSignal(t *testing.T) {
	if waitForSignal(nil, nil) != nil {
		t.Error("nil channel should give nil command")
	}

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	cmd := waitForSignal(ch, func() tea.Msg { return RetryDoneMsg{Status: model.StatusLoading} })
	if got, ok := cmd().(RetryDoneMsg); !ok || got.Status != model.StatusLoading {
		t.Errorf("cmd() = %v", got)
	}

	close(ch)
	if msg := cmd(); msg != nil {
		t.Errorf("closed channel should give nil message, got %v", msg)
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	help := DefaultKeyMap().ShortHelp()
	for _, want := range []string{"enter send", "C-r retry", "C-c quit"} {
		if !strings.Contains(help, want) {
			t.Errorf("ShortHelp() = %q, missing %q", help, want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Now()
	if got := formatTimestamp(now); got != now.Format("15:04") {
		t.Errorf("formatTimestamp(now) = %q", got)
	}
	old := now.AddDate(0, -2, 0)
	if got := formatTimestamp(old); got != old.Format("Jan 2 15:04") {
		t.Errorf("formatTimestamp(old) = %q", got)
	}
}
