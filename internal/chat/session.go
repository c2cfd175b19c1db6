// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/friendsfixer-tui/internal/fixer"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/util"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// DefaultGreeting is the assistant message every session starts with.
const DefaultGreeting = "Yo! Kong here! Send me any text and I'll crush it into perfect English! Let's dominate those language skills!"

// QuickPrompts are sample sentences offered to new users.
var QuickPrompts = []string{
	"Let's grab coffee sometime",
	"I'm working on a new project",
	"What's your thoughts on this?",
	"I need some help with English",
}

// Sender sends one correction request.
type Sender interface {
	SendMessage(ctx context.Context, text string) (*fixer.ChatResponse, error)
}

// StatusReader reports the current connection status.
type StatusReader interface {
	Status() model.ConnectionStatus
}

// Config holds configuration for a session.
type Config struct {
	// Greeting seeds the history. Empty uses DefaultGreeting.
	Greeting string

	// ServerURL is quoted in error messages so users know what failed.
	ServerURL string

	Logger *zap.Logger
}

// =============================================================================
// SESSION
// =============================================================================

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	ID        string
	Messages  []model.Message
	Pending   bool
	Submitted int // accepted drafts
	Failed    int // accepted drafts that ended in an error message
}

// Session is one chat conversation with the correction service.
// All methods are safe for concurrent use.
type Session struct {
	id        string
	sender    Sender
	status    StatusReader
	serverURL string
	logger    *zap.Logger
	notifier  *util.Notifier

	mu        sync.Mutex
	history   *model.History
	pending   bool
	submitted int
	failed    int
	cancel    context.CancelFunc // cancels the in-flight request
	closed    bool

	inFlight sync.WaitGroup
}

// New creates a session whose history holds only the greeting.
func New(sender Sender, status StatusReader, cfg Config) *Session {
	greeting := strings.TrimSpace(cfg.Greeting)
	if greeting == "" {
		greeting = DefaultGreeting
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.New().String()
	return &Session{
		id:        id,
		sender:    sender,
		status:    status,
		serverURL: cfg.ServerURL,
		logger:    logger.Named("chat").With(zap.String("session", id)),
		notifier:  util.NewNotifier(),
		history:   model.NewHistory(model.NewAssistantMessage(greeting, nil)),
	}
}

// ValidateDraft trims text and reports whether anything is left to send.
func ValidateDraft(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns a copy of the messages in display order.
func (s *Session) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Messages()
}

// Pending reports whether a request is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// CanSubmit reports whether a non-empty draft would be accepted right now.
func (s *Session) CanSubmit() bool {
	if !s.status.Status().IsReady() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.pending && !s.closed
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.id,
		Messages:  s.history.Messages(),
		Pending:   s.pending,
		Submitted: s.submitted,
		Failed:    s.failed,
	}
}

// Subscribe returns a channel signalled whenever history or pending changes.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	return s.notifier.Subscribe()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit sends text to the service.
//
// It returns (nil, false) without side effects when the trimmed text is
// empty, a request is already pending, the service is not ready, or the
// session is closed. Otherwise the user message is appended immediately and
// the returned channel delivers the single result message once the request
// completes, then closes.
func (s *Session) Submit(ctx context.Context, text string) (<-chan model.Message, bool) {
	trimmed, ok := ValidateDraft(text)
	if !ok {
		return nil, false
	}
	if st := s.status.Status(); !st.IsReady() {
		s.logger.Debug("submit rejected", zap.Stringer("status", st))
		return nil, false
	}

	s.mu.Lock()
	if s.pending || s.closed {
		s.mu.Unlock()
		return nil, false
	}
	s.pending = true
	s.submitted++
	s.history.Append(model.NewUserMessage(trimmed))

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inFlight.Add(1)
	s.mu.Unlock()

	s.notifier.Notify()

	result := make(chan model.Message, 1)
	go s.exchange(reqCtx, cancel, trimmed, result)
	return result, true
}

func (s *Session) exchange(ctx context.Context, cancel context.CancelFunc, text string, result chan<- model.Message) {
	defer s.inFlight.Done()
	defer cancel()

	resp, err := s.sender.SendMessage(ctx, text)

	var msg model.Message
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		s.logger.Warn("chat request failed", zap.Error(err))
		msg = model.NewErrorMessage(s.describeError(err))
	} else {
		msg = assistantMessage(resp)
	}

	s.mu.Lock()
	s.history.Append(msg)
	s.pending = false
	s.cancel = nil
	if msg.Role == model.RoleError {
		s.failed++
	}
	s.mu.Unlock()

	s.notifier.Notify()

	result <- msg
	close(result)
}

func assistantMessage(resp *fixer.ChatResponse) model.Message {
	var hints []model.Hint
	for _, h := range resp.Hints {
		hints = append(hints, model.Hint{
			Konglish:   h.Konglish,
			Natural:    h.Natural,
			Why:        h.Why,
			Similarity: h.Similarity,
		})
	}

	msg := model.NewAssistantMessage(resp.Response, hints)
	if resp.ProcessingTime != nil {
		pt := *resp.ProcessingTime
		msg.ProcessingTime = &pt
	}
	msg.ModelUsed = resp.ModelUsed
	return msg
}

// describeError builds the user-facing error text. Service detail text is
// kept verbatim.
func (s *Session) describeError(err error) string {
	desc := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		desc = "request cancelled"
	case fixer.IsTimeout(err):
		desc = "request timed out"
	}

	text := fmt.Sprintf("Connection error: %s", desc)
	if s.serverURL != "" {
		text += fmt.Sprintf("\n\nServer: %s", s.serverURL)
	}
	return text
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Wait blocks until no request is in flight.
func (s *Session) Wait() {
	s.inFlight.Wait()
}

// Close rejects further submits, cancels any in-flight request and waits for
// it to record its result. Subscribers are released afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.inFlight.Wait()
	s.notifier.Close()
}
