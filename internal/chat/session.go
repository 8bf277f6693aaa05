// Package chat runs the conversation: it owns the message list, the
// in-flight gate and the outstanding reveals, and persists every change.
package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/diogo/geminichat/internal/attachment"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
	"github.com/diogo/geminichat/internal/reveal"
)

// Store is the persistence the session writes through
type Store interface {
	SaveHistory(msgs []models.Message) error
	ClearHistory() error
	SaveTheme(t models.Theme) error
}

// Option configures a Session
type Option func(*Session)

// WithOnChange registers a callback run after every mutation with a copy of
// the message list. It runs without the session lock held.
func WithOnChange(fn func([]models.Message)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithClipboard replaces the system clipboard writer
func WithClipboard(write func(string) error) Option {
	return func(s *Session) {
		s.clip = write
	}
}

// WithLogger pins the session logger. Without it the current global logger
// is used on every call.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session is the single chat of the process
type Session struct {
	mu         sync.Mutex
	messages   []models.Message
	generating bool
	theme      models.Theme
	pending    *models.Attachment
	epoch      uint64
	reveals    map[*reveal.Reveal]struct{}

	store    Store
	onChange func([]models.Message)
	clip     func(string) error
	logger   *slog.Logger
}

func (s *Session) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return observability.WithFields("component", "chat")
}

// NewSession creates a session over previously loaded state
func NewSession(store Store, history []models.Message, theme models.Theme, opts ...Option) *Session {
	msgs := make([]models.Message, len(history))
	copy(msgs, history)

	s := &Session{
		messages: msgs,
		theme:    theme,
		reveals:  make(map[*reveal.Reveal]struct{}),
		store:    store,
		clip:     clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Messages returns a copy of the message list
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Message returns the message with id
func (s *Session) Message(id string) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.messages[i], true
	}
	return models.Message{}, false
}

// IsGenerating reports whether a response is in flight
func (s *Session) IsGenerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Theme returns the current theme
func (s *Session) Theme() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Epoch returns the current epoch. Clear increments it.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// PendingAttachment returns the selected file, if any
func (s *Session) PendingAttachment() (models.Attachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return models.Attachment{}, false
	}
	return *s.pending, true
}

// SelectFile validates path and makes it the pending attachment. On error
// the previous selection is kept.
func (s *Session) SelectFile(path string) (models.Attachment, error) {
	att, err := attachment.Inspect(path)
	if err != nil {
		s.log().Debug("file rejected", "path", path, "error", err)
		return models.Attachment{}, err
	}

	s.mu.Lock()
	s.pending = &att
	s.mu.Unlock()
	return att, nil
}

// SetPendingAttachment installs an already inspected attachment
func (s *Session) SetPendingAttachment(att models.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &att
}

// RemoveFile drops the pending attachment
func (s *Session) RemoveFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Begin starts a turn. It returns false when there is nothing to send or a
// response is already in flight; nothing changes in that case.
func (s *Session) Begin(text string) (*Turn, bool) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if (text == "" && s.pending == nil) || s.generating {
		return nil, false
	}
	s.generating = true

	var att *models.Attachment
	if s.pending != nil {
		a := *s.pending
		att = &a
	}

	turn := newTurn(text, att, s.epoch)
	s.log().Debug("turn started", "turn_id", turn.ID, "has_file", att != nil)
	return turn, true
}

// Abort ends a turn whose attachment could not be encoded. No message is
// added.
func (s *Session) Abort(turn *Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.epoch != s.epoch {
		return
	}
	s.generating = false
	s.log().Debug("turn aborted", "turn_id", turn.ID)
}

// PostOutgoing appends the user's message and clears the pending
// attachment. It returns false if the session was cleared since Begin.
func (s *Session) PostOutgoing(turn *Turn, payload *models.InlineData) bool {
	s.mu.Lock()
	if turn.epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	turn.Payload = payload
	s.messages = append(s.messages, models.NewOutgoing(turn.Display, turn.HasFile()))
	s.pending = nil
	s.mu.Unlock()

	s.changed()
	return true
}

// AppendLoading appends the reply placeholder
func (s *Session) AppendLoading(turn *Turn) bool {
	s.mu.Lock()
	if turn.epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	msg := models.NewLoading()
	turn.incomingID = msg.ID
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.changed()
	return true
}

// Fail writes err into the reply placeholder and reopens the gate
func (s *Session) Fail(turn *Turn, err error) bool {
	s.mu.Lock()
	if turn.epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	s.generating = false
	i := s.indexOf(turn.incomingID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.messages[i].Text = apierrors.UserMessage(err)
	s.messages[i].IsError = true
	s.messages[i].IsLoading = false
	s.mu.Unlock()

	s.log().Info("turn failed", "turn_id", turn.ID, "status", apierrors.GetHTTPStatus(err), "error", err)
	s.changed()
	return true
}

// Interrupt ends a turn that will not complete, such as when the caller
// gives up. A placeholder still loading becomes an error message.
func (s *Session) Interrupt(turn *Turn) {
	s.mu.Lock()
	if turn.epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.generating = false
	for r := range s.reveals {
		if r.TargetID() == turn.incomingID {
			r.Cancel()
			delete(s.reveals, r)
		}
	}
	i := s.indexOf(turn.incomingID)
	if i < 0 || !s.messages[i].IsLoading {
		s.mu.Unlock()
		return
	}
	s.messages[i].IsLoading = false
	s.messages[i].IsError = true
	s.messages[i].Text = models.InterruptedText
	s.mu.Unlock()

	s.changed()
}

// StartReveal registers a reveal of text into the reply placeholder. Bold
// markers are removed first.
func (s *Session) StartReveal(turn *Turn, text string) (*reveal.Reveal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.epoch != s.epoch {
		return nil, false
	}
	if s.indexOf(turn.incomingID) < 0 {
		s.generating = false
		return nil, false
	}
	r := reveal.New(StripEmphasis(text), turn.incomingID, s.epoch)
	s.reveals[r] = struct{}{}
	return r, true
}

// Advance shows one more word. It returns true once the reveal is over,
// either finished or invalidated. The finishing tick reopens the gate.
func (s *Session) Advance(r *reveal.Reveal) bool {
	s.mu.Lock()
	if r.Cancelled() || r.Epoch() != s.epoch {
		delete(s.reveals, r)
		s.mu.Unlock()
		return true
	}

	i := s.indexOf(r.TargetID())
	if i < 0 {
		r.Cancel()
		delete(s.reveals, r)
		s.generating = false
		s.mu.Unlock()
		return true
	}

	text, done, ok := r.Next()
	if !ok {
		delete(s.reveals, r)
		s.mu.Unlock()
		return true
	}
	s.messages[i].Text = text
	s.messages[i].IsLoading = false
	if done {
		delete(s.reveals, r)
		s.generating = false
	}
	s.mu.Unlock()

	s.changed()
	return done
}

// Clear deletes every message, here and in storage. Outstanding reveals are
// cancelled and work started before the clear becomes a no-op.
func (s *Session) Clear() {
	s.mu.Lock()
	for r := range s.reveals {
		r.Cancel()
	}
	s.reveals = make(map[*reveal.Reveal]struct{})
	s.epoch++
	s.messages = []models.Message{}
	s.generating = false
	s.mu.Unlock()

	if err := s.store.ClearHistory(); err != nil {
		s.log().Warn("failed to clear saved history", "error", err)
	}
	s.log().Info("history cleared")
	s.notify()
}

// ToggleTheme flips the theme and saves it
func (s *Session) ToggleTheme() models.Theme {
	s.mu.Lock()
	s.theme = s.theme.Toggle()
	t := s.theme
	s.mu.Unlock()

	if err := s.store.SaveTheme(t); err != nil {
		s.log().Warn("failed to save theme", "error", err)
	}
	return t
}

// SetTheme sets and saves the theme
func (s *Session) SetTheme(t models.Theme) {
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	if err := s.store.SaveTheme(t); err != nil {
		s.log().Warn("failed to save theme", "error", err)
	}
}

// CopyMessage puts the text of message id on the clipboard
func (s *Session) CopyMessage(id string) error {
	msg, ok := s.Message(id)
	if !ok {
		return fmt.Errorf("message %s not found", id)
	}
	if err := s.clip(msg.Text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// IncomingIDs returns the ids of all replies, oldest first
func (s *Session) IncomingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, m := range s.messages {
		if m.IsIncoming() {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// changed persists the list and notifies the subscriber. Caller must not
// hold the lock.
func (s *Session) changed() {
	s.mu.Lock()
	msgs := s.snapshot()
	s.mu.Unlock()

	if err := s.store.SaveHistory(msgs); err != nil {
		s.log().Warn("failed to save history", "error", err)
	}
	if s.onChange != nil {
		s.onChange(msgs)
	}
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.Messages())
	}
}

func (s *Session) snapshot() []models.Message {
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}
