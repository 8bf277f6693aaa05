// Package reveal plays back a finished response one word at a time.
package reveal

import (
	"context"
	"strings"
	"time"
)

// DefaultInterval is the delay between two revealed words
const DefaultInterval = 75 * time.Millisecond

// Tokenize splits text on single spaces. Newlines and repeated spaces stay
// inside tokens, so joining the tokens back restores the text exactly.
func Tokenize(text string) []string {
	return strings.Split(text, " ")
}

// Reveal tracks the progress of one playback. It is not safe for concurrent
// use; the chat loop owns it.
type Reveal struct {
	tokens    []string
	emitted   int
	targetID  string
	epoch     uint64
	cancelled bool
}

// New creates a reveal of text into the message targetID, issued during epoch
func New(text, targetID string, epoch uint64) *Reveal {
	return &Reveal{
		tokens:   Tokenize(text),
		targetID: targetID,
		epoch:    epoch,
	}
}

// Next returns the text revealed after one more tick and whether the reveal
// has finished. A cancelled or finished reveal returns ok=false.
func (r *Reveal) Next() (text string, done bool, ok bool) {
	if r.cancelled || r.emitted >= len(r.tokens) {
		return "", true, false
	}
	r.emitted++
	return strings.Join(r.tokens[:r.emitted], " "), r.emitted == len(r.tokens), true
}

// Cancel stops the reveal; later Next calls never yield text
func (r *Reveal) Cancel() {
	r.cancelled = true
}

// Cancelled reports whether Cancel was called
func (r *Reveal) Cancelled() bool {
	return r.cancelled
}

// Done reports whether every token was emitted
func (r *Reveal) Done() bool {
	return r.emitted >= len(r.tokens)
}

// TargetID is the id of the message being written
func (r *Reveal) TargetID() string {
	return r.targetID
}

// Epoch is the session epoch the reveal was started in
func (r *Reveal) Epoch() uint64 {
	return r.epoch
}

// Len returns the number of ticks the reveal takes
func (r *Reveal) Len() int {
	return len(r.tokens)
}

// Full returns the complete text
func (r *Reveal) Full() string {
	return strings.Join(r.tokens, " ")
}

// Play emits the growing prefix of text every interval until the whole text
// is out or ctx is cancelled. The first emit happens after one interval.
func Play(ctx context.Context, text string, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := New(text, "", 0)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			partial, done, ok := r.Next()
			if !ok {
				return nil
			}
			emit(partial)
			if done {
				return nil
			}
		}
	}
}
