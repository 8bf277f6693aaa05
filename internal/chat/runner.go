package chat

import (
	"context"
	"errors"
	"time"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
	"github.com/diogo/geminichat/internal/reveal"
)

// Asker sends one prompt to the model
type Asker interface {
	Ask(ctx context.Context, text string, file *models.InlineData) (string, error)
}

// FileEncoder turns a selected file into inline request data
type FileEncoder interface {
	Encode(ctx context.Context, att models.Attachment) (models.InlineData, error)
}

// Clock schedules the pauses of a turn
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// RealClock waits on wall time
type RealClock struct{}

// After is time.After
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Timing holds the pauses of a turn
type Timing struct {
	LoadingDelay   time.Duration
	RequestDelay   time.Duration
	TypingInterval time.Duration
}

// DefaultTiming matches the interactive client
func DefaultTiming() Timing {
	return Timing{
		LoadingDelay:   500 * time.Millisecond,
		RequestDelay:   100 * time.Millisecond,
		TypingInterval: reveal.DefaultInterval,
	}
}

// ErrNothingToSend is returned when Submit gets no text and no file
var ErrNothingToSend = errors.New("nothing to send")

// EncodeError wraps an attachment failure that ended a turn before anything
// was posted
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return models.EncodeFailedAlert + ": " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Runner drives whole turns without a UI, blocking through the pauses
type Runner struct {
	Session *Session
	Encoder FileEncoder
	Asker   Asker
	Clock   Clock
	Timing  Timing

	// OnProgress, if set, sees the reply after every revealed word
	OnProgress func(models.Message)
}

// NewRunner creates a runner on wall time
func NewRunner(s *Session, enc FileEncoder, asker Asker, timing Timing) *Runner {
	return &Runner{
		Session: s,
		Encoder: enc,
		Asker:   asker,
		Clock:   RealClock{},
		Timing:  timing,
	}
}

// Submit sends text plus the pending attachment and returns the final reply.
// API failures are returned both as the error message in the reply and as
// err.
func (r *Runner) Submit(ctx context.Context, text string) (models.Message, error) {
	turn, ok := r.Session.Begin(text)
	if !ok {
		if r.Session.IsGenerating() {
			return models.Message{}, apierrors.ErrResponseInFlight
		}
		return models.Message{}, ErrNothingToSend
	}
	ctx = observability.WithTurnID(ctx, turn.ID)
	log := observability.LoggerFromContext(ctx)

	var payload *models.InlineData
	if turn.Attachment != nil {
		data, err := r.Encoder.Encode(ctx, *turn.Attachment)
		if err != nil {
			r.Session.Abort(turn)
			log.Warn("failed to encode attachment", "error", err)
			return models.Message{}, &EncodeError{Err: err}
		}
		payload = &data
	}

	if !r.Session.PostOutgoing(turn, payload) {
		return models.Message{}, context.Canceled
	}

	if err := r.wait(ctx, r.Timing.LoadingDelay); err != nil {
		r.Session.Abort(turn)
		return models.Message{}, err
	}
	if !r.Session.AppendLoading(turn) {
		return models.Message{}, context.Canceled
	}

	if err := r.wait(ctx, r.Timing.RequestDelay); err != nil {
		r.Session.Interrupt(turn)
		return r.reply(turn), err
	}

	start := time.Now()
	answer, err := r.Asker.Ask(ctx, turn.Prompt, turn.Payload)
	if err != nil {
		if ctx.Err() != nil {
			r.Session.Interrupt(turn)
			return r.reply(turn), ctx.Err()
		}
		r.Session.Fail(turn, err)
		return r.reply(turn), err
	}
	log.Debug("response received", "elapsed", time.Since(start), "chars", len(answer))

	rv, ok := r.Session.StartReveal(turn, answer)
	if !ok {
		return r.reply(turn), context.Canceled
	}

	for {
		if err := r.wait(ctx, r.Timing.TypingInterval); err != nil {
			r.Session.Interrupt(turn)
			return r.reply(turn), err
		}
		done := r.Session.Advance(rv)
		if r.OnProgress != nil {
			r.OnProgress(r.reply(turn))
		}
		if done {
			break
		}
	}

	return r.reply(turn), nil
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.Clock.After(d):
		return nil
	}
}

func (r *Runner) reply(turn *Turn) models.Message {
	msg, _ := r.Session.Message(turn.IncomingID())
	return msg
}
