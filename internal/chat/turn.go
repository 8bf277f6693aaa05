package chat

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/diogo/geminichat/internal/models"
)

var emphasisRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

// StripEmphasis removes **bold** markers, keeping the enclosed text
func StripEmphasis(text string) string {
	return emphasisRe.ReplaceAllString(text, "$1")
}

// Turn is one submission, from Begin until the reply is fully shown
type Turn struct {
	ID         string
	Text       string
	Prompt     string
	Display    string
	Attachment *models.Attachment
	Payload    *models.InlineData

	epoch      uint64
	incomingID string
}

func newTurn(text string, att *models.Attachment, epoch uint64) *Turn {
	return &Turn{
		ID:         uuid.NewString(),
		Text:       text,
		Prompt:     promptFor(text, att),
		Display:    displayFor(text, att),
		Attachment: att,
		epoch:      epoch,
	}
}

// IncomingID is the id of the reply placeholder, empty until AppendLoading
func (t *Turn) IncomingID() string {
	return t.incomingID
}

// Epoch is the session epoch the turn started in
func (t *Turn) Epoch() uint64 {
	return t.epoch
}

// HasFile reports whether the turn carries an attachment
func (t *Turn) HasFile() bool {
	return t.Attachment != nil
}

func promptFor(text string, att *models.Attachment) string {
	if text == "" && att != nil {
		return models.FallbackPrompt
	}
	return text
}

func displayFor(text string, att *models.Attachment) string {
	if att == nil {
		return text
	}
	label := text
	if label == "" {
		label = models.FileOnlyDisplay
	}
	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(models.FileMarker)
	b.WriteString(" ")
	b.WriteString(att.Name)
	return b.String()
}
