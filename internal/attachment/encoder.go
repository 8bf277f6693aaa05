package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

var (
	errIsDir      = errors.New("path is a directory")
	errNotDataURL = errors.New("not a base64 data URL")
)

// DataURLReader turns a file into a data URL
type DataURLReader interface {
	ReadDataURL(ctx context.Context, att models.Attachment) (string, error)
}

// FileReader reads attachments from the local filesystem
type FileReader struct{}

// ReadDataURL returns data:<mime>;base64,<payload> for the file
func (FileReader) ReadDataURL(ctx context.Context, att models.Attachment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(att.MIMEType) + 13 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(att.MIMEType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

// Encoder produces the inline payload for a selected file
type Encoder struct {
	reader DataURLReader
}

// NewEncoder creates an Encoder. A nil reader reads from disk.
func NewEncoder(reader DataURLReader) *Encoder {
	if reader == nil {
		reader = FileReader{}
	}
	return &Encoder{reader: reader}
}

// Encode reads the file and returns its base64 payload without the data URL
// prefix. The attachment is assumed to have passed Inspect.
func (e *Encoder) Encode(ctx context.Context, att models.Attachment) (models.InlineData, error) {
	dataURL, err := e.reader.ReadDataURL(ctx, att)
	if err != nil {
		return models.InlineData{}, apierrors.NewFileError(att.Path, err)
	}

	payload, err := PayloadFromDataURL(dataURL)
	if err != nil {
		return models.InlineData{}, apierrors.NewFileError(att.Path, err)
	}

	return models.InlineData{MIMEType: att.MIMEType, Data: payload}, nil
}

// PayloadFromDataURL returns everything after the first comma of a base64
// data URL
func PayloadFromDataURL(dataURL string) (string, error) {
	head, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(head, "data:") || !strings.HasSuffix(head, ";base64") {
		return "", errNotDataURL
	}
	return payload, nil
}
