// Package history exports and searches the saved chat.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/geminichat/internal/models"
)

// ExportFormat represents the format for exporting the chat
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseFormat accepts "markdown", "md" or "json"
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown or json)", s)
	}
}

// ExportOptions configures how the chat is exported
type ExportOptions struct {
	Format        ExportFormat
	Model         string
	IncludeErrors bool // Include failed replies
	Now           func() time.Time
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:        ExportFormatMarkdown,
		Model:         models.DefaultModel.Name,
		IncludeErrors: true,
		Now:           time.Now,
	}
}

// Export renders msgs in opts.Format
func Export(msgs []models.Message, opts ExportOptions) ([]byte, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch opts.Format {
	case ExportFormatJSON:
		return ExportToJSON(msgs, opts)
	case ExportFormatMarkdown, "":
		return []byte(ExportToMarkdown(msgs, opts)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", opts.Format)
	}
}

// exportable drops loading placeholders and, unless asked for, failed replies
func exportable(msgs []models.Message, opts ExportOptions) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsLoading {
			continue
		}
		if msg.IsError && !opts.IncludeErrors {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func role(msg models.Message) string {
	if msg.IsOutgoing() {
		return "User"
	}
	return "Gemini"
}

// ExportToMarkdown renders the chat as a Markdown document
func ExportToMarkdown(msgs []models.Message, opts ExportOptions) string {
	msgs = exportable(msgs, opts)
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	var sb strings.Builder

	sb.WriteString("# Gemini chat\n\n")

	if opts.Model != "" {
		sb.WriteString("**Model:** ")
		sb.WriteString(opts.Model)
		sb.WriteString("\n")
	}
	sb.WriteString("**Exported:** ")
	sb.WriteString(now().Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(msgs)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range msgs {
		sb.WriteString("## ")
		sb.WriteString(role(msg))
		if msg.IsError {
			sb.WriteString(" (error)")
		}
		sb.WriteString("\n\n")

		if msg.HasFile {
			sb.WriteString(models.FileMarker)
			sb.WriteString(" *file attached*\n\n")
		}

		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportToJSON renders the chat as an indented JSON document
func ExportToJSON(msgs []models.Message, opts ExportOptions) ([]byte, error) {
	msgs = exportable(msgs, opts)
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	type ExportMessage struct {
		ID      string `json:"id"`
		Role    string `json:"role"`
		Content string `json:"content"`
		HasFile bool   `json:"has_file,omitempty"`
		IsError bool   `json:"is_error,omitempty"`
	}

	type ExportChat struct {
		Model      string          `json:"model,omitempty"`
		ExportedAt time.Time       `json:"exported_at"`
		Messages   []ExportMessage `json:"messages"`
	}

	export := ExportChat{
		Model:      opts.Model,
		ExportedAt: now().UTC(),
		Messages:   make([]ExportMessage, len(msgs)),
	}
	for i, msg := range msgs {
		export.Messages[i] = ExportMessage{
			ID:      msg.ID,
			Role:    strings.ToLower(role(msg)),
			Content: msg.Text,
			HasFile: msg.HasFile,
			IsError: msg.IsError,
		}
	}

	return json.MarshalIndent(export, "", "  ")
}
