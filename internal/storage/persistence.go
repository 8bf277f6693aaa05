package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
)

// Keys used in the KV store
const (
	KeySavedChats = "savedChats"
	KeyThemeColor = "themeColor"
)

// Persistence reads and writes chat state through a KV store
type Persistence struct {
	kv KV
}

// NewPersistence wraps kv
func NewPersistence(kv KV) *Persistence {
	return &Persistence{kv: kv}
}

func (p *Persistence) log() *slog.Logger {
	return observability.WithFields("component", "storage")
}

// LoadHistory returns the saved messages. A missing or unreadable entry
// yields an empty history; the problem is logged, never returned.
func (p *Persistence) LoadHistory() []models.Message {
	raw, ok, err := p.kv.Get(KeySavedChats)
	if err != nil {
		p.log().Debug("failed to read history", "error", err)
		return []models.Message{}
	}
	if !ok || raw == "" {
		return []models.Message{}
	}

	var msgs []models.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		p.log().Debug("discarding unparseable history", "error", err)
		return []models.Message{}
	}
	if msgs == nil {
		return []models.Message{}
	}

	return normalize(msgs)
}

// normalize fills missing ids and turns placeholders left by an interrupted
// run into error messages, so at most one loading message can ever exist.
func normalize(msgs []models.Message) []models.Message {
	for i := range msgs {
		msgs[i].EnsureID()
		if msgs[i].IsLoading {
			msgs[i].IsLoading = false
			msgs[i].IsError = true
			if msgs[i].Text == "" {
				msgs[i].Text = models.InterruptedText
			}
		}
	}
	return msgs
}

// SaveHistory writes the full message list. An empty list removes the key.
func (p *Persistence) SaveHistory(msgs []models.Message) error {
	if len(msgs) == 0 {
		return p.ClearHistory()
	}

	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return p.kv.Set(KeySavedChats, string(data))
}

// ClearHistory removes the saved messages
func (p *Persistence) ClearHistory() error {
	return p.kv.Delete(KeySavedChats)
}

// LoadTheme returns the saved theme, dark when none is stored
func (p *Persistence) LoadTheme() models.Theme {
	raw, _, err := p.kv.Get(KeyThemeColor)
	if err != nil {
		p.log().Debug("failed to read theme", "error", err)
	}
	return models.ThemeFromStorage(raw)
}

// SaveTheme stores the theme preference
func (p *Persistence) SaveTheme(t models.Theme) error {
	return p.kv.Set(KeyThemeColor, t.StorageValue())
}

// Close closes the underlying store
func (p *Persistence) Close() error {
	return p.kv.Close()
}
