package models

import "github.com/google/uuid"

// Kind distinguishes user messages from model replies
type Kind string

const (
	KindOutgoing Kind = "outgoing"
	KindIncoming Kind = "incoming"
)

// Message is one entry in the chat history. The JSON layout is the persisted
// format of the savedChats key.
type Message struct {
	ID        string `json:"id,omitempty"`
	Kind      Kind   `json:"type"`
	Text      string `json:"text"`
	IsLoading bool   `json:"isLoading,omitempty"`
	IsError   bool   `json:"isError,omitempty"`
	HasFile   bool   `json:"hasFile,omitempty"`
}

// NewOutgoing creates a user message
func NewOutgoing(text string, hasFile bool) Message {
	return Message{
		ID:      uuid.NewString(),
		Kind:    KindOutgoing,
		Text:    text,
		HasFile: hasFile,
	}
}

// NewLoading creates an empty incoming message waiting for a reply
func NewLoading() Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      KindIncoming,
		IsLoading: true,
	}
}

// IsOutgoing returns true for user messages
func (m Message) IsOutgoing() bool {
	return m.Kind == KindOutgoing
}

// IsIncoming returns true for model replies
func (m Message) IsIncoming() bool {
	return m.Kind == KindIncoming
}

// EnsureID assigns an id to messages persisted without one
func (m *Message) EnsureID() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
}
