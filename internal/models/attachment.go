package models

// Attachment is a file the user picked but has not sent yet
type Attachment struct {
	Path     string
	Name     string
	Size     int64
	MIMEType string
}

// InlineData is an attachment encoded for the request body
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Suggestion is a canned prompt offered on an empty chat
type Suggestion struct {
	Text string
	Icon string
}

// Suggestions shown when the history is empty
var Suggestions = []Suggestion{
	{Text: "Help me plan a game night with my 5 best friends for under $100", Icon: "✎"},
	{Text: "What is the best way to learn coding?", Icon: "💡"},
	{Text: "Can you help me find the latest news on web development?", Icon: "🧭"},
	{Text: "Write JavaScript code to sum all elements in an array", Icon: "</>"},
}

// SuggestionAt returns the suggestion for a 1-based slot
func SuggestionAt(slot int) (Suggestion, bool) {
	if slot < 1 || slot > len(Suggestions) {
		return Suggestion{}, false
	}
	return Suggestions[slot-1], true
}
