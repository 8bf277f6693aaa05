// Package models contains data types and constants for the Gemini generative-language API.
package models

// Endpoints for the Gemini generative-language API
const (
	EndpointBase    = "https://generativelanguage.googleapis.com/v1beta"
	MethodGenerate  = "generateContent"
	HeaderAPIKey    = "x-goog-api-key"
	MaxFileSize     = 20 * 1024 * 1024
	DefaultUserRole = "user"
)

// Fixed texts the chat flow produces on its own.
const (
	FallbackPrompt     = "What can you tell me about this file?"
	FileOnlyDisplay    = "Analyze this file"
	FileMarker         = "📎"
	NoResponseText     = "No response received"
	InterruptedText    = "Response was interrupted"
	EncodeFailedAlert  = "Failed to process file. Please try again."
	FileTooLargeAlert  = "File size must be less than 20MB"
	UnsupportedAlert   = "Unsupported file type. Use an image, PDF, DOC, DOCX or TXT file."
	ClipboardAlert     = "Could not copy to clipboard"
	ClearConfirmPrompt = "Are you sure you want to delete all messages?"
	Disclaimer         = "Gemini may display inaccurate info, including about people, so double-check its responses."
	Greeting           = "Hello, there"
	Subtitle           = "How can I help you today?"
)

// Model represents a Gemini model the client can target
type Model struct {
	Name        string
	Description string
}

// Available models
var (
	Model25Flash = Model{
		Name:        "gemini-2.5-flash",
		Description: "Fast multimodal model",
	}

	Model25Pro = Model{
		Name:        "gemini-2.5-pro",
		Description: "Most capable model for complex reasoning",
	}

	Model25FlashLite = Model{
		Name:        "gemini-2.5-flash-lite",
		Description: "Lowest latency, lowest cost",
	}

	// DefaultModel is the recommended default
	DefaultModel = Model25Flash
)

// AllModels returns a list of all known models
func AllModels() []Model {
	return []Model{Model25Flash, Model25Pro, Model25FlashLite}
}

// ModelFromName returns a known Model by its name. Unknown names are passed
// through so newer models work without a release.
func ModelFromName(name string) Model {
	for _, m := range AllModels() {
		if m.Name == name {
			return m
		}
	}
	if name == "" {
		return DefaultModel
	}
	return Model{Name: name}
}

// DefaultHeaders returns the default headers for API requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "geminichat/1.0",
	}
}
