// Package api provides the Gemini generative-language API client.
package api

// GJSON paths for extracting values from generateContent responses.
const (
	PathCandText     = "candidates.0.content.parts.0.text"
	PathFinishReason = "candidates.0.finishReason"
	PathBlockReason  = "promptFeedback.blockReason"
	PathErrorMessage = "error.message"
	PathErrorStatus  = "error.status"
	PathModelVersion = "modelVersion"
	PathTotalTokens  = "usageMetadata.totalTokenCount"
	PathPromptTokens = "usageMetadata.promptTokenCount"
	PathAnswerTokens = "usageMetadata.candidatesTokenCount"
)
