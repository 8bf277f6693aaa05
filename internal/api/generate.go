package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
)

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 64 * 1024

// Part is one element of a content's parts array
type Part struct {
	Text       string             `json:"text,omitempty"`
	InlineData *models.InlineData `json:"inline_data,omitempty"`
}

// Content is one turn of the conversation
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// GenerateRequest is the generateContent request body
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// Usage reports token counts from a response
type Usage struct {
	PromptTokens int64
	AnswerTokens int64
	TotalTokens  int64
}

// Answer is a parsed generateContent response
type Answer struct {
	Text         string
	FinishReason string
	ModelVersion string
	Usage        Usage
}

// BuildRequest assembles a single-turn request. The text part is left out
// when text is empty and the file part when file is nil.
func BuildRequest(text string, file *models.InlineData) GenerateRequest {
	parts := make([]Part, 0, 2)
	if text != "" {
		parts = append(parts, Part{Text: text})
	}
	if file != nil {
		parts = append(parts, Part{InlineData: file})
	}
	return GenerateRequest{
		Contents: []Content{{Role: models.DefaultUserRole, Parts: parts}},
	}
}

// Ask sends one prompt and returns the text of the first candidate
func (c *GeminiClient) Ask(ctx context.Context, text string, file *models.InlineData) (string, error) {
	answer, err := c.Generate(ctx, text, file)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// Generate sends one prompt and returns the parsed response
func (c *GeminiClient) Generate(ctx context.Context, text string, file *models.InlineData) (*Answer, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(BuildRequest(text, file))
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	endpoint := c.generateURL()
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req = req.WithContext(ctx)

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set(models.HeaderAPIKey, c.apiKey)

	log := observability.LoggerFromContext(ctx)
	log.Debug("sending request", "model", c.GetModel().Name, "has_file", file != nil, "bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierrors.NewNetworkError("generate content", c.endpoint, ctxErr)
		}
		return nil, apierrors.NewNetworkError("generate content", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Debug("request failed", "status", resp.StatusCode, "body", string(errorBody))
		return nil, apierrors.NewAPIError(resp.StatusCode, models.MethodGenerate, errorMessage(errorBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("read response", c.endpoint, err)
	}

	return ParseResponse(respBody)
}

// errorMessage extracts error.message from a failure body
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, PathErrorMessage).String()
}

// ParseResponse extracts the answer from a successful response body. A body
// without candidate text yields the "No response received" placeholder.
func ParseResponse(body []byte) (*Answer, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	answer := &Answer{
		Text:         parsed.Get(PathCandText).String(),
		FinishReason: parsed.Get(PathFinishReason).String(),
		ModelVersion: parsed.Get(PathModelVersion).String(),
		Usage: Usage{
			PromptTokens: parsed.Get(PathPromptTokens).Int(),
			AnswerTokens: parsed.Get(PathAnswerTokens).Int(),
			TotalTokens:  parsed.Get(PathTotalTokens).Int(),
		},
	}
	if answer.Text == "" {
		answer.Text = models.NoResponseText
		if reason := parsed.Get(PathBlockReason).String(); reason != "" {
			answer.FinishReason = reason
		}
	}

	return answer, nil
}
