package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// Doer sends one HTTP request. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// GeminiClientInterface is what the chat layer needs from the client
type GeminiClientInterface interface {
	Ask(ctx context.Context, text string, file *models.InlineData) (string, error)
	GetModel() models.Model
}

// GeminiClient talks to the generateContent endpoint
type GeminiClient struct {
	httpClient Doer
	apiKey     string
	endpoint   string
	model      models.Model
	timeout    time.Duration
	mu         sync.RWMutex
}

var _ GeminiClientInterface = (*GeminiClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the model for the client
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithEndpoint sets the API base URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *GeminiClient) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithTimeout sets the transport timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *GeminiClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the transport, mainly for tests
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = doer
	}
}

// NewClient creates a GeminiClient
func NewClient(apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apierrors.ErrNoAPIKey
	}

	client := &GeminiClient{
		apiKey:   apiKey,
		endpoint: models.EndpointBase,
		model:    models.DefaultModel,
		timeout:  300 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// GetModel returns the model
func (c *GeminiClient) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel sets the model
func (c *GeminiClient) SetModel(model models.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// Endpoint returns the API base URL
func (c *GeminiClient) Endpoint() string {
	return c.endpoint
}

// generateURL is {endpoint}/models/{model}:generateContent
func (c *GeminiClient) generateURL() string {
	return fmt.Sprintf("%s/models/%s:%s", c.endpoint, c.GetModel().Name, models.MethodGenerate)
}
