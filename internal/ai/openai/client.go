package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/spigell/jobfinder/internal/ai"
)

const (
	headerReferer = "HTTP-Referer"
	headerTitle   = "X-Title"
)

// Client talks to an OpenAI compatible chat-completions endpoint. The same
// type serves OpenAI itself and OpenRouter, which differ only in base URL and
// the attribution headers OpenRouter asks for.
type Client struct {
	provider ai.Provider
	sdk      *openaisdk.Client
}

type options struct {
	httpClient *http.Client
	headers    http.Header
}

// Option customizes a Client.
type Option func(*options)

// WithHTTPClient replaces the HTTP client used for outgoing requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithHeader adds a header to every outgoing request. Empty values are ignored.
func WithHeader(key, value string) Option {
	return func(o *options) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		o.headers.Set(key, value)
	}
}

// WithAttribution sets the referer and title headers OpenRouter uses to
// identify the calling application.
func WithAttribution(referer, title string) Option {
	return func(o *options) {
		WithHeader(headerReferer, referer)(o)
		WithHeader(headerTitle, title)(o)
	}
}

// New creates a client bound to the registration's base URL.
func New(reg ai.Registration, apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s api key is required", reg.Provider)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(reg.BaseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s base url: %w", reg.Provider, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%s base url %q must be absolute", reg.Provider, reg.BaseURL)
	}

	o := &options{headers: make(http.Header)}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if len(o.headers) > 0 {
		wrapped := *httpClient
		wrapped.Transport = &headerTransport{base: httpClient.Transport, headers: o.headers}
		httpClient = &wrapped
	}

	cfg := openaisdk.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = httpClient

	return &Client{
		provider: reg.Provider,
		sdk:      openaisdk.NewClientWithConfig(cfg),
	}, nil
}

// NewOpenRouter creates a client for OpenRouter with attribution headers.
func NewOpenRouter(reg ai.Registration, apiKey, referer, title string, opts ...Option) (*Client, error) {
	return New(reg, apiKey, append([]Option{WithAttribution(referer, title)}, opts...)...)
}

// CreateChatCompletion implements ai.Completer.
func (c *Client) CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	if c == nil || c.sdk == nil {
		return nil, errors.New("openai client is not initialized")
	}

	resp, err := c.sdk.CreateChatCompletion(ctx, toSDKRequest(req))
	if err != nil {
		return nil, c.convertError(err)
	}

	return fromSDKResponse(resp), nil
}

func toSDKRequest(req ai.ChatRequest) openaisdk.ChatCompletionRequest {
	messages := make([]openaisdk.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openaisdk.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	out := openaisdk.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}

	if req.Temperature != nil {
		temperature := float32(*req.Temperature)
		// The sdk drops a zero temperature from the payload.
		if temperature == 0 {
			temperature = math.SmallestNonzeroFloat32
		}
		out.Temperature = temperature
	}

	return out
}

func fromSDKResponse(resp openaisdk.ChatCompletionResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Model:   resp.Model,
		Choices: make([]ai.Choice, 0, len(resp.Choices)),
		Usage: ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, ai.Choice{
			Message:      ai.Message{Role: choice.Message.Role, Content: choice.Message.Content},
			FinishReason: string(choice.FinishReason),
		})
	}

	return out
}

func (c *Client) convertError(err error) error {
	var apiErr *openaisdk.APIError
	if errors.As(err, &apiErr) {
		return &ai.ProviderError{
			Provider:   c.provider,
			StatusCode: apiErr.HTTPStatusCode,
			Code:       apiErrorCode(apiErr),
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openaisdk.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &ai.ProviderError{
			Provider:   c.provider,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    msg,
			Err:        err,
		}
	}

	return &ai.ProviderError{Provider: c.provider, Message: err.Error(), Err: err}
}

// apiErrorCode prefers the machine readable code and falls back to the error type.
func apiErrorCode(e *openaisdk.APIError) string {
	switch code := e.Code.(type) {
	case string:
		if code != "" {
			return code
		}
	case float64:
		return fmt.Sprintf("%.0f", code)
	case int:
		return fmt.Sprintf("%d", code)
	}
	return e.Type
}

type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	clone := req.Clone(req.Context())
	for key, values := range t.headers {
		clone.Header[key] = append([]string(nil), values...)
	}

	return base.RoundTrip(clone)
}
