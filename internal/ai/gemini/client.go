package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/spigell/jobfinder/internal/ai"
)

// contentGenerator is the subset of *genai.Models used by the client.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client adapts the Google GenAI SDK to the chat-completion shape.
type Client struct {
	models contentGenerator
}

// New creates a Gemini client for the Gemini API backend.
func New(ctx context.Context, reg ai.Registration, apiKey string, httpClient *http.Client) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL := strings.TrimSpace(reg.BaseURL); baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{models: client.Models}, nil
}

// CreateChatCompletion implements ai.Completer.
func (c *Client) CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	if c == nil || c.models == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	contents, config := toGenAI(req)
	if len(contents) == 0 {
		return nil, errors.New("at least one user message is required")
	}

	resp, err := c.models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, convertError(err)
	}

	return fromGenAI(resp), nil
}

func toGenAI(req ai.ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))

	for _, m := range req.Messages {
		switch m.Role {
		case ai.RoleSystem:
			system = append(system, m.Content)
		case ai.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	return contents, config
}

func fromGenAI(resp *genai.GenerateContentResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{}
	if resp == nil {
		return out
	}

	out.Model = resp.ModelVersion
	if resp.UsageMetadata != nil {
		out.Usage = ai.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}

		var builder strings.Builder
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Thought {
					continue
				}
				text := strings.TrimSpace(part.Text)
				if text == "" {
					continue
				}
				if builder.Len() > 0 {
					builder.WriteString("\n")
				}
				builder.WriteString(text)
			}
		}

		out.Choices = append(out.Choices, ai.Choice{
			Message:      ai.Message{Role: ai.RoleAssistant, Content: builder.String()},
			FinishReason: strings.ToLower(string(candidate.FinishReason)),
		})
	}

	return out
}

func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ProviderError{
			Provider:   ai.ProviderGemini,
			StatusCode: apiErr.Code,
			Code:       apiErr.Status,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ai.ProviderError{
			Provider:   ai.ProviderGemini,
			StatusCode: apiErrPtr.Code,
			Code:       apiErrPtr.Status,
			Message:    apiErrPtr.Message,
			Err:        err,
		}
	}

	return &ai.ProviderError{Provider: ai.ProviderGemini, Message: err.Error(), Err: err}
}
