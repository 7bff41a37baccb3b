package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"google.golang.org/genai"

	"github.com/spigell/jobfinder/internal/ai"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModels struct {
	mu    sync.Mutex
	calls []generateCall
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func TestClientCreateChatCompletion(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{
		ModelVersion: "gemini-2.5-flash-001",
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: " first "},
				{Text: "second"},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     5,
			CandidatesTokenCount: 2,
			TotalTokenCount:      7,
		},
	}}

	client := &Client{models: models}

	resp, err := client.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Model: "gemini-2.5-flash",
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "system"},
			{Role: ai.RoleUser, Content: "message"},
		},
		Temperature: ai.Float(0.3),
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.Text() != "first\nsecond" {
		t.Fatalf("unexpected output: %q", resp.Text())
	}
	if resp.FinishReason() != "stop" {
		t.Fatalf("unexpected finish reason: %q", resp.FinishReason())
	}
	if resp.Usage.TotalTokens != 7 || resp.Model != "gemini-2.5-flash-001" {
		t.Fatalf("unexpected metadata: %+v", resp)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model: %q", call.model)
	}
	if call.config == nil || call.config.SystemInstruction == nil {
		t.Fatalf("expected system instruction to be set")
	}
	if got := call.config.SystemInstruction.Parts[0].Text; got != "system" {
		t.Fatalf("unexpected system instruction: %q", got)
	}
	if call.config.Temperature == nil || *call.config.Temperature != float32(0.3) {
		t.Fatalf("unexpected temperature: %v", call.config.Temperature)
	}
	if call.config.MaxOutputTokens != 1000 {
		t.Fatalf("unexpected max output tokens: %d", call.config.MaxOutputTokens)
	}
	if len(call.contents) != 1 || string(call.contents[0].Role) != "user" || call.contents[0].Parts[0].Text != "message" {
		t.Fatalf("unexpected contents: %+v", call.contents)
	}
}

func TestClientEmptyCandidates(t *testing.T) {
	client := &Client{models: &fakeModels{resp: &genai.GenerateContentResponse{}}}

	resp, err := client.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Model:    "gemini-2.5-flash",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Text() != "" {
		t.Fatalf("expected empty text, got %q", resp.Text())
	}
}

func TestClientRequiresUserMessage(t *testing.T) {
	models := &fakeModels{}
	client := &Client{models: models}

	_, err := client.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Model:    "gemini-2.5-flash",
		Messages: []ai.Message{{Role: ai.RoleSystem, Content: "only system"}},
	})
	if err == nil {
		t.Fatal("expected error without user content")
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no remote call, got %d", len(models.calls))
	}
}

func TestClientConvertsAPIError(t *testing.T) {
	quotaErr := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}
	client := &Client{models: &fakeModels{err: quotaErr}}

	_, err := client.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Model:    "gemini-2.5-pro",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "msg"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var perr *ai.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider error, got %T", err)
	}
	if perr.Provider != ai.ProviderGemini || perr.StatusCode != http.StatusTooManyRequests || perr.Code != "RESOURCE_EXHAUSTED" {
		t.Fatalf("unexpected provider error: %+v", perr)
	}
	if ai.Classify(err) != ai.CodeRateLimit {
		t.Fatalf("expected rate limit classification, got %q", ai.Classify(err))
	}
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(context.Background(), ai.DefaultRegistrations()[ai.ProviderGemini], "  ", nil)
	if err == nil {
		t.Fatal("expected error for blank key")
	}
}
