package gateway

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/logger"
	"github.com/spigell/jobfinder/internal/utils"
)

const (
	MsgNoResponse       = "No response returned from AI service"
	MsgValidationFailed = "Provider validation failed"
	msgUnknownError     = "Unknown error occurred"

	maxLogLength = 200
)

const (
	chatInstruction      = "You are a helpful assistant. Provide accurate, helpful, and engaging responses."
	translateInstruction = "You are a professional translator. Translate the given text accurately while preserving its meaning, tone, and formatting. Return only the translation."
	searchInstruction    = "You are a helpful assistant with access to current information. Provide accurate, up-to-date answers, and advise the user to verify important details with official sources."
)

// SearchAnswer is the payload of SearchChat. Sources is always empty: no
// retrieval backend is wired, the operation only switches to a stronger model
// and a search oriented instruction.
type SearchAnswer struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// Completion is the payload of Complete.
type Completion struct {
	Content      string   `json:"content"`
	Usage        ai.Usage `json:"usage"`
	FinishReason string   `json:"finish_reason"`
}

type call struct {
	operation   string
	messages    []ai.Message
	purpose     ai.Purpose
	temperature float64
	maxTokens   int
}

// completion is the outcome of one round trip, before it is shaped into a Result.
type completion struct {
	provider     ai.Provider
	model        string
	text         string
	usage        ai.Usage
	finishReason string
	failure      *failure
}

type failure struct {
	message string
	code    ai.ErrorCode
}

func failed[T any](c completion) ai.Result[T] {
	return ai.Fail[T](c.failure.message, c.provider, c.failure.code)
}

func instructed(system, user string) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: system},
		{Role: ai.RoleUser, Content: user},
	}
}

// Complete runs a chat completion over a caller supplied conversation.
// Messages are sent as given, no system instruction is added.
func (g *Gateway) Complete(ctx context.Context, messages []ai.Message, cfg *ai.RequestConfig) ai.Result[Completion] {
	c := g.complete(ctx, call{
		operation:   "completion",
		messages:    messages,
		purpose:     ai.PurposeChat,
		temperature: 0.7,
		maxTokens:   2000,
	}, cfg)
	if c.failure != nil {
		return failed[Completion](c)
	}
	return ai.Succeed(Completion{
		Content:      c.text,
		Usage:        c.usage,
		FinishReason: c.finishReason,
	}, c.provider, c.model)
}

// Chat answers a free form prompt.
func (g *Gateway) Chat(ctx context.Context, prompt string, cfg *ai.RequestConfig) ai.Result[string] {
	c := g.complete(ctx, call{
		operation:   "chat",
		messages:    instructed(chatInstruction, prompt),
		purpose:     ai.PurposeChat,
		temperature: 0.7,
		maxTokens:   2000,
	}, cfg)
	if c.failure != nil {
		return failed[string](c)
	}
	return ai.Succeed(c.text, c.provider, c.model)
}

// Translate translates text into targetLanguage.
func (g *Gateway) Translate(ctx context.Context, text, targetLanguage string, cfg *ai.RequestConfig) ai.Result[string] {
	c := g.complete(ctx, call{
		operation:   "translate",
		messages:    instructed(translateInstruction, fmt.Sprintf("Translate the following text to %s: \"%s\"", targetLanguage, text)),
		purpose:     ai.PurposeChat,
		temperature: 0.3,
		maxTokens:   1000,
	}, cfg)
	if c.failure != nil {
		return failed[string](c)
	}
	return ai.Succeed(c.text, c.provider, c.model)
}

// SearchChat answers a prompt that needs current information using the
// advanced model tier.
func (g *Gateway) SearchChat(ctx context.Context, prompt string, cfg *ai.RequestConfig) ai.Result[SearchAnswer] {
	c := g.complete(ctx, call{
		operation:   "search_chat",
		messages:    instructed(searchInstruction, prompt),
		purpose:     ai.PurposeChatAdvanced,
		temperature: 0.7,
		maxTokens:   2000,
	}, cfg)
	if c.failure != nil {
		return failed[SearchAnswer](c)
	}
	return ai.Succeed(SearchAnswer{Text: c.text, Sources: []string{}}, c.provider, c.model)
}

// Validate sends a tiny probe to confirm credentials and connectivity.
func (g *Gateway) Validate(ctx context.Context, preference ai.Provider) ai.Result[bool] {
	target, ok := g.resolve(preference)
	if !ok {
		return ai.Fail[bool](MsgNoProvider, "", "")
	}

	model := target.reg.Model(ai.PurposeChat)
	log := logger.WithOperation(logger.WithCommonFields(g.logger, target.provider.String(), model), "validate")

	resp, err := target.client.CreateChatCompletion(ctx, ai.ChatRequest{
		Model:     model,
		Messages:  []ai.Message{{Role: ai.RoleUser, Content: "Hello"}},
		MaxTokens: 5,
	})
	if err != nil {
		log.Warn("ai provider validation failed", zap.Error(err))
		return ai.Fail[bool](fmt.Sprintf("%s: %s", MsgValidationFailed, errorMessage(err)), target.provider, ai.Classify(err))
	}

	if resp.Text() == "" {
		log.Warn("ai provider validation returned empty response")
		return ai.Fail[bool](MsgValidationFailed, target.provider, "")
	}

	log.Info("ai provider validated")
	return ai.Succeed(true, target.provider, model)
}

// complete runs the shared resolve, request, normalize path.
func (g *Gateway) complete(ctx context.Context, c call, cfg *ai.RequestConfig) completion {
	target, ok := g.resolve(cfg.ProviderPreference())
	if !ok {
		g.logger.Debug("no ai client for request",
			zap.String(logger.FieldOperation, c.operation),
			zap.String("preference", cfg.ProviderPreference().String()),
		)
		return completion{failure: &failure{message: MsgNoProvider}}
	}

	model := cfg.ModelOverride()
	if model == "" {
		model = target.reg.Model(c.purpose)
	}

	out := completion{provider: target.provider, model: model}
	log := logger.WithOperation(logger.WithCommonFields(g.logger, target.provider.String(), model), c.operation)

	temperature := cfg.TemperatureOr(c.temperature)
	req := ai.ChatRequest{
		Model:       model,
		Messages:    c.messages,
		Temperature: &temperature,
		MaxTokens:   cfg.MaxTokensOr(c.maxTokens),
	}

	prompt := lastUserTurn(c.messages)
	log.Debug("ai chat completion request",
		zap.Int("messages", len(c.messages)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, maxLogLength)),
		zap.Float64("temperature", temperature),
		zap.Int("max_tokens", req.MaxTokens),
	)

	resp, err := target.client.CreateChatCompletion(ctx, req)
	if err != nil {
		code := ai.Classify(err)
		log.Error("ai chat completion failed", zap.Error(err), zap.String("code", string(code)))
		out.failure = &failure{message: errorMessage(err), code: code}
		return out
	}

	text := resp.Text()
	log.Debug("ai chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, maxLogLength)),
		zap.String("finish_reason", resp.FinishReason()),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	if text == "" {
		out.failure = &failure{message: MsgNoResponse}
		return out
	}

	out.text = text
	out.usage = resp.Usage
	out.finishReason = resp.FinishReason()
	return out
}

func lastUserTurn(messages []ai.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func errorMessage(err error) string {
	if err == nil {
		return msgUnknownError
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return msgUnknownError
}
