package ai

import (
	"fmt"
	"strings"
)

// Provider identifies a remote LLM vendor.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	// ProviderGemini is the legacy path. It is never selected automatically.
	ProviderGemini Provider = "gemini"

	// ProviderAuto is a preference, not an identity.
	ProviderAuto Provider = "auto"
)

// Purpose selects a model tier inside a provider registration.
type Purpose string

const (
	PurposeChat         Purpose = "chat"
	PurposeChatAdvanced Purpose = "chat-advanced"
	PurposeChatFast     Purpose = "chat-fast"
)

// Providers returns every known provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderOpenRouter, ProviderGemini}
}

// ParseProvider normalizes a user supplied provider preference.
// An empty string is treated as auto.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "", ProviderAuto:
		return ProviderAuto, nil
	case ProviderOpenAI, ProviderOpenRouter, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported ai provider: %s", s)
	}
}

func (p Provider) String() string {
	return string(p)
}

// Registration is the static configuration of a provider.
type Registration struct {
	Provider Provider
	BaseURL  string
	Models   map[Purpose]string
}

// Model returns the model for the purpose, falling back to the chat model.
func (r Registration) Model(purpose Purpose) string {
	if m := strings.TrimSpace(r.Models[purpose]); m != "" {
		return m
	}
	return r.Models[PurposeChat]
}

// DefaultRegistrations returns a fresh copy of the built-in provider table.
func DefaultRegistrations() map[Provider]Registration {
	return map[Provider]Registration{
		ProviderOpenAI: {
			Provider: ProviderOpenAI,
			BaseURL:  "https://api.openai.com/v1",
			Models: map[Purpose]string{
				PurposeChat:         "gpt-3.5-turbo",
				PurposeChatAdvanced: "gpt-4",
				PurposeChatFast:     "gpt-3.5-turbo",
			},
		},
		ProviderOpenRouter: {
			Provider: ProviderOpenRouter,
			BaseURL:  "https://openrouter.ai/api/v1",
			Models: map[Purpose]string{
				PurposeChat:         "microsoft/wizardlm-2-8x22b",
				PurposeChatAdvanced: "anthropic/claude-3.5-sonnet",
				PurposeChatFast:     "meta-llama/llama-3.1-8b-instruct:free",
			},
		},
		ProviderGemini: {
			Provider: ProviderGemini,
			BaseURL:  "https://generativelanguage.googleapis.com/",
			Models: map[Purpose]string{
				PurposeChat:         "gemini-2.5-flash",
				PurposeChatAdvanced: "gemini-2.5-pro",
				PurposeChatFast:     "gemini-2.5-flash-lite",
			},
		},
	}
}
