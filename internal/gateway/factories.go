package gateway

import (
	"context"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/ai/gemini"
	"github.com/spigell/jobfinder/internal/ai/openai"
)

const (
	defaultAppReferer = "https://github.com/spigell/jobfinder"
	defaultAppTitle   = "Job Finder"
)

func defaultFactories(cfg Config) map[ai.Provider]Factory {
	referer := cfg.AppReferer
	if referer == "" {
		referer = defaultAppReferer
	}
	title := cfg.AppTitle
	if title == "" {
		title = defaultAppTitle
	}

	return map[ai.Provider]Factory{
		ai.ProviderOpenAI: func(_ context.Context, reg ai.Registration, apiKey string) (ai.Completer, error) {
			return openai.New(reg, apiKey, openai.WithHTTPClient(cfg.HTTPClient))
		},
		ai.ProviderOpenRouter: func(_ context.Context, reg ai.Registration, apiKey string) (ai.Completer, error) {
			return openai.NewOpenRouter(reg, apiKey, referer, title, openai.WithHTTPClient(cfg.HTTPClient))
		},
		ai.ProviderGemini: func(ctx context.Context, reg ai.Registration, apiKey string) (ai.Completer, error) {
			return gemini.New(ctx, reg, apiKey, cfg.HTTPClient)
		},
	}
}
