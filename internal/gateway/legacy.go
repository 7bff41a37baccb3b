package gateway

import (
	"context"

	"github.com/spigell/jobfinder/internal/ai"
)

// Legacy exposes the gateway to callers that expect bare strings instead of
// results. Failures are folded into the returned text.
type Legacy struct {
	gateway *Gateway
}

func NewLegacy(g *Gateway) *Legacy {
	return &Legacy{gateway: g}
}

// LegacyText collapses a result into its text or "Error: {message}".
func LegacyText(r ai.Result[string]) string {
	if r.Success {
		return r.Data
	}
	return "Error: " + r.Error
}

func (l *Legacy) Chat(ctx context.Context, prompt string, cfg *ai.RequestConfig) string {
	return LegacyText(l.gateway.Chat(ctx, prompt, cfg))
}

// Translate returns the original text when translation fails.
func (l *Legacy) Translate(ctx context.Context, text, targetLanguage string, cfg *ai.RequestConfig) string {
	r := l.gateway.Translate(ctx, text, targetLanguage, cfg)
	if !r.Success {
		return text
	}
	return r.Data
}

func (l *Legacy) SearchChat(ctx context.Context, prompt string, cfg *ai.RequestConfig) string {
	r := l.gateway.SearchChat(ctx, prompt, cfg)
	if !r.Success {
		return "Error: " + r.Error
	}
	return r.Data.Text
}
