package gateway

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/logger"
	"github.com/spigell/jobfinder/internal/utils"
)

// MsgNoProvider is returned when no client can serve a request.
const MsgNoProvider = "No AI provider available. Please configure API keys."

// autoPriority is the order used to pick the active provider.
// Gemini is deliberately absent: it is only reachable by explicit preference.
var autoPriority = []ai.Provider{ai.ProviderOpenRouter, ai.ProviderOpenAI}

// Credentials holds the API key of every provider. Blank keys disable the provider.
type Credentials struct {
	OpenAI     string
	OpenRouter string
	Gemini     string
}

func (c Credentials) key(p ai.Provider) string {
	switch p {
	case ai.ProviderOpenAI:
		return c.OpenAI
	case ai.ProviderOpenRouter:
		return c.OpenRouter
	case ai.ProviderGemini:
		return c.Gemini
	default:
		return ""
	}
}

// Config is consumed once by New.
type Config struct {
	Credentials Credentials
	// Registrations overrides entries of ai.DefaultRegistrations.
	Registrations map[ai.Provider]ai.Registration
	// AppReferer and AppTitle identify the application to OpenRouter.
	AppReferer string
	AppTitle   string
	HTTPClient *http.Client
}

// Factory builds a client for one provider.
type Factory func(ctx context.Context, reg ai.Registration, apiKey string) (ai.Completer, error)

// Option customizes gateway construction.
type Option func(*settings)

type settings struct {
	factories map[ai.Provider]Factory
}

// WithFactory replaces the client constructor of a provider.
func WithFactory(p ai.Provider, f Factory) Option {
	return func(s *settings) {
		s.factories[p] = f
	}
}

// Gateway routes AI operations to one of the configured providers.
// It holds no mutable state after New and is safe for concurrent use.
type Gateway struct {
	clients       map[ai.Provider]ai.Completer
	registrations map[ai.Provider]ai.Registration
	active        ai.Provider
	logger        *zap.Logger
}

// New probes the credentials, builds a client for every configured provider
// and selects the active one. A provider whose client cannot be built is
// logged and skipped; New itself never fails.
func New(ctx context.Context, cfg Config, log *zap.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}

	s := &settings{factories: defaultFactories(cfg)}
	for _, opt := range opts {
		opt(s)
	}

	g := &Gateway{
		clients:       make(map[ai.Provider]ai.Completer),
		registrations: mergeRegistrations(cfg.Registrations),
		logger:        log,
	}

	for _, p := range ai.Providers() {
		key := strings.TrimSpace(cfg.Credentials.key(p))
		if key == "" {
			continue
		}

		factory, ok := s.factories[p]
		if !ok {
			continue
		}

		client, err := factory(ctx, g.registrations[p], key)
		if err != nil {
			log.Warn("failed to initialize ai client", zap.String(logger.FieldProvider, p.String()), zap.Error(err))
			continue
		}
		if client == nil {
			continue
		}

		g.clients[p] = client
		log.Info("ai client initialized",
			zap.String(logger.FieldProvider, p.String()),
			zap.String("base_url", g.registrations[p].BaseURL),
			zap.String("api_key", utils.MaskSecret(key)),
		)
	}

	for _, p := range autoPriority {
		if _, ok := g.clients[p]; ok {
			g.active = p
			break
		}
	}

	if g.active == "" {
		log.Warn("no ai provider is active; ai features are disabled",
			zap.String("hint", "set OPENROUTER_API_KEY or OPENAI_API_KEY"),
		)
	} else {
		log.Info("active ai provider selected", zap.String(logger.FieldProvider, g.active.String()))
	}

	return g
}

func mergeRegistrations(overrides map[ai.Provider]ai.Registration) map[ai.Provider]ai.Registration {
	regs := ai.DefaultRegistrations()
	for p, override := range overrides {
		reg, ok := regs[p]
		if !ok {
			continue
		}
		if base := strings.TrimSpace(override.BaseURL); base != "" {
			reg.BaseURL = base
		}
		for purpose, model := range override.Models {
			if model = strings.TrimSpace(model); model != "" {
				reg.Models[purpose] = model
			}
		}
		regs[p] = reg
	}
	return regs
}

// ActiveProvider returns the provider used for auto requests or an empty value.
func (g *Gateway) ActiveProvider() ai.Provider {
	return g.active
}

// AvailableProviders lists the providers with an initialized client.
func (g *Gateway) AvailableProviders() []ai.Provider {
	available := make([]ai.Provider, 0, len(g.clients))
	for _, p := range ai.Providers() {
		if _, ok := g.clients[p]; ok {
			available = append(available, p)
		}
	}
	return available
}

// Status summarizes provider availability.
type Status struct {
	Providers map[ai.Provider]bool `json:"providers"`
	Active    ai.Provider          `json:"active_provider"`
	Available []ai.Provider        `json:"available_providers"`
}

func (g *Gateway) Status() Status {
	providers := make(map[ai.Provider]bool, len(ai.Providers()))
	for _, p := range ai.Providers() {
		_, ok := g.clients[p]
		providers[p] = ok
	}
	return Status{
		Providers: providers,
		Active:    g.active,
		Available: g.AvailableProviders(),
	}
}

// Registration returns the effective registration of a provider.
func (g *Gateway) Registration(p ai.Provider) (ai.Registration, bool) {
	reg, ok := g.registrations[p]
	return reg, ok
}

type resolved struct {
	provider ai.Provider
	client   ai.Completer
	reg      ai.Registration
}

// resolve maps a preference onto an initialized client.
func (g *Gateway) resolve(preference ai.Provider) (resolved, bool) {
	target := preference
	if target == "" || target == ai.ProviderAuto {
		target = g.active
	}
	if target == "" {
		return resolved{}, false
	}

	client, ok := g.clients[target]
	if !ok {
		return resolved{}, false
	}

	return resolved{provider: target, client: client, reg: g.registrations[target]}, true
}
