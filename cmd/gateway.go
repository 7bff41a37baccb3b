package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/gateway"
	"github.com/spigell/jobfinder/internal/secrets"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func newGateway(ctx context.Context, config *Config, logger *zap.Logger) (*gateway.Gateway, error) {
	cfg, err := gatewayConfig(config.AI, logger)
	if err != nil {
		return nil, err
	}
	return gateway.New(ctx, cfg, logger.Named("gateway")), nil
}

func gatewayConfig(config *AIConfig, logger *zap.Logger) (gateway.Config, error) {
	if config == nil {
		config = &AIConfig{}
	}

	var cfg gateway.Config
	var err error

	if cfg.Credentials.OpenAI, err = loadKey(ai.ProviderOpenAI, config.OpenAI); err != nil {
		return cfg, err
	}
	if cfg.Credentials.OpenRouter, err = loadKey(ai.ProviderOpenRouter, config.OpenRouter); err != nil {
		return cfg, err
	}
	if cfg.Credentials.Gemini, err = loadKey(ai.ProviderGemini, config.Gemini); err != nil {
		return cfg, err
	}

	cfg.Registrations = make(map[ai.Provider]ai.Registration)
	for p, pc := range map[ai.Provider]*ProviderConfig{
		ai.ProviderOpenAI:     config.OpenAI,
		ai.ProviderOpenRouter: config.OpenRouter,
		ai.ProviderGemini:     config.Gemini,
	} {
		if pc == nil {
			continue
		}
		cfg.Registrations[p] = registration(p, pc, logger)
	}

	if config.OpenRouter != nil {
		cfg.AppReferer = strings.TrimSpace(config.OpenRouter.Referer)
		cfg.AppTitle = strings.TrimSpace(config.OpenRouter.Title)
	}

	return cfg, nil
}

func loadKey(p ai.Provider, pc *ProviderConfig) (string, error) {
	if pc == nil {
		return "", nil
	}
	key, err := secrets.LoadOptional(secrets.Source{
		Name:  p.String() + " api key",
		Value: pc.APIKey,
		File:  pc.APIKeyFile,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.%s.api-key or ai.%s.api-key-file)", err, p, p)
	}
	return key, nil
}

func registration(p ai.Provider, pc *ProviderConfig, logger *zap.Logger) ai.Registration {
	reg := ai.Registration{Provider: p, BaseURL: pc.BaseURL, Models: make(map[ai.Purpose]string)}
	for purpose, model := range pc.Models {
		switch ai.Purpose(purpose) {
		case ai.PurposeChat, ai.PurposeChatAdvanced, ai.PurposeChatFast:
			reg.Models[ai.Purpose(purpose)] = model
		default:
			logger.Warn("ignoring unknown model purpose",
				zap.String("provider", p.String()),
				zap.String("purpose", purpose),
			)
		}
	}
	return reg
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "p", "auto", "ai provider: auto, openai, openrouter or gemini")
	cmd.Flags().StringP("model", "m", "", "model override")
	cmd.Flags().Float64P("temperature", "t", 0, "sampling temperature (operation default when unset)")
	cmd.Flags().Int("max-tokens", 0, "maximum output tokens (operation default when unset)")
	addOutputFlag(cmd)
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputText, "output format: text, json or yaml")
}

// requestConfig builds a RequestConfig from the flags that were set explicitly.
func requestConfig(cmd *cobra.Command) (*ai.RequestConfig, error) {
	flags := cmd.Flags()

	raw, err := flags.GetString("provider")
	if err != nil {
		return nil, err
	}
	provider, err := ai.ParseProvider(raw)
	if err != nil {
		return nil, err
	}

	model, err := flags.GetString("model")
	if err != nil {
		return nil, err
	}

	cfg := &ai.RequestConfig{Provider: provider, Model: strings.TrimSpace(model)}

	if flags.Changed("temperature") {
		t, err := flags.GetFloat64("temperature")
		if err != nil {
			return nil, err
		}
		cfg.Temperature = ai.Float(t)
	}
	if flags.Changed("max-tokens") {
		n, err := flags.GetInt("max-tokens")
		if err != nil {
			return nil, err
		}
		cfg.MaxTokens = ai.Int(n)
	}

	return cfg, nil
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	switch format = strings.ToLower(strings.TrimSpace(format)); format {
	case outputText, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// encode writes v as indented JSON or as YAML.
func encode(w io.Writer, format string, v any) error {
	if format == outputYAML {
		// Round trip through JSON so that YAML keys match the JSON field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders a result. Text output prints the payload on success and
// a colored error line otherwise; render formats the payload.
func printResult[T any](w io.Writer, format string, r ai.Result[T], render func(T) string) error {
	if format != outputText {
		return encode(w, format, r)
	}

	if !r.Success {
		line := color.RedString("✗ %s", r.Error)
		if r.Code != "" {
			line += color.YellowString(" [%s]", r.Code)
		}
		if r.Provider != "" {
			line += fmt.Sprintf(" (%s)", r.Provider)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}

	_, err := fmt.Fprintln(w, render(r.Data))
	return err
}

func resultErr[T any](r ai.Result[T]) error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%s", r.Error)
}
