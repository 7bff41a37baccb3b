package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/gateway"
)

const promptAll = "all"

var validateCmd = &cobra.Command{
	Use:   "validate [provider]",
	Short: "Check credentials and connectivity of AI providers",
	Long: "Send a tiny probe request to a provider. Without an argument the provider " +
		"is chosen interactively; \"all\" probes every configured provider.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		format, err := outputFormat(cmd)
		if err != nil {
			logger.Fatal("parsing output flag", zap.Error(err))
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		g, err := newGateway(ctx, config, logger)
		if err != nil {
			logger.Fatal("configuring ai providers", zap.Error(err))
		}

		choice := ""
		if len(args) == 1 {
			choice = args[0]
		} else {
			choice, err = pickProvider(g.AvailableProviders())
			if err != nil {
				logger.Fatal("choosing a provider", zap.Error(err))
			}
		}

		targets, err := validationTargets(choice, g.AvailableProviders())
		if err != nil {
			logger.Fatal("parsing provider", zap.Error(err))
		}

		failed, err := validateProviders(ctx, cmd.OutOrStdout(), format, g, targets)
		if err != nil {
			logger.Fatal("writing output", zap.Error(err))
		}

		_ = logger.Sync()
		if failed {
			os.Exit(1)
		}
	},
}

// pickProvider asks the user which provider to probe. With a single
// provider there is nothing to ask.
func pickProvider(available []ai.Provider) (string, error) {
	switch len(available) {
	case 0:
		return ai.ProviderAuto.String(), nil
	case 1:
		return available[0].String(), nil
	}

	items := make([]string, 0, len(available)+1)
	for _, p := range available {
		items = append(items, p.String())
	}
	items = append(items, promptAll)

	prompt := promptui.Select{
		Label: "Which provider should be validated?",
		Items: items,
	}
	_, choice, err := prompt.Run()
	return choice, err
}

func validationTargets(choice string, available []ai.Provider) ([]ai.Provider, error) {
	if choice == promptAll {
		if len(available) == 0 {
			return []ai.Provider{ai.ProviderAuto}, nil
		}
		return available, nil
	}

	p, err := ai.ParseProvider(choice)
	if err != nil {
		return nil, err
	}
	return []ai.Provider{p}, nil
}

// validateProviders probes every target and reports whether any failed.
func validateProviders(ctx context.Context, w io.Writer, format string, g *gateway.Gateway, targets []ai.Provider) (bool, error) {
	results := make(map[ai.Provider]ai.Result[bool], len(targets))
	failed := false

	for _, p := range targets {
		r := g.Validate(ctx, p)
		results[p] = r
		if !r.Success {
			failed = true
		}

		if format != outputText {
			continue
		}

		name := p.String()
		if r.Provider != "" {
			name = r.Provider.String()
		}

		var line string
		if r.Success {
			line = fmt.Sprintf("%s %s (%s)", color.GreenString("✓"), name, r.Model)
		} else {
			line = fmt.Sprintf("%s %s: %s", color.RedString("✗"), name, r.Error)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return failed, err
		}
	}

	if format != outputText {
		return failed, encode(w, format, results)
	}

	return failed, nil
}

func init() {
	addOutputFlag(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
