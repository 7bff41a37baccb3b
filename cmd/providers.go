package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/gateway"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List AI providers, their models and which one is active",
	Run: func(cmd *cobra.Command, _ []string) {
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

		if err := printProviders(cmd.OutOrStdout(), format, g); err != nil {
			logger.Fatal("writing output", zap.Error(err))
		}
	},
}

type providerReport struct {
	gateway.Status
	Models map[ai.Provider]map[ai.Purpose]string `json:"models"`
}

func printProviders(w io.Writer, format string, g *gateway.Gateway) error {
	status := g.Status()

	if format != outputText {
		report := providerReport{Status: status, Models: make(map[ai.Provider]map[ai.Purpose]string)}
		for _, p := range ai.Providers() {
			if reg, ok := g.Registration(p); ok {
				report.Models[p] = reg.Models
			}
		}
		return encode(w, format, report)
	}

	for _, p := range ai.Providers() {
		mark := color.RedString("✗")
		if status.Providers[p] {
			mark = color.GreenString("✓")
		}

		line := fmt.Sprintf("%s %s", mark, p)
		if p == status.Active {
			line += color.CyanString(" (active)")
		}
		if reg, ok := g.Registration(p); ok {
			line += fmt.Sprintf("  chat=%s advanced=%s fast=%s",
				reg.Model(ai.PurposeChat), reg.Model(ai.PurposeChatAdvanced), reg.Model(ai.PurposeChatFast))
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if status.Active == "" {
		_, err := fmt.Fprintln(w, color.YellowString(gateway.MsgNoProvider))
		return err
	}
	return nil
}

func init() {
	addOutputFlag(providersCmd)
	rootCmd.AddCommand(providersCmd)
}
