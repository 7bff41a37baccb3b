package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/gateway"
)

// session holds what every AI subcommand needs.
type session struct {
	ctx     context.Context
	logger  *zap.Logger
	gateway *gateway.Gateway
	request *ai.RequestConfig
	format  string
	plain   bool
	out     io.Writer
}

func newSession(cmd *cobra.Command) *session {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	request, err := requestConfig(cmd)
	if err != nil {
		logger.Fatal("parsing request flags", zap.Error(err))
	}

	format, err := outputFormat(cmd)
	if err != nil {
		logger.Fatal("parsing output flag", zap.Error(err))
	}

	plain, _ := cmd.Flags().GetBool("plain")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	g, err := newGateway(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring ai providers", zap.Error(err))
	}

	return &session{
		ctx:     ctx,
		logger:  logger,
		gateway: g,
		request: request,
		format:  format,
		plain:   plain,
		out:     cmd.OutOrStdout(),
	}
}

// finish reports write errors and turns a failed result into exit status 1.
func (s *session) finish(err, failure error) {
	if err != nil {
		s.logger.Fatal("writing output", zap.Error(err))
	}
	_ = s.logger.Sync()
	if failure != nil {
		os.Exit(1)
	}
}

func identity(s string) string { return s }

var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Ask the active AI provider a question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		prompt := strings.Join(args, " ")

		if s.plain {
			_, err := fmt.Fprintln(s.out, gateway.NewLegacy(s.gateway).Chat(s.ctx, prompt, s.request))
			s.finish(err, nil)
			return
		}

		r := s.gateway.Chat(s.ctx, prompt, s.request)
		s.finish(printResult(s.out, s.format, r, identity), resultErr(r))
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Translate text to another language",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		text := strings.Join(args, " ")
		target, _ := cmd.Flags().GetString("to")

		if s.plain {
			_, err := fmt.Fprintln(s.out, gateway.NewLegacy(s.gateway).Translate(s.ctx, text, target, s.request))
			s.finish(err, nil)
			return
		}

		r := s.gateway.Translate(s.ctx, text, target, s.request)
		s.finish(printResult(s.out, s.format, r, identity), resultErr(r))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <prompt>",
	Short: "Ask a question that needs current information",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		prompt := strings.Join(args, " ")

		if s.plain {
			_, err := fmt.Fprintln(s.out, gateway.NewLegacy(s.gateway).SearchChat(s.ctx, prompt, s.request))
			s.finish(err, nil)
			return
		}

		r := s.gateway.SearchChat(s.ctx, prompt, s.request)
		s.finish(printResult(s.out, s.format, r, renderSearch), resultErr(r))
	},
}

func renderSearch(a gateway.SearchAnswer) string {
	if len(a.Sources) == 0 {
		return a.Text
	}
	return a.Text + "\n\nSources:\n- " + strings.Join(a.Sources, "\n- ")
}

var extractCmd = &cobra.Command{
	Use:   "extract <prompt>",
	Short: "Extract structured JSON shaped like an example document",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)

		example, err := loadExample(cmd)
		if err != nil {
			s.logger.Fatal("loading example shape", zap.Error(err))
		}

		r := gateway.Extract(s.ctx, s.gateway, strings.Join(args, " "), example, s.request)
		s.finish(printResult(s.out, s.format, r, renderJSON), resultErr(r))
	},
}

func loadExample(cmd *cobra.Command) (any, error) {
	inline, _ := cmd.Flags().GetString("example")
	file, _ := cmd.Flags().GetString("example-file")

	raw := []byte(inline)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading example file: %w", err)
		}
		raw = data
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("either --example or --example-file is required")
	}

	var example any
	if err := json.Unmarshal(raw, &example); err != nil {
		return nil, fmt.Errorf("example is not valid json: %w", err)
	}
	return example, nil
}

func renderJSON(v any) string {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(pretty)
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, translateCmd, searchCmd, extractCmd} {
		addRequestFlags(c)
		rootCmd.AddCommand(c)
	}

	for _, c := range []*cobra.Command{chatCmd, translateCmd, searchCmd} {
		c.Flags().Bool("plain", false, "print a bare string, errors as \"Error: <message>\"")
	}

	translateCmd.Flags().String("to", "English", "target language")

	extractCmd.Flags().StringP("example", "e", "", "example json document describing the wanted shape")
	extractCmd.Flags().String("example-file", "", "file containing the example json document")
}
