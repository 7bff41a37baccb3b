package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/logger"
	"github.com/spigell/jobfinder/internal/utils"
)

const MsgParseFailed = "Failed to parse JSON response"

const extractInstruction = "You are a data extraction assistant. Respond with valid JSON only. Do not include explanations, prose, or markdown code fences."

// A language tag only counts as one when a line break follows it, so a one
// line fence such as ```42``` keeps its payload.
var fencePattern = regexp.MustCompile("(?s)^```(?:[A-Za-z0-9_-]+[ \t]*\r?\n|[ \t]*\r?\n?)(.*?)\r?\n?```$")

// Extract asks the model for a JSON document shaped like example and decodes it
// into T. The decoded value is not validated beyond a successful unmarshal.
func Extract[T any](ctx context.Context, g *Gateway, prompt string, example T, cfg *ai.RequestConfig) ai.Result[T] {
	shape, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return ai.Fail[T](fmt.Sprintf("encode example shape: %v", err), "", "")
	}

	c := g.complete(ctx, call{
		operation:   "extract",
		messages:    instructed(extractInstruction, fmt.Sprintf("%s\n\nRespond with JSON matching this structure:\n%s", prompt, shape)),
		purpose:     ai.PurposeChat,
		temperature: 0.1,
		maxTokens:   2000,
	}, cfg)
	if c.failure != nil {
		return failed[T](c)
	}

	var data T
	if err := json.Unmarshal([]byte(stripCodeFence(c.text)), &data); err != nil {
		g.logger.Warn("failed to parse ai json response",
			zap.String(logger.FieldProvider, c.provider.String()),
			zap.String("response_preview", utils.TruncateForLog(c.text, maxLogLength)),
			zap.Error(err),
		)
		return ai.Fail[T](MsgParseFailed, c.provider, ai.CodeParseError)
	}

	return ai.Succeed(data, c.provider, c.model)
}

// stripCodeFence removes a markdown fence that wraps the whole text.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
