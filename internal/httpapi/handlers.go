package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/jobfinder/internal/ai"
	"github.com/spigell/jobfinder/internal/gateway"
)

type chatRequest struct {
	Prompt  string         `json:"prompt" validate:"required"`
	Options map[string]any `json:"options"`
}

type translateRequest struct {
	Text           string         `json:"text" validate:"required"`
	TargetLanguage string         `json:"target_language" validate:"required"`
	Options        map[string]any `json:"options"`
}

type messageRequest struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type completionRequest struct {
	Messages []messageRequest `json:"messages" validate:"required,min=1,dive"`
	Options  map[string]any   `json:"options"`
}

// extractRequest keeps the example raw so that scalar shapes such as false or
// 0 count as present.
type extractRequest struct {
	Prompt  string          `json:"prompt" validate:"required"`
	Example json.RawMessage `json:"example"`
	Options map[string]any  `json:"options"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// decodeOptions converts the loose options object of a request into a
// RequestConfig. Numbers sent as strings are accepted.
func decodeOptions(raw map[string]any) (*ai.RequestConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var cfg ai.RequestConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	provider, err := ai.ParseProvider(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	cfg.Provider = provider

	return &cfg, nil
}

// statusFor maps a failed result onto an HTTP status.
func statusFor(code ai.ErrorCode) int {
	switch code {
	case ai.CodeInvalidAPIKey:
		return http.StatusUnauthorized
	case ai.CodeRateLimit:
		return http.StatusTooManyRequests
	case ai.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func respond[T any](c echo.Context, r ai.Result[T]) error {
	if r.Success {
		return c.JSON(http.StatusOK, r)
	}
	return c.JSON(statusFor(r.Code), r)
}

// bind decodes and validates the body, writing a 400 response on failure.
// It returns false when the handler must stop.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, fail(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return false, fail(c, http.StatusBadRequest, "validation_failed", validationMessage(err))
	}
	return true, nil
}

func options(c echo.Context, raw map[string]any) (*ai.RequestConfig, bool, error) {
	cfg, err := decodeOptions(raw)
	if err != nil {
		return nil, false, fail(c, http.StatusBadRequest, "invalid_options", err.Error())
	}
	return cfg, true, nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Version:   s.cfg.Version,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, s.gateway.Status())
}

func (s *Server) complete(c echo.Context) error {
	var req completionRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, ok, err := options(c, req.Options)
	if !ok {
		return err
	}

	messages := make([]ai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	return respond(c, s.gateway.Complete(c.Request().Context(), messages, cfg))
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, ok, err := options(c, req.Options)
	if !ok {
		return err
	}

	return respond(c, s.gateway.Chat(c.Request().Context(), req.Prompt, cfg))
}

func (s *Server) translate(c echo.Context) error {
	var req translateRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, ok, err := options(c, req.Options)
	if !ok {
		return err
	}

	return respond(c, s.gateway.Translate(c.Request().Context(), req.Text, req.TargetLanguage, cfg))
}

func (s *Server) search(c echo.Context) error {
	var req chatRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, ok, err := options(c, req.Options)
	if !ok {
		return err
	}

	return respond(c, s.gateway.SearchChat(c.Request().Context(), req.Prompt, cfg))
}

func (s *Server) extract(c echo.Context) error {
	var req extractRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	raw := bytes.TrimSpace(req.Example)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fail(c, http.StatusBadRequest, "validation_failed", `field "Example" failed on the "required" rule`)
	}
	var example any
	if err := json.Unmarshal(raw, &example); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
	}

	cfg, ok, err := options(c, req.Options)
	if !ok {
		return err
	}

	return respond(c, gateway.Extract(c.Request().Context(), s.gateway, req.Prompt, example, cfg))
}

func (s *Server) validate(c echo.Context) error {
	provider, err := ai.ParseProvider(c.Param("provider"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_provider", err.Error())
	}

	r := s.gateway.Validate(c.Request().Context(), provider)
	if !r.Success {
		return c.JSON(http.StatusBadRequest, r)
	}
	return c.JSON(http.StatusOK, r)
}
