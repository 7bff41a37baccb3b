package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode is the stable classification attached to failed results.
type ErrorCode string

const (
	CodeInvalidAPIKey      ErrorCode = "INVALID_API_KEY"
	CodeRateLimit          ErrorCode = "RATE_LIMIT"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeParseError         ErrorCode = "PARSE_ERROR"
)

// Result is the outcome of a gateway operation. Callers must check Success
// before reading Data.
type Result[T any] struct {
	Success  bool
	Data     T
	Provider Provider
	Model    string
	Error    string
	Code     ErrorCode
}

// Succeed builds a successful result.
func Succeed[T any](data T, provider Provider, model string) Result[T] {
	return Result[T]{Success: true, Data: data, Provider: provider, Model: model}
}

// Fail builds a failed result. provider and code may be empty.
func Fail[T any](message string, provider Provider, code ErrorCode) Result[T] {
	return Result[T]{Error: message, Provider: provider, Code: code}
}

type resultJSON[T any] struct {
	Success   bool      `json:"success"`
	Data      *T        `json:"data"`
	Error     string    `json:"error,omitempty"`
	Provider  Provider  `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	Code      ErrorCode `json:"code,omitempty"`
	Timestamp string    `json:"timestamp"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := resultJSON[T]{
		Success:   r.Success,
		Error:     r.Error,
		Provider:  r.Provider,
		Model:     r.Model,
		Code:      r.Code,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if r.Success {
		data := r.Data
		out.Data = &data
	}
	return json.Marshal(out)
}

// ProviderError describes a failed remote call in provider independent terms.
type ProviderError struct {
	Provider   Provider
	StatusCode int
	// Code is the provider's own error code, e.g. "invalid_api_key" or "RESOURCE_EXHAUSTED".
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" && e.StatusCode != 0 {
		msg = http.StatusText(e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, msg)
	}
	if msg == "" {
		return string(e.Provider)
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Classify maps a remote failure onto the error taxonomy.
// It returns an empty code when nothing matches.
func Classify(err error) ErrorCode {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return ""
	}

	switch {
	case perr.StatusCode == http.StatusUnauthorized, perr.StatusCode == http.StatusForbidden:
		return CodeInvalidAPIKey
	case perr.StatusCode == http.StatusTooManyRequests:
		return CodeRateLimit
	case perr.StatusCode >= http.StatusInternalServerError:
		return CodeServiceUnavailable
	}

	switch strings.TrimSpace(perr.Code) {
	case "invalid_api_key", "UNAUTHENTICATED", "PERMISSION_DENIED":
		return CodeInvalidAPIKey
	case "rate_limit_exceeded", "insufficient_quota", "RESOURCE_EXHAUSTED":
		return CodeRateLimit
	case "server_error", "UNAVAILABLE", "INTERNAL":
		return CodeServiceUnavailable
	}

	return ""
}
