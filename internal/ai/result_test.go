package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect ErrorCode
	}{
		{name: "plain error", err: errors.New("dial tcp: timeout"), expect: ""},
		{name: "unauthorized", err: &ProviderError{StatusCode: http.StatusUnauthorized}, expect: CodeInvalidAPIKey},
		{name: "forbidden", err: &ProviderError{StatusCode: http.StatusForbidden}, expect: CodeInvalidAPIKey},
		{name: "too many requests", err: &ProviderError{StatusCode: http.StatusTooManyRequests}, expect: CodeRateLimit},
		{name: "bad gateway", err: &ProviderError{StatusCode: http.StatusBadGateway}, expect: CodeServiceUnavailable},
		{name: "bad request", err: &ProviderError{StatusCode: http.StatusBadRequest}, expect: ""},
		{name: "openai key code", err: &ProviderError{Code: "invalid_api_key"}, expect: CodeInvalidAPIKey},
		{name: "quota code", err: &ProviderError{Code: "insufficient_quota"}, expect: CodeRateLimit},
		{name: "gemini status", err: &ProviderError{Code: "RESOURCE_EXHAUSTED"}, expect: CodeRateLimit},
		{name: "gemini unavailable", err: &ProviderError{Code: "UNAVAILABLE"}, expect: CodeServiceUnavailable},
		{name: "wrapped", err: fmt.Errorf("call: %w", &ProviderError{StatusCode: http.StatusServiceUnavailable}), expect: CodeServiceUnavailable},
		{name: "unknown code", err: &ProviderError{Code: "context_length_exceeded"}, expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.err); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: ProviderOpenAI, StatusCode: http.StatusTooManyRequests, Message: "slow down"}
	if got := err.Error(); got != "openai: status 429: slow down" {
		t.Fatalf("unexpected message: %q", got)
	}

	inner := errors.New("connection refused")
	err = &ProviderError{Provider: ProviderGemini, Err: inner}
	if got := err.Error(); got != "gemini: connection refused" {
		t.Fatalf("unexpected message: %q", got)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped error to be reachable")
	}
}

func TestResultJSON(t *testing.T) {
	ok, err := json.Marshal(Succeed("hello", ProviderOpenRouter, "m1"))
	if err != nil {
		t.Fatalf("marshal success: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(ok, &decoded); err != nil {
		t.Fatalf("unmarshal success: %v", err)
	}
	if decoded["success"] != true || decoded["data"] != "hello" || decoded["provider"] != "openrouter" {
		t.Fatalf("unexpected success payload: %s", ok)
	}
	if _, found := decoded["error"]; found {
		t.Fatalf("success payload must not carry error: %s", ok)
	}

	failed, err := json.Marshal(Fail[string]("boom", ProviderOpenAI, CodeRateLimit))
	if err != nil {
		t.Fatalf("marshal failure: %v", err)
	}

	decoded = nil
	if err := json.Unmarshal(failed, &decoded); err != nil {
		t.Fatalf("unmarshal failure: %v", err)
	}
	if decoded["success"] != false || decoded["error"] != "boom" || decoded["code"] != "RATE_LIMIT" {
		t.Fatalf("unexpected failure payload: %s", failed)
	}
	if decoded["data"] != nil {
		t.Fatalf("failure payload must not carry data: %s", failed)
	}
}

func TestParseProvider(t *testing.T) {
	t.Parallel()

	for input, expect := range map[string]Provider{
		"":             ProviderAuto,
		"auto":         ProviderAuto,
		" OpenRouter ": ProviderOpenRouter,
		"openai":       ProviderOpenAI,
		"gemini":       ProviderGemini,
	} {
		got, err := ParseProvider(input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if got != expect {
			t.Fatalf("%q: expected %q, got %q", input, expect, got)
		}
	}

	if _, err := ParseProvider("anthropic"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestRegistrationModelFallsBackToChat(t *testing.T) {
	reg := Registration{Models: map[Purpose]string{PurposeChat: "base"}}
	if got := reg.Model(PurposeChatAdvanced); got != "base" {
		t.Fatalf("expected chat fallback, got %q", got)
	}

	regs := DefaultRegistrations()
	if got := regs[ProviderOpenRouter].Model(PurposeChatAdvanced); got != "anthropic/claude-3.5-sonnet" {
		t.Fatalf("unexpected advanced model: %q", got)
	}

	regs[ProviderOpenAI].Models[PurposeChat] = "mutated"
	if DefaultRegistrations()[ProviderOpenAI].Models[PurposeChat] != "gpt-3.5-turbo" {
		t.Fatalf("default registrations must not share state")
	}
}
