package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	keyFile := writeFile(t, "  sk-from-file\n")
	emptyFile := writeFile(t, "\n\n")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{
			name: "inline value",
			src:  Source{Name: "openai api key", Value: "  sk-inline  "},
			want: "sk-inline",
		},
		{
			name: "file takes precedence",
			src:  Source{Name: "openai api key", Value: "sk-inline", File: keyFile},
			want: "sk-from-file",
		},
		{
			name:    "empty file",
			src:     Source{Name: "gemini api key", File: emptyFile},
			wantErr: "is empty",
		},
		{
			name:    "missing file",
			src:     Source{Name: "gemini api key", File: filepath.Join(t.TempDir(), "absent")},
			wantErr: "reading gemini api key from file",
		},
		{
			name:    "nothing configured",
			src:     Source{},
			wantErr: "secret: not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := Load(Source{Name: "openrouter api key", Value: "   "})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	t.Parallel()

	got, err := LoadOptional(Source{Name: "openrouter api key"})
	if err != nil || got != "" {
		t.Fatalf("expected empty secret without error, got %q, %v", got, err)
	}

	got, err = LoadOptional(Source{Name: "openrouter api key", Value: "sk-or"})
	if err != nil || got != "sk-or" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}

	if _, err := LoadOptional(Source{Name: "openrouter api key", File: "/nonexistent/key"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
