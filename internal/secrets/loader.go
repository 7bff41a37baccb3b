package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when a source has neither a value nor a file.
var ErrNotConfigured = errors.New("not configured")

// Source describes how to load a credential.
type Source struct {
	// Name is used in error messages, e.g. "openrouter api key".
	Name string
	// Value is an inline secret value provided via configuration or environment.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
}

// IsEmpty reports whether neither Value nor File is set.
func (s Source) IsEmpty() bool {
	return strings.TrimSpace(s.Value) == "" && strings.TrimSpace(s.File) == ""
}

// Load returns the resolved secret value from the provided source. The returned
// secret is always trimmed. An error wrapping ErrNotConfigured is returned when
// the source is empty.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}

	return secret, nil
}

// LoadOptional behaves like Load but treats an empty source as an empty secret.
// A provider without credentials is disabled rather than misconfigured.
func LoadOptional(src Source) (string, error) {
	if src.IsEmpty() {
		return "", nil
	}
	return Load(src)
}
