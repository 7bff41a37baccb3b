package ai

// RequestConfig holds the optional per-call overrides. A nil *RequestConfig
// means every default applies. Values are forwarded to the provider as is.
type RequestConfig struct {
	Provider    Provider `mapstructure:"provider" json:"provider,omitempty"`
	Model       string   `mapstructure:"model" json:"model,omitempty"`
	Temperature *float64 `mapstructure:"temperature" json:"temperature,omitempty"`
	MaxTokens   *int     `mapstructure:"max_tokens" json:"max_tokens,omitempty"`
}

// ProviderPreference returns the requested provider or auto.
func (c *RequestConfig) ProviderPreference() Provider {
	if c == nil || c.Provider == "" {
		return ProviderAuto
	}
	return c.Provider
}

// ModelOverride returns the requested model or an empty string.
func (c *RequestConfig) ModelOverride() string {
	if c == nil {
		return ""
	}
	return c.Model
}

// TemperatureOr returns the requested temperature or def.
func (c *RequestConfig) TemperatureOr(def float64) float64 {
	if c == nil || c.Temperature == nil {
		return def
	}
	return *c.Temperature
}

// MaxTokensOr returns the requested token limit or def.
func (c *RequestConfig) MaxTokensOr(def int) int {
	if c == nil || c.MaxTokens == nil {
		return def
	}
	return *c.MaxTokens
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
