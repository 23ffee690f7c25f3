package synthesis

import (
	"strconv"
	"strings"
)

const (
	defaultModel       = "google/gemini-2.5-flash-preview"
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// defaultFallbackModels is the family-ordered fallback pair used when no
// explicit list is configured; whichever entry matches the primary model is
// excluded at resolution time.
var defaultFallbackModels = []string{"openai/gpt-5-mini", "anthropic/claude-sonnet-4"}

// defaultNoTemperaturePrefixes lists model-id families known to reject
// temperature overrides. Overridable through Settings so the list does not
// go stale as providers rename models.
var defaultNoTemperaturePrefixes = []string{"openai/gpt-5"}

var acceptedReasoningEfforts = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// Settings are the raw configuration values feeding model resolution.
// Numeric fields stay strings here; malformed values fall back to defaults
// rather than failing.
type Settings struct {
	Model                 string
	FallbackModels        string
	Temperature           string
	MaxTokens             string
	ReasoningEffort       string
	NoTemperaturePrefixes string
}

// Config is the resolved model selection for a synthesis call.
type Config struct {
	Model           string
	FallbackModels  []string
	Temperature     *float64
	MaxTokens       int
	ReasoningEffort string

	noTemperaturePrefixes []string
	temperature           float64
}

// ResolveConfig turns raw settings into a deterministic model selection.
// The fallback list never contains the primary model nor duplicates, and
// preserves first-seen order.
func ResolveConfig(s Settings) Config {
	model := strings.TrimSpace(s.Model)
	if model == "" {
		model = defaultModel
	}

	candidates := defaultFallbackModels
	if raw := strings.TrimSpace(s.FallbackModels); raw != "" {
		candidates = splitList(raw)
	}
	fallbacks := make([]string, 0, len(candidates))
	seen := map[string]bool{model: true}
	for _, m := range candidates {
		if seen[m] {
			continue
		}
		seen[m] = true
		fallbacks = append(fallbacks, m)
	}

	temperature := defaultTemperature
	if raw := strings.TrimSpace(s.Temperature); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			temperature = parsed
		}
	}

	maxTokens := defaultMaxTokens
	if raw := strings.TrimSpace(s.MaxTokens); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxTokens = parsed
		}
	}

	effort := strings.ToLower(strings.TrimSpace(s.ReasoningEffort))
	if !acceptedReasoningEfforts[effort] {
		effort = ""
	}

	prefixes := defaultNoTemperaturePrefixes
	if raw := strings.TrimSpace(s.NoTemperaturePrefixes); raw != "" {
		prefixes = splitList(raw)
	}

	cfg := Config{
		Model:                 model,
		FallbackModels:        fallbacks,
		MaxTokens:             maxTokens,
		ReasoningEffort:       effort,
		noTemperaturePrefixes: prefixes,
		temperature:           temperature,
	}
	cfg.Temperature = cfg.TemperatureFor(model)
	return cfg
}

// TemperatureFor returns the sampling temperature to send for a model, or
// nil when the model's family rejects temperature overrides.
func (c Config) TemperatureFor(model string) *float64 {
	for _, prefix := range c.noTemperaturePrefixes {
		if strings.HasPrefix(model, prefix) {
			return nil
		}
	}
	t := c.temperature
	return &t
}

// ModelChain returns the primary model followed by its fallbacks.
func (c Config) ModelChain() []string {
	chain := make([]string, 0, 1+len(c.FallbackModels))
	chain = append(chain, c.Model)
	chain = append(chain, c.FallbackModels...)
	return chain
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
