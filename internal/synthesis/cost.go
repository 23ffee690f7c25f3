package synthesis

import (
	"log/slog"
	"strings"
)

// modelRates maps model-id prefixes to USD rates per million input/output
// tokens. The most specific (longest) matching prefix wins; unrecognized
// models bill at the cheapest known family.
var modelRates = []struct {
	prefix string
	input  float64
	output float64
}{
	{"openai/gpt-5", 1.25, 10.0},
	{"openai/", 0.40, 1.60},
	{"anthropic/", 3.00, 15.00},
	{"google/", 0.10, 0.40},
}

// defaultRateIndex points at the lowest-cost family, used when no prefix
// matches.
const defaultRateIndex = 3

// CostEstimate is the derived USD cost of one synthesis call.
type CostEstimate struct {
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// EstimateCostUSD computes the cost of a call from the per-family rate
// table. Negative token counts are floored to zero, so the result is never
// negative.
func EstimateCostUSD(model string, promptTokens, completionTokens int) CostEstimate {
	if promptTokens < 0 {
		promptTokens = 0
	}
	if completionTokens < 0 {
		completionTokens = 0
	}

	best := -1
	for i, r := range modelRates {
		if !strings.HasPrefix(model, r.prefix) {
			continue
		}
		if best < 0 || len(r.prefix) > len(modelRates[best].prefix) {
			best = i
		}
	}
	if best < 0 {
		best = defaultRateIndex
	}

	rate := modelRates[best]
	cost := (float64(promptTokens)*rate.input + float64(completionTokens)*rate.output) / 1_000_000

	return CostEstimate{
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CostUSD:          cost,
	}
}

// UsageTokens derives prompt/completion token counts from a raw provider
// usage object. Providers disagree on field names; prompt falls back to
// total minus completion so tokens are never double counted.
func UsageTokens(raw map[string]any) (promptTokens, completionTokens int) {
	completionTokens, hasCompletion := usageField(raw, "completion_tokens", "output_tokens")
	if !hasCompletion {
		completionTokens = 0
	}

	promptTokens, hasPrompt := usageField(raw, "prompt_tokens", "input_tokens")
	if !hasPrompt {
		if total, ok := usageField(raw, "total_tokens"); ok {
			promptTokens = total - completionTokens
		}
	}

	if promptTokens < 0 {
		promptTokens = 0
	}
	if completionTokens < 0 {
		completionTokens = 0
	}
	return promptTokens, completionTokens
}

func usageField(raw map[string]any, names ...string) (int, bool) {
	for _, name := range names {
		v, ok := raw[name]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		case int64:
			return int(n), true
		}
	}
	return 0, false
}

// Guardrails compares estimated synthesis cost against configured warn and
// hard-cap thresholds. Breaches are logged, never enforced: the call has
// already happened and nothing is blocked or retried.
type Guardrails struct {
	logger     *slog.Logger
	warnUSD    float64
	hardCapUSD float64
}

func NewGuardrails(logger *slog.Logger, warnUSD, hardCapUSD float64) *Guardrails {
	return &Guardrails{
		logger:     logger,
		warnUSD:    warnUSD,
		hardCapUSD: hardCapUSD,
	}
}

func (g *Guardrails) Check(sessionID string, est CostEstimate) {
	switch {
	case g.hardCapUSD > 0 && est.CostUSD > g.hardCapUSD:
		g.logger.Error("synthesis cost above hard cap",
			"session_id", sessionID,
			"model", est.Model,
			"cost_usd", est.CostUSD,
			"hard_cap_usd", g.hardCapUSD,
		)
	case g.warnUSD > 0 && est.CostUSD > g.warnUSD:
		g.logger.Warn("synthesis cost above warn threshold",
			"session_id", sessionID,
			"model", est.Model,
			"cost_usd", est.CostUSD,
			"warn_usd", g.warnUSD,
		)
	}
}
