package synthesis

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestEstimateCostUSD_RateTable(t *testing.T) {
	tests := []struct {
		model string
		want  float64
	}{
		// 1000 prompt + 1000 completion tokens
		{"openai/gpt-5", (1000*1.25 + 1000*10.0) / 1_000_000},
		{"openai/gpt-5-mini", (1000*1.25 + 1000*10.0) / 1_000_000},
		{"openai/gpt-4o", (1000*0.40 + 1000*1.60) / 1_000_000},
		{"anthropic/claude-sonnet-4", (1000*3.00 + 1000*15.00) / 1_000_000},
		{"google/gemini-2.5-flash-preview", (1000*0.10 + 1000*0.40) / 1_000_000},
		{"mistralai/mistral-large", (1000*0.10 + 1000*0.40) / 1_000_000},
	}

	for _, tt := range tests {
		est := EstimateCostUSD(tt.model, 1000, 1000)
		if math.Abs(est.CostUSD-tt.want) > 1e-12 {
			t.Errorf("%s: got %.8f, want %.8f", tt.model, est.CostUSD, tt.want)
		}
	}
}

func TestEstimateCostUSD_LongestPrefixWins(t *testing.T) {
	gpt5 := EstimateCostUSD("openai/gpt-5", 1_000_000, 0)
	other := EstimateCostUSD("openai/gpt-4o", 1_000_000, 0)
	if gpt5.CostUSD <= other.CostUSD {
		t.Errorf("gpt-5 prefix should out-rank the generic openai/ prefix: %f vs %f", gpt5.CostUSD, other.CostUSD)
	}
}

func TestEstimateCostUSD_Monotonic(t *testing.T) {
	prev := 0.0
	for tokens := 0; tokens <= 100_000; tokens += 10_000 {
		est := EstimateCostUSD("anthropic/claude-sonnet-4", tokens, tokens)
		if est.CostUSD < prev {
			t.Fatalf("cost decreased at %d tokens: %f < %f", tokens, est.CostUSD, prev)
		}
		prev = est.CostUSD
	}
}

func TestEstimateCostUSD_NeverNegative(t *testing.T) {
	est := EstimateCostUSD("openai/gpt-5", -100, -200)
	if est.CostUSD != 0 {
		t.Errorf("expected zero cost, got %f", est.CostUSD)
	}
	if est.PromptTokens != 0 || est.CompletionTokens != 0 {
		t.Errorf("expected floored tokens, got %d/%d", est.PromptTokens, est.CompletionTokens)
	}
}

func TestUsageTokens_ExplicitFields(t *testing.T) {
	prompt, completion := UsageTokens(map[string]any{
		"prompt_tokens":     float64(120),
		"completion_tokens": float64(45),
		"total_tokens":      float64(165),
	})
	if prompt != 120 || completion != 45 {
		t.Errorf("got %d/%d, want 120/45", prompt, completion)
	}
}

func TestUsageTokens_AnthropicShape(t *testing.T) {
	prompt, completion := UsageTokens(map[string]any{
		"input_tokens":  float64(200),
		"output_tokens": float64(80),
	})
	if prompt != 200 || completion != 80 {
		t.Errorf("got %d/%d, want 200/80", prompt, completion)
	}
}

func TestUsageTokens_DerivedFromTotal(t *testing.T) {
	prompt, completion := UsageTokens(map[string]any{
		"total_tokens":      float64(150),
		"completion_tokens": float64(50),
	})
	if prompt != 100 || completion != 50 {
		t.Errorf("got %d/%d, want 100/50", prompt, completion)
	}

	// total below completion floors prompt at zero
	prompt, _ = UsageTokens(map[string]any{
		"total_tokens":      float64(30),
		"completion_tokens": float64(50),
	})
	if prompt != 0 {
		t.Errorf("expected floored prompt tokens, got %d", prompt)
	}
}

func TestUsageTokens_EmptyUsage(t *testing.T) {
	prompt, completion := UsageTokens(map[string]any{})
	if prompt != 0 || completion != 0 {
		t.Errorf("got %d/%d, want 0/0", prompt, completion)
	}

	prompt, completion = UsageTokens(nil)
	if prompt != 0 || completion != 0 {
		t.Errorf("nil usage: got %d/%d, want 0/0", prompt, completion)
	}
}

func guardrailsWithBuffer(warn, hardCap float64) (*Guardrails, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewGuardrails(logger, warn, hardCap), &buf
}

func TestGuardrails_BelowWarn(t *testing.T) {
	g, buf := guardrailsWithBuffer(0.10, 0.50)
	g.Check("sess_1", CostEstimate{Model: "google/gemini-2.5-flash-preview", CostUSD: 0.05})
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %s", buf.String())
	}
}

func TestGuardrails_AboveWarn(t *testing.T) {
	g, buf := guardrailsWithBuffer(0.10, 0.50)
	g.Check("sess_1", CostEstimate{Model: "anthropic/claude-sonnet-4", CostUSD: 0.25})
	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("expected warn log, got %s", out)
	}
	if !strings.Contains(out, "sess_1") {
		t.Errorf("expected session id in log, got %s", out)
	}
}

func TestGuardrails_AboveHardCap(t *testing.T) {
	g, buf := guardrailsWithBuffer(0.10, 0.50)
	g.Check("sess_1", CostEstimate{Model: "anthropic/claude-sonnet-4", CostUSD: 0.75})
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("expected error log, got %s", buf.String())
	}
}
