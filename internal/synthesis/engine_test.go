package synthesis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type stubCompleter struct {
	requests  []CompletionRequest
	responses map[string]*CompletionResponse
	errs      map[string]error
}

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.requests = append(s.requests, req)
	if err, ok := s.errs[req.Model]; ok {
		return nil, err
	}
	if resp, ok := s.responses[req.Model]; ok {
		return resp, nil
	}
	return nil, errors.New("no stub for model " + req.Model)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

const goodPayload = `{"artifacts":[{"kind":"insight","title":"Pacing","content":"The middle chapters drag."},{"kind":"followUpQuestion","title":"Next","content":"What changes after the reveal?"}]}`

func TestEngine_Synthesize_PrimarySucceeds(t *testing.T) {
	completer := &stubCompleter{
		responses: map[string]*CompletionResponse{
			"google/gemini-2.5-flash-preview": {
				Content: goodPayload,
				Model:   "google/gemini-2.5-flash-preview",
				Usage:   map[string]any{"prompt_tokens": float64(100), "completion_tokens": float64(50)},
			},
		},
	}
	engine := NewEngine(completer, ResolveConfig(Settings{}), nil, testLogger())

	artifacts, err := engine.Synthesize(context.Background(), "sess_1", "A reflection.", nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}
	if len(completer.requests) != 1 {
		t.Errorf("expected a single model attempt, got %d", len(completer.requests))
	}
}

func TestEngine_Synthesize_FallsBackThroughChain(t *testing.T) {
	completer := &stubCompleter{
		errs: map[string]error{
			"google/gemini-2.5-flash-preview": errors.New("rate limited"),
			"openai/gpt-5-mini":               errors.New("overloaded"),
		},
		responses: map[string]*CompletionResponse{
			"anthropic/claude-sonnet-4": {Content: goodPayload, Model: "anthropic/claude-sonnet-4"},
		},
	}
	engine := NewEngine(completer, ResolveConfig(Settings{}), nil, testLogger())

	artifacts, err := engine.Synthesize(context.Background(), "sess_1", "A reflection.", nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(artifacts) == 0 {
		t.Fatal("expected artifacts from the last fallback")
	}
	if len(completer.requests) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(completer.requests))
	}
}

func TestEngine_Synthesize_Exhausted(t *testing.T) {
	completer := &stubCompleter{
		errs: map[string]error{
			"google/gemini-2.5-flash-preview": errors.New("down"),
			"openai/gpt-5-mini":               errors.New("down"),
			"anthropic/claude-sonnet-4":       errors.New("down"),
		},
	}
	engine := NewEngine(completer, ResolveConfig(Settings{}), nil, testLogger())

	_, err := engine.Synthesize(context.Background(), "sess_1", "A reflection.", nil)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestEngine_Synthesize_UnparsableOutputTriesNextModel(t *testing.T) {
	completer := &stubCompleter{
		responses: map[string]*CompletionResponse{
			"google/gemini-2.5-flash-preview": {Content: "I could not help with that."},
			"openai/gpt-5-mini":               {Content: "```json\n" + goodPayload + "\n```"},
		},
	}
	engine := NewEngine(completer, ResolveConfig(Settings{}), nil, testLogger())

	artifacts, err := engine.Synthesize(context.Background(), "sess_1", "A reflection.", nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Errorf("expected fenced JSON to parse, got %d artifacts", len(artifacts))
	}
}

func TestEngine_Synthesize_TemperaturePerModel(t *testing.T) {
	completer := &stubCompleter{
		errs: map[string]error{"openai/gpt-5": errors.New("down")},
		responses: map[string]*CompletionResponse{
			"google/gemini-2.5-flash-preview": {Content: goodPayload},
		},
	}
	cfg := ResolveConfig(Settings{Model: "openai/gpt-5", FallbackModels: "google/gemini-2.5-flash-preview"})
	engine := NewEngine(completer, cfg, nil, testLogger())

	if _, err := engine.Synthesize(context.Background(), "sess_1", "A reflection.", nil); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if completer.requests[0].Temperature != nil {
		t.Error("gpt-5 attempt should omit temperature")
	}
	if completer.requests[1].Temperature == nil {
		t.Error("gemini attempt should carry temperature")
	}
}

func TestEngine_Synthesize_GuardrailsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	completer := &stubCompleter{
		responses: map[string]*CompletionResponse{
			"anthropic/claude-sonnet-4": {
				Content: goodPayload,
				Model:   "anthropic/claude-sonnet-4",
				// 200k completion tokens at $15/M is $3.00
				Usage: map[string]any{"prompt_tokens": float64(1000), "completion_tokens": float64(200_000)},
			},
		},
	}
	cfg := ResolveConfig(Settings{Model: "anthropic/claude-sonnet-4"})
	engine := NewEngine(completer, cfg, NewGuardrails(logger, 0.10, 0.50), logger)

	if _, err := engine.Synthesize(context.Background(), "sess_1", "A reflection.", nil); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if !strings.Contains(buf.String(), "synthesis cost above hard cap") {
		t.Errorf("expected hard cap log, got %s", buf.String())
	}
}

func TestBuildPrompt_IncludesContext(t *testing.T) {
	prompt := buildPrompt("The transcript.", &Context{
		Book:             &Book{Title: "Middlemarch", Author: "George Eliot"},
		CurrentlyReading: []Book{{Title: "Bleak House", Author: "Charles Dickens"}},
		WantToRead:       []Book{{Title: "Persuasion"}},
		RecentNotes:      []string{"Dorothea's idealism mirrors the opening."},
	})

	for _, want := range []string{"The transcript.", "Middlemarch", "George Eliot", "Bleak House", "Persuasion", "Dorothea"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseArtifacts_CapsAndValidation(t *testing.T) {
	payload := `{"artifacts":[
		{"kind":"insight","title":"1","content":"a"},
		{"kind":"insight","title":"2","content":"b"},
		{"kind":"insight","title":"3","content":"c"},
		{"kind":"insight","title":"4","content":"d"},
		{"kind":"banana","title":"x","content":"y"},
		{"kind":"openQuestion","title":"q","content":"   "}
	]}`

	artifacts, err := parseArtifacts(payload)
	if err != nil {
		t.Fatalf("parseArtifacts failed: %v", err)
	}
	if len(artifacts) != 3 {
		t.Errorf("expected insight cap plus dropped invalids to leave 3, got %d", len(artifacts))
	}
}

func TestParseArtifacts_NoUsableArtifacts(t *testing.T) {
	if _, err := parseArtifacts(`{"artifacts":[]}`); err == nil {
		t.Error("expected error for empty artifact list")
	}
	if _, err := parseArtifacts(`not json at all`); err == nil {
		t.Error("expected error for non-JSON output")
	}
}
