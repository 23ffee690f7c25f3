package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const systemPrompt = `You are a reading companion. A reader has just spoken a short reflection after a reading block. Extract structured artifacts from their words.

Respond with ONLY a JSON object, no markdown, no code fences, shaped as:
{"artifacts":[{"kind":"insight|openQuestion|quote|followUpQuestion|contextExpansion","title":"...","content":"..."}]}

Produce at most 3 insights, at most 4 open questions, exactly 1 follow-up question, and at most 1 context expansion. Quote artifacts must be verbatim passages the reader recited.`

// ErrExhausted is returned when the primary model and every fallback model
// failed; the caller is expected to fall back to heuristic artifacts.
var ErrExhausted = errors.New("synthesis: all models exhausted")

// Engine turns a transcript plus reading context into artifacts by walking
// the resolved model chain. Models are tried sequentially, stopping at the
// first success; the engine itself never retries a model.
type Engine struct {
	completer  Completer
	cfg        Config
	guardrails *Guardrails
	logger     *slog.Logger
}

func NewEngine(completer Completer, cfg Config, guardrails *Guardrails, logger *slog.Logger) *Engine {
	return &Engine{
		completer:  completer,
		cfg:        cfg,
		guardrails: guardrails,
		logger:     logger,
	}
}

func (e *Engine) Synthesize(ctx context.Context, sessionID, transcript string, sctx *Context) ([]Artifact, error) {
	prompt := buildPrompt(transcript, sctx)

	for _, model := range e.cfg.ModelChain() {
		resp, err := e.completer.Complete(ctx, CompletionRequest{
			Model:           model,
			System:          systemPrompt,
			Prompt:          prompt,
			Temperature:     e.cfg.TemperatureFor(model),
			MaxTokens:       e.cfg.MaxTokens,
			ReasoningEffort: e.cfg.ReasoningEffort,
		})
		if err != nil {
			e.logger.Warn("synthesis model failed",
				"session_id", sessionID,
				"model", model,
				"error", err,
			)
			continue
		}

		if e.guardrails != nil {
			promptTokens, completionTokens := UsageTokens(resp.Usage)
			e.guardrails.Check(sessionID, EstimateCostUSD(resp.Model, promptTokens, completionTokens))
		}

		artifacts, err := parseArtifacts(resp.Content)
		if err != nil {
			e.logger.Warn("synthesis output unparsable",
				"session_id", sessionID,
				"model", model,
				"error", err,
			)
			continue
		}
		return artifacts, nil
	}

	return nil, ErrExhausted
}

func buildPrompt(transcript string, sctx *Context) string {
	var b strings.Builder
	b.WriteString("Reflection transcript:\n")
	b.WriteString(transcript)

	if sctx == nil {
		return b.String()
	}

	if sctx.Book != nil && sctx.Book.Title != "" {
		b.WriteString("\n\nThe reader is reading: ")
		b.WriteString(sctx.Book.Title)
		if sctx.Book.Author != "" {
			b.WriteString(" by ")
			b.WriteString(sctx.Book.Author)
		}
	}
	writeBookList(&b, "Currently reading", sctx.CurrentlyReading)
	writeBookList(&b, "Wants to read", sctx.WantToRead)
	writeBookList(&b, "Has read", sctx.Read)

	if len(sctx.RecentNotes) > 0 {
		b.WriteString("\n\nRecent notes:")
		for _, note := range sctx.RecentNotes {
			b.WriteString("\n- ")
			b.WriteString(note)
		}
	}
	return b.String()
}

func writeBookList(b *strings.Builder, label string, books []Book) {
	if len(books) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(label)
	b.WriteString(":")
	for _, book := range books {
		b.WriteString("\n- ")
		b.WriteString(book.Title)
		if book.Author != "" {
			b.WriteString(" by ")
			b.WriteString(book.Author)
		}
	}
}

type artifactsPayload struct {
	Artifacts []Artifact `json:"artifacts"`
}

func parseArtifacts(content string) ([]Artifact, error) {
	var payload artifactsPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal artifacts: %w", err)
	}

	valid := payload.Artifacts[:0]
	for _, a := range payload.Artifacts {
		if !a.Kind.Valid() || strings.TrimSpace(a.Content) == "" {
			continue
		}
		valid = append(valid, a)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no usable artifacts in response")
	}
	return applyCaps(valid), nil
}

// extractJSON pulls a JSON object out of model output that may be wrapped
// in markdown fences or prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
