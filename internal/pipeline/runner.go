package pipeline

import (
	"context"
	"log/slog"

	"github.com/misty-step/bibliomnomnom-sub004/internal/stt"
	"github.com/misty-step/bibliomnomnom-sub004/internal/synthesis"
)

// Registry resolves transcription adapters; satisfied by *stt.Registry.
type Registry interface {
	EnabledProviders() []string
	Resolve(name string) (stt.Transcriber, bool)
}

// Synthesizer produces artifacts from a transcript; satisfied by
// *synthesis.Engine.
type Synthesizer interface {
	Synthesize(ctx context.Context, sessionID, transcript string, sctx *synthesis.Context) ([]synthesis.Artifact, error)
}

// Outcome is the result of one pipeline run. A run only hard-fails on a
// broken invariant, never on provider or synthesis trouble: the artifacts
// degrade to the deterministic generator instead.
type Outcome struct {
	Provider           string
	Transcript         string
	Artifacts          []synthesis.Artifact
	UsedFallback       bool
	TranscriptionError *stt.Error
}

// Runner drives the transcribing and synthesizing stages of one session.
// Stage values themselves are owned by the caller; the runner only does the
// work between them.
type Runner struct {
	registry    Registry
	synthesizer Synthesizer
	logger      *slog.Logger
}

func NewRunner(registry Registry, synthesizer Synthesizer, logger *slog.Logger) *Runner {
	return &Runner{
		registry:    registry,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Run transcribes the clip and synthesizes artifacts. Providers are tried
// in priority order, each at most once, stopping at the first success.
// When every provider fails or none is available, or when synthesis
// exhausts its model chain, the deterministic fallback generator supplies
// the artifacts.
func (r *Runner) Run(ctx context.Context, sessionID string, req stt.Request, sctx *synthesis.Context) Outcome {
	outcome := r.transcribe(ctx, sessionID, req)
	if outcome.Transcript == "" {
		outcome.UsedFallback = true
		outcome.Artifacts = synthesis.GenerateFallbackArtifacts(outcome.Transcript, sctx)
		return outcome
	}

	artifacts, err := r.synthesizer.Synthesize(ctx, sessionID, outcome.Transcript, sctx)
	if err != nil {
		r.logger.Warn("synthesis unavailable, using fallback artifacts",
			"session_id", sessionID,
			"error", err,
		)
		outcome.UsedFallback = true
		artifacts = synthesis.GenerateFallbackArtifacts(outcome.Transcript, sctx)
	}
	outcome.Artifacts = artifacts
	return outcome
}

func (r *Runner) transcribe(ctx context.Context, sessionID string, req stt.Request) Outcome {
	var lastErr *stt.Error

	for _, name := range r.registry.EnabledProviders() {
		adapter, ok := r.registry.Resolve(name)
		if !ok {
			r.logger.Debug("transcription provider unavailable",
				"session_id", sessionID,
				"provider", name,
			)
			continue
		}

		result, err := adapter.Transcribe(ctx, req)
		if err != nil {
			lastErr = stt.AsError(err)
			r.logger.Warn("transcription provider failed",
				"session_id", sessionID,
				"provider", name,
				"kind", string(lastErr.Kind),
				"retryable", lastErr.Retryable(),
			)
			continue
		}

		return Outcome{Provider: result.Provider, Transcript: result.Transcript}
	}

	return Outcome{TranscriptionError: lastErr}
}
