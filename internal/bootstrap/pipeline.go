package bootstrap

import (
	"log/slog"

	"github.com/misty-step/bibliomnomnom-sub004/internal/library"
	"github.com/misty-step/bibliomnomnom-sub004/internal/pipeline"
	"github.com/misty-step/bibliomnomnom-sub004/internal/stt"
	"github.com/misty-step/bibliomnomnom-sub004/internal/synthesis"
	"go.uber.org/fx"
)

func ProvideSTTRegistry(cfg *Config) *stt.Registry {
	return stt.NewRegistry(stt.Config{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		AssemblyAIAPIKey: cfg.AssemblyAIAPIKey,
		RevAIAPIKey:      cfg.RevAIAPIKey,

		OpenAIEnabled:     cfg.OpenAIEnabled,
		AssemblyAIEnabled: cfg.AssemblyAIEnabled,
		RevAIEnabled:      cfg.RevAIEnabled,
	}, stt.NewClock())
}

func ProvideSynthesisConfig(cfg *Config) synthesis.Config {
	return synthesis.ResolveConfig(synthesis.Settings{
		Model:                 cfg.SynthesisModel,
		FallbackModels:        cfg.SynthesisFallbackModels,
		Temperature:           cfg.SynthesisTemperature,
		MaxTokens:             cfg.SynthesisMaxTokens,
		ReasoningEffort:       cfg.SynthesisReasoningEffort,
		NoTemperaturePrefixes: cfg.SynthesisNoTemperaturePrefixes,
	})
}

func ProvideCompleter(cfg *Config) synthesis.Completer {
	return synthesis.NewClient(synthesis.ClientConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
	})
}

func ProvideGuardrails(cfg *Config, logger *slog.Logger) *synthesis.Guardrails {
	return synthesis.NewGuardrails(logger.With("component", "guardrails"), cfg.CostWarnUSD, cfg.CostHardCapUSD)
}

func ProvideSynthesisEngine(completer synthesis.Completer, synthCfg synthesis.Config, guardrails *synthesis.Guardrails, logger *slog.Logger) *synthesis.Engine {
	return synthesis.NewEngine(completer, synthCfg, guardrails, logger.With("component", "synthesis"))
}

func ProvideContextBuilder(store *library.Store) *library.ContextBuilder {
	return library.NewContextBuilder(store)
}

func ProvidePipelineRunner(registry *stt.Registry, engine *synthesis.Engine, logger *slog.Logger) *pipeline.Runner {
	return pipeline.NewRunner(registry, engine, logger.With("component", "pipeline"))
}

var PipelineModule = fx.Options(
	fx.Provide(
		ProvideSTTRegistry,
		ProvideSynthesisConfig,
		ProvideCompleter,
		ProvideGuardrails,
		ProvideSynthesisEngine,
		ProvideContextBuilder,
		ProvidePipelineRunner,
	),
)
