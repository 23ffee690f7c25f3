package stt

import "strings"

const (
	ProviderOpenAI     = "openai"
	ProviderAssemblyAI = "assemblyai"
	ProviderRevAI      = "revai"
)

// providerPriority is the order the pipeline tries providers in.
var providerPriority = []string{ProviderOpenAI, ProviderAssemblyAI, ProviderRevAI}

// Config holds everything the registry needs to decide which providers are
// usable. Flag values are raw strings so the tri-state (unset / explicit
// true-like / explicit false-like) survives from configuration.
type Config struct {
	OpenAIAPIKey     string
	AssemblyAIAPIKey string
	RevAIAPIKey      string

	OpenAIEnabled     string
	AssemblyAIEnabled string
	RevAIEnabled      string
}

// Flags is the resolved per-provider enablement.
type Flags struct {
	OpenAI     bool
	AssemblyAI bool
	RevAI      bool
}

func (f Flags) Enabled(provider string) bool {
	switch provider {
	case ProviderOpenAI:
		return f.OpenAI
	case ProviderAssemblyAI:
		return f.AssemblyAI
	case ProviderRevAI:
		return f.RevAI
	default:
		return false
	}
}

// ResolveFlags applies the documented defaults (openai and assemblyai on,
// revai off) unless an explicit override flips them. Unrecognized values
// leave the default in place.
func ResolveFlags(cfg Config) Flags {
	return Flags{
		OpenAI:     resolveFlag(cfg.OpenAIEnabled, true),
		AssemblyAI: resolveFlag(cfg.AssemblyAIEnabled, true),
		RevAI:      resolveFlag(cfg.RevAIEnabled, false),
	}
}

func resolveFlag(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// Registry constructs provider adapters on demand. A fresh, stateless
// adapter is built per call; fallback across providers belongs to the
// caller, never to the registry.
type Registry struct {
	cfg   Config
	clock Clock
}

func NewRegistry(cfg Config, clock Clock) *Registry {
	if clock == nil {
		clock = realClock{}
	}
	return &Registry{cfg: cfg, clock: clock}
}

// EnabledProviders returns the enabled provider names in priority order.
func (r *Registry) EnabledProviders() []string {
	flags := ResolveFlags(r.cfg)
	var enabled []string
	for _, name := range providerPriority {
		if flags.Enabled(name) {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// Resolve returns an adapter for the named provider, or false when no
// adapter is available: unknown name, or a missing/blank credential.
// Credential absence is not an error, the caller just moves on.
func (r *Registry) Resolve(name string) (Transcriber, bool) {
	switch name {
	case ProviderOpenAI:
		key := strings.TrimSpace(r.cfg.OpenAIAPIKey)
		if key == "" {
			return nil, false
		}
		return NewOpenAI(OpenAIConfig{APIKey: key}), true
	case ProviderAssemblyAI:
		key := strings.TrimSpace(r.cfg.AssemblyAIAPIKey)
		if key == "" {
			return nil, false
		}
		return NewAssemblyAI(AssemblyAIConfig{APIKey: key, Clock: r.clock}), true
	case ProviderRevAI:
		key := strings.TrimSpace(r.cfg.RevAIAPIKey)
		if key == "" {
			return nil, false
		}
		return NewRevAI(RevAIConfig{APIKey: key, Clock: r.clock}), true
	default:
		return nil, false
	}
}
