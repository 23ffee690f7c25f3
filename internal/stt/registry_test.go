package stt

import (
	"reflect"
	"testing"
)

func TestResolveFlags_Defaults(t *testing.T) {
	flags := ResolveFlags(Config{})
	if !flags.OpenAI {
		t.Error("openai should be enabled by default")
	}
	if !flags.AssemblyAI {
		t.Error("assemblyai should be enabled by default")
	}
	if flags.RevAI {
		t.Error("revai should be disabled by default")
	}
}

func TestResolveFlags_Overrides(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Flags
	}{
		{
			name: "explicit disable of default-on provider",
			cfg:  Config{OpenAIEnabled: "false"},
			want: Flags{OpenAI: false, AssemblyAI: true, RevAI: false},
		},
		{
			name: "explicit enable of default-off provider",
			cfg:  Config{RevAIEnabled: "true"},
			want: Flags{OpenAI: true, AssemblyAI: true, RevAI: true},
		},
		{
			name: "alternate spellings",
			cfg:  Config{OpenAIEnabled: "OFF", AssemblyAIEnabled: "0", RevAIEnabled: "yes"},
			want: Flags{OpenAI: false, AssemblyAI: false, RevAI: true},
		},
		{
			name: "garbage falls back to defaults",
			cfg:  Config{OpenAIEnabled: "maybe", RevAIEnabled: "sometimes"},
			want: Flags{OpenAI: true, AssemblyAI: true, RevAI: false},
		},
		{
			name: "whitespace-only is unset",
			cfg:  Config{AssemblyAIEnabled: "   "},
			want: Flags{OpenAI: true, AssemblyAI: true, RevAI: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveFlags(tt.cfg); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRegistry_Resolve_BlankCredential(t *testing.T) {
	reg := NewRegistry(Config{
		OpenAIAPIKey:     "   ",
		AssemblyAIAPIKey: "",
		RevAIAPIKey:      "\t",
	}, nil)

	for _, name := range []string{ProviderOpenAI, ProviderAssemblyAI, ProviderRevAI} {
		if _, ok := reg.Resolve(name); ok {
			t.Errorf("%s: expected unavailable with blank credential", name)
		}
	}
}

func TestRegistry_Resolve_WithCredentials(t *testing.T) {
	reg := NewRegistry(Config{
		OpenAIAPIKey:     " sk-test ",
		AssemblyAIAPIKey: "aai-test",
		RevAIAPIKey:      "rev-test",
	}, newFakeClock())

	for _, name := range []string{ProviderOpenAI, ProviderAssemblyAI, ProviderRevAI} {
		adapter, ok := reg.Resolve(name)
		if !ok {
			t.Fatalf("%s: expected adapter", name)
		}
		if adapter == nil {
			t.Fatalf("%s: adapter should not be nil", name)
		}
	}

	if _, ok := reg.Resolve("whisperx"); ok {
		t.Error("unknown provider should be unavailable")
	}
}

func TestRegistry_Resolve_FreshInstancePerCall(t *testing.T) {
	reg := NewRegistry(Config{OpenAIAPIKey: "sk-test"}, nil)
	a, _ := reg.Resolve(ProviderOpenAI)
	b, _ := reg.Resolve(ProviderOpenAI)
	if a == b {
		t.Error("expected a fresh adapter per Resolve call")
	}
}

func TestRegistry_EnabledProviders(t *testing.T) {
	reg := NewRegistry(Config{}, nil)
	want := []string{ProviderOpenAI, ProviderAssemblyAI}
	if got := reg.EnabledProviders(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	reg = NewRegistry(Config{OpenAIEnabled: "false", RevAIEnabled: "true"}, nil)
	want = []string{ProviderAssemblyAI, ProviderRevAI}
	if got := reg.EnabledProviders(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
