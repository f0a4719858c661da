package provider

import (
	"testing"
)

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Platform
	}{
		{"canonical", "volcengine", PlatformVolcengine},
		{"ark", "ark", PlatformVolcengine},
		{"doubao", "doubao", PlatformVolcengine},
		{"volcano", "volcano", PlatformVolcengine},
		{"volc", "volc", PlatformVolcengine},
		{"huoshan", "huoshan", PlatformVolcengine},
		{"chinese", "火山引擎", PlatformVolcengine},
		{"upper case", "ARK", PlatformVolcengine},
		{"padded", "  Doubao ", PlatformVolcengine},
		{"ollama", "ollama", PlatformOllama},
		{"openai", "openai", PlatformOpenAI},
		{"unknown falls back", "mystery-vendor", PlatformOpenAI},
		{"empty falls back", "", PlatformOpenAI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAliasesShareDefaults(t *testing.T) {
	base, err := Resolve(Normalize("volcengine"), Overrides{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, alias := range []string{"ark", "doubao", "volcano", "volc", "huoshan"} {
		got, err := Resolve(Normalize(alias), Overrides{})
		if err != nil {
			t.Fatalf("Resolve(%q): %v", alias, err)
		}
		if got.BaseURL != base.BaseURL {
			t.Errorf("alias %q base URL = %q, want %q", alias, got.BaseURL, base.BaseURL)
		}
		for capability, want := range base.Endpoints {
			if got.Endpoints[capability] != want {
				t.Errorf("alias %q endpoint %q = %q, want %q", alias, capability, got.Endpoints[capability], want)
			}
		}
	}
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		platform   Platform
		capability Capability
		value      string
		want       string
		wantErr    bool
	}{
		{"blank uses default", PlatformOpenAI, CapabilityText, "", "/chat/completions", false},
		{"override kept", PlatformOpenAI, CapabilityVideo, "/v2/videos", "/v2/videos", false},
		{"relative gets slash", PlatformOpenAI, CapabilityImage, "custom/images", "/custom/images", false},
		{"volcengine placeholder stripped", PlatformVolcengine, CapabilityVideo, "videos", "/contents/generations/tasks", false},
		{"volcengine poll placeholder stripped", PlatformVolcengine, CapabilityVideoPoll, "/videos/{task_id}", "/contents/generations/tasks/{task_id}", false},
		{"volcengine own default echoed", PlatformVolcengine, CapabilityVideo, "contents/generations/tasks", "/contents/generations/tasks", false},
		{"ollama image unsupported", PlatformOllama, CapabilityImage, "", "", true},
		{"ollama video unsupported", PlatformOllama, CapabilityVideo, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEndpoint(tt.platform, tt.capability, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected capability error, got endpoint %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveEndpoint: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		base     string
		want     string
	}{
		{"blank keeps default", PlatformOpenAI, "", "https://api.openai.com/v1"},
		{"override wins", PlatformOpenAI, "https://proxy.example.com/v1", "https://proxy.example.com/v1"},
		{"trailing slash trimmed", PlatformOpenAI, "https://proxy.example.com/v1/", "https://proxy.example.com/v1"},
		{"ollama host only gains api", PlatformOllama, "http://192.168.1.5:11434", "http://192.168.1.5:11434/api"},
		{"ollama with path untouched", PlatformOllama, "http://192.168.1.5:11434/api", "http://192.168.1.5:11434/api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(tt.platform, Overrides{BaseURL: tt.base})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if cfg.BaseURL != tt.want {
				t.Errorf("base URL = %q, want %q", cfg.BaseURL, tt.want)
			}
		})
	}
}

func TestRequiresCredential(t *testing.T) {
	if !Defaults(PlatformOpenAI).RequiresCredential {
		t.Error("openai should require a credential")
	}
	if Defaults(PlatformOllama).RequiresCredential {
		t.Error("ollama should not require a credential")
	}
}

func TestExpandTaskID(t *testing.T) {
	got := ExpandTaskID("/contents/generations/tasks/{task_id}", "cgt-1234")
	if got != "/contents/generations/tasks/cgt-1234" {
		t.Errorf("ExpandTaskID = %q", got)
	}
}

func TestGuessCapabilities(t *testing.T) {
	tests := []struct {
		model string
		want  Capability
	}{
		{"doubao-seedance-1-0-pro-250528", CapabilityVideo},
		{"kling-v1-6", CapabilityVideo},
		{"doubao-seedream-3-0-t2i", CapabilityImage},
		{"dall-e-3", CapabilityImage},
		{"gpt-4o-mini", CapabilityText},
		{"", CapabilityText},
	}
	for _, tt := range tests {
		got := GuessCapabilities(tt.model)
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("GuessCapabilities(%q) = %v, want [%s]", tt.model, got, tt.want)
		}
	}
}
