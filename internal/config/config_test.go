package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Provider.Name != "openai" {
		t.Errorf("expected openai default provider, got %q", cfg.Provider.Name)
	}
	if cfg.Provider.Temperature != 0.7 || cfg.Provider.MaxTokens != 4096 {
		t.Errorf("expected generation defaults, got %+v", cfg.Provider)
	}
	if cfg.Orchestrator.FailurePolicy != "fallback" {
		t.Errorf("expected fallback policy, got %q", cfg.Orchestrator.FailurePolicy)
	}
	if cfg.Logging.Level != LogLevelInfo || cfg.Logging.Format != LogFormatJSON {
		t.Errorf("expected info/json logging defaults, got %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid defaults, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Provider.Name != "openai" {
			t.Errorf("expected defaults, got %q", cfg.Provider.Name)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
version = "1"

[provider]
name = "anthropic"
temperature = 0.2

[logging]
level = "debug"
format = "text"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Provider.Name != "anthropic" || cfg.Provider.Temperature != 0.2 {
			t.Errorf("expected provider override, got %+v", cfg.Provider)
		}
		if cfg.Logging.Level != LogLevelDebug || cfg.Logging.Format != LogFormatText {
			t.Errorf("expected logging override, got %+v", cfg.Logging)
		}
		// Unset sections keep their defaults.
		if cfg.Provider.MaxTokens != 4096 {
			t.Errorf("expected default max tokens kept, got %d", cfg.Provider.MaxTokens)
		}
		if cfg.Paths.RunsDir != ".scribe/runs" {
			t.Errorf("expected default runs dir kept, got %q", cfg.Paths.RunsDir)
		}
	})

	t.Run("malformed file rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[provider\nname ="), 0644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadFromDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // isolate from any real global config

	dir := t.TempDir()
	scribeDir := filepath.Join(dir, ".scribe")
	if err := os.MkdirAll(scribeDir, 0755); err != nil {
		t.Fatalf("creating project dir: %v", err)
	}
	content := "version = \"1\"\n\n[provider]\nname = \"deepseek\"\n"
	if err := os.WriteFile(filepath.Join(scribeDir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("writing project config: %v", err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider.Name != "deepseek" {
		t.Errorf("expected project override, got %q", cfg.Provider.Name)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"empty policy allowed", func(c *Config) { c.Orchestrator.FailurePolicy = "" }, false},
		{"propagate allowed", func(c *Config) { c.Orchestrator.FailurePolicy = "propagate" }, false},
		{"missing version", func(c *Config) { c.Version = "" }, true},
		{"missing runs dir", func(c *Config) { c.Paths.RunsDir = "" }, true},
		{"missing provider", func(c *Config) { c.Provider.Name = "" }, true},
		{"bad policy", func(c *Config) { c.Orchestrator.FailurePolicy = "explode" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected wantErr=%t, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Default()

	t.Run("relative paths join base dir", func(t *testing.T) {
		if got := cfg.RunsDir("/work"); got != "/work/.scribe/runs" {
			t.Errorf("expected joined path, got %q", got)
		}
		if got := cfg.AgentsFile("/work"); got != "/work/.scribe/agents.yaml" {
			t.Errorf("expected joined path, got %q", got)
		}
	})

	t.Run("absolute paths kept", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.KnowledgeDir = "/srv/knowledge"
		if got := cfg.KnowledgeDir("/work"); got != "/srv/knowledge" {
			t.Errorf("expected absolute path kept, got %q", got)
		}
	})

	t.Run("log file empty when disabled", func(t *testing.T) {
		if got := cfg.LogFile("/work"); got != "" {
			t.Errorf("expected empty log file, got %q", got)
		}
		cfg := Default()
		cfg.Logging.File = "scribe.log"
		if got := cfg.LogFile("/work"); got != "/work/.scribe/logs/scribe.log" {
			t.Errorf("expected log path under logs dir, got %q", got)
		}
	})
}

func TestProviderAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")

	if got := ProviderAPIKey("anthropic"); got != "sk-anthropic" {
		t.Errorf("expected anthropic key, got %q", got)
	}
	if got := ProviderAPIKey("deepseek"); got != "sk-deepseek" {
		t.Errorf("expected deepseek key, got %q", got)
	}
	if got := ProviderAPIKey("openai"); got != "sk-openai" {
		t.Errorf("expected openai key, got %q", got)
	}
}
