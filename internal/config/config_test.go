package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(deepseekKeyEnv, "")

	cfg := Load()
	if got := cfg.Generation.Order; len(got) != 3 || got[0] != ProviderDeepSeek || got[2] != ProviderGemini {
		t.Fatalf("unexpected default order %v", got)
	}
	if cfg.Generation.PerWindow != 15 || cfg.Generation.DailyLimit != 1500 {
		t.Fatalf("unexpected limits %+v", cfg.Generation)
	}
	if cfg.Providers.Gemini.Model != "gemini-1.5-flash" || len(cfg.Providers.Gemini.FallbackModels) != 6 {
		t.Fatalf("unexpected gemini defaults %+v", cfg.Providers.Gemini)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
logging:
  level: warn
generation:
  order: [gemini, openai]
  retryDelay: 500ms
providers:
  openai:
    model: gpt-4o
    jsonMode: false
database:
  driver: postgres
  dsn: postgres://localhost/studio
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(openaiKeyEnv, "sk-test")
	t.Setenv(smtpPortEnv, "2525")
	t.Setenv(logLevelEnv, "")

	cfg := Load()
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected warn level, got %s", cfg.Logging.Level)
	}
	if len(cfg.Generation.Order) != 2 || cfg.Generation.Order[0] != ProviderGemini {
		t.Fatalf("unexpected order %v", cfg.Generation.Order)
	}
	if cfg.Generation.RetryDelay != 500*time.Millisecond {
		t.Fatalf("unexpected retry delay %s", cfg.Generation.RetryDelay)
	}
	if cfg.Providers.OpenAI.Model != "gpt-4o" || cfg.Providers.OpenAI.APIKey != "sk-test" {
		t.Fatalf("unexpected openai config %+v", cfg.Providers.OpenAI)
	}
	if cfg.Providers.OpenAI.JSONMode == nil || *cfg.Providers.OpenAI.JSONMode {
		t.Fatal("expected jsonMode override to false")
	}
	if len(cfg.Providers.OpenAI.FallbackModels) != 2 {
		t.Fatalf("fallback models should survive a partial override: %v", cfg.Providers.OpenAI.FallbackModels)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("unexpected driver %s", cfg.Database.Driver)
	}
	if cfg.Email.Port != 2525 {
		t.Fatalf("unexpected smtp port %d", cfg.Email.Port)
	}
}
