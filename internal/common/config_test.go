package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 5000)
	}
}

func TestConfig_DefaultsAreValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FINDIGEST_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_ProviderEnvOverride(t *testing.T) {
	t.Setenv("FINDIGEST_LLM_PROVIDER", "OpenAI")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.LLM.Provider != "openai" {
		t.Errorf("Clients.LLM.Provider = %q, want %q", cfg.Clients.LLM.Provider, "openai")
	}
}

func TestConfig_InvalidProviderRejected(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Clients.LLM.Provider = "parrot"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestConfig_ZeroPeerConcurrencyRejected(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Analysis.PeerConcurrency = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero peer concurrency")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "findigest.toml")
	content := `
environment = "production"

[clients.fmp]
exchange = "NYSE"
timeout = "5s"

[analysis]
peer_limit = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Clients.FMP.Exchange != "NYSE" {
		t.Errorf("Exchange = %q, want NYSE", cfg.Clients.FMP.Exchange)
	}
	if cfg.Clients.FMP.GetTimeout() != 5*time.Second {
		t.Errorf("FMP timeout = %v, want 5s", cfg.Clients.FMP.GetTimeout())
	}
	if cfg.Analysis.PeerLimit != 3 {
		t.Errorf("PeerLimit = %d, want 3", cfg.Analysis.PeerLimit)
	}
	// Untouched defaults survive
	if cfg.Analysis.HistoryYears != 5 {
		t.Errorf("HistoryYears = %d, want 5", cfg.Analysis.HistoryYears)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Clients.FMP.Exchange != "NASDAQ" {
		t.Errorf("Exchange = %q, want NASDAQ", cfg.Clients.FMP.Exchange)
	}
}

func TestGetTimeout_InvalidFallsBack(t *testing.T) {
	fmp := FMPConfig{Timeout: "soon"}
	if got := fmp.GetTimeout(); got != 30*time.Second {
		t.Errorf("FMP fallback timeout = %v, want 30s", got)
	}
	llm := LLMConfig{Timeout: ""}
	if got := llm.GetTimeout(); got != 60*time.Second {
		t.Errorf("LLM fallback timeout = %v, want 60s", got)
	}
}

func TestResolveAPIKey_EnvBeatsFallback(t *testing.T) {
	t.Setenv("FMP_API_KEY", "from-env")

	key, err := ResolveAPIKey("fmp_api_key", "from-config")
	if err != nil {
		t.Fatalf("ResolveAPIKey failed: %v", err)
	}
	if key != "from-env" {
		t.Errorf("key = %q, want from-env", key)
	}
}

func TestResolveAPIKey_Missing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FINDIGEST_OPENAI_API_KEY", "")

	if _, err := ResolveAPIKey("openai_api_key", ""); err == nil {
		t.Fatal("expected error for missing key")
	}
}
