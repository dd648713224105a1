package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "auto" || cfg.Language != "en" || cfg.Listen != ":8080" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.SettleDelay() != 0 {
		t.Fatalf("settle delay = %v, want 0 (bridge default)", cfg.SettleDelay())
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api_key: sk-from-file
model: gpt-4o-realtime-preview
mode: manual
language: es
persona: tutor
settle_delay_ms: 300
personas:
  tutor:
    name: Tutor
    instructions:
      default: "You are a patient tutor."
      es: "Eres un tutor paciente."
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-from-file" || cfg.Mode != "manual" || cfg.Language != "es" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.SettleDelay() != 300*time.Millisecond {
		t.Fatalf("settle delay = %v", cfg.SettleDelay())
	}

	ps := cfg.PersonaSet()
	ins, ok := ps.Resolve("tutor", "es")
	if !ok || ins != "Eres un tutor paciente." {
		t.Fatalf("resolved %q, ok=%v", ins, ok)
	}
	// The map key fills in the persona ID when the file omits it.
	if ps["tutor"].ID != "tutor" {
		t.Fatalf("persona ID = %q", ps["tutor"].ID)
	}
}

func TestEnvOverridesFileAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_key: sk-from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIKey, "sk-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-from-env" {
		t.Fatalf("api key = %q, want env value", cfg.APIKey)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mode: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on malformed YAML")
	}
}
