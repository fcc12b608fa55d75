package app

import (
	"strings"
	"testing"
)

func TestApplyRuntimeDefaultsGeneratesMissingSecrets(t *testing.T) {
	cfg := &Config{}

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if cfg.Auth.Access.Secret == "" || cfg.Auth.Refresh.Secret == "" {
		t.Fatal("expected both token secrets to be generated")
	}
	if cfg.Auth.Access.Secret == cfg.Auth.Refresh.Secret {
		t.Fatal("access and refresh secrets must differ")
	}
	if !generated["auth.access.secret"] || !generated["auth.refresh.secret"] {
		t.Fatalf("expected generated map to include both secrets: %#v", generated)
	}
}

func TestApplyRuntimeDefaultsPreservesExistingSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.Access.Secret = strings.Repeat("a", 10)
	cfg.Auth.Refresh.Secret = strings.Repeat("b", 10)

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if len(generated) != 0 {
		t.Fatalf("expected no keys generated, got %#v", generated)
	}
	if cfg.Auth.Access.Secret != strings.Repeat("a", 10) {
		t.Fatal("existing access secret was overwritten")
	}
}

func TestApplyRuntimeDefaultsNilConfig(t *testing.T) {
	_, err := ApplyRuntimeDefaults(nil)
	if err == nil || !strings.Contains(err.Error(), "config is nil") {
		t.Fatalf("expected nil config error, got %v", err)
	}
}
