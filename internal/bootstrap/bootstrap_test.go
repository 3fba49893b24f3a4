package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"jobtrack/internal/config"
)

func TestEnsureSessionSecret_GeneratesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")

	cfg := &config.Config{}
	cfg.Auth.Session.SecretFile = path

	if err := ensureSessionSecret(cfg); err != nil {
		t.Fatalf("ensureSessionSecret error: %v", err)
	}
	first := cfg.Auth.Session.Secret
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat secret file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 perms, got %v", info.Mode().Perm())
	}

	// A second run must load the same secret rather than regenerate.
	cfg2 := &config.Config{}
	cfg2.Auth.Session.SecretFile = path
	if err := ensureSessionSecret(cfg2); err != nil {
		t.Fatalf("ensureSessionSecret reload error: %v", err)
	}
	if cfg2.Auth.Session.Secret != first {
		t.Fatalf("expected reloaded secret to match, got %q vs %q", cfg2.Auth.Session.Secret, first)
	}
}

func TestEnsureSessionSecret_InlineSecretWins(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Session.Secret = "inline"
	cfg.Auth.Session.SecretFile = filepath.Join(t.TempDir(), "unused.key")

	if err := ensureSessionSecret(cfg); err != nil {
		t.Fatalf("ensureSessionSecret error: %v", err)
	}
	if cfg.Auth.Session.Secret != "inline" {
		t.Fatalf("expected inline secret to be kept, got %q", cfg.Auth.Session.Secret)
	}
	if _, err := os.Stat(cfg.Auth.Session.SecretFile); !os.IsNotExist(err) {
		t.Fatalf("expected secret file not to be written")
	}
}
