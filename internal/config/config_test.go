package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_PATH", "SESSION_SECRET", "GIN_MODE", "ALLOWED_ORIGINS", "SUPER_ROOT_USER_NAME", "SUPER_ROOT_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Port != "8080" || cfg.ListenAddr != ":8080" || cfg.DatabasePath != "deepwork.db" || cfg.GinMode != "release" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionSecret == "" || len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", " 9000 ")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SUPER_ROOT_USER_NAME", "root")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("listen addr should follow port, got %q", cfg.ListenAddr)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.SuperRootUserName != "root" {
		t.Fatalf("unexpected user: %q", cfg.SuperRootUserName)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "deepwork.yaml")
	content := "port: \"7000\"\ndatabase_path: /tmp/dw.db\nallowed_origins:\n  - http://app.test\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.Port != "7000" || cfg.ListenAddr != ":7000" || cfg.DatabasePath != "/tmp/dw.db" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.SessionSecret != "from-env" {
		t.Fatalf("unset file keys should keep env values, got %q", cfg.SessionSecret)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://app.test" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_PATH=data/dw.db\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	os.Unsetenv("DATABASE_PATH")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := Load().DatabasePath; got != "data/dw.db" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}
