package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	p := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(p, []byte("FINTRACK_CLI_TEST=hello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FINTRACK_CLI_TEST", "")
	os.Unsetenv("FINTRACK_CLI_TEST")
	if err := LoadEnvFile(p); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("FINTRACK_CLI_TEST"); got != "hello" {
		t.Fatalf("expected variable from env file, got %q", got)
	}
}

func TestLoadConfigValidates(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected validation error")
	}
	t.Setenv("PORT", "8090")
	cfg, err := LoadConfig()
	if err != nil || cfg.Port != "8090" {
		t.Fatalf("unexpected %+v %v", cfg, err)
	}
}

func TestSetupLogger(t *testing.T) {
	l := SetupLogger("bogus", "test")
	if l.Component() != "test" {
		t.Fatalf("component = %s", l.Component())
	}
}
