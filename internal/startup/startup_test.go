package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PIXELFIN_TEST_STR", "value")
	if got := getEnv("PIXELFIN_TEST_STR", "fallback"); got != "value" {
		t.Errorf("getEnv() = %q", got)
	}
	if got := getEnv("PIXELFIN_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv() fallback = %q", got)
	}

	t.Setenv("PIXELFIN_TEST_BOOL", "true")
	if !getEnvBool("PIXELFIN_TEST_BOOL", false) {
		t.Error("getEnvBool() should parse true")
	}
	t.Setenv("PIXELFIN_TEST_BOOL", "notabool")
	if getEnvBool("PIXELFIN_TEST_BOOL", false) {
		t.Error("getEnvBool() should fall back on parse error")
	}

	t.Setenv("PIXELFIN_TEST_INT", "42")
	if got := getEnvInt("PIXELFIN_TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt() = %d", got)
	}
	t.Setenv("PIXELFIN_TEST_INT", "-3")
	if got := getEnvInt("PIXELFIN_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt() should reject negatives, got %d", got)
	}
}

func TestEnsureDirectory(t *testing.T) {
	base := t.TempDir()

	dir := filepath.Join(base, "new")
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Fatalf("ensureDirectory() error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	// Existing directory is fine, existing file is not.
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Errorf("ensureDirectory() on existing dir: %v", err)
	}
	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("ensureDirectory() should reject a plain file")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("OUTPUT_DIR", filepath.Join(base, "out"))
	t.Setenv("DATA_DIR", filepath.Join(base, "data"))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Port != "1280" || cfg.MetricsPort != "9090" {
		t.Errorf("unexpected ports: %s / %s", cfg.Port, cfg.MetricsPort)
	}
	if cfg.DatabasePath != filepath.Join(cfg.DataDir, "pixelfin.db") {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}
