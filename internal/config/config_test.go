package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.Backend != config.BackendREST {
		t.Errorf("expected backend %q, got %q", config.BackendREST, cfg.Backend)
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.UserID != "user123" {
		t.Errorf("expected default user, got %q", cfg.API.UserID)
	}
	if cfg.UI.PageLimit != 5 {
		t.Errorf("expected page limit 5, got %d", cfg.UI.PageLimit)
	}
	if !cfg.UI.SurfaceWriteErrors {
		t.Error("expected write errors to be surfaced by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "todo") {
		t.Errorf("expected xdg dir, got %q", got)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir) // keep a stray .env in the package dir out of the test

	file := `backend = "rest"

[api]
base_url = "http://tasks.internal:9000"
user_id = "alice"
timeout = "3s"

[ui]
page_limit = 20
surface_write_errors = false

[log]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(file), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("TODO_USER_ID", "bob")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://tasks.internal:9000" {
		t.Errorf("expected base url from file, got %q", cfg.API.BaseURL)
	}
	if cfg.API.UserID != "bob" {
		t.Errorf("expected env to override file, got %q", cfg.API.UserID)
	}
	if cfg.UI.PageLimit != 20 {
		t.Errorf("expected page limit 20, got %d", cfg.UI.PageLimit)
	}
	if cfg.UI.SurfaceWriteErrors {
		t.Error("expected surface_write_errors=false from file")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Log.Level)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Google.ListID != "@default" {
		t.Errorf("expected default google list, got %q", cfg.Google.ListID)
	}
	d, err := cfg.RequestTimeout()
	if err != nil || d != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v (%v)", d, err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TODO_PAGE_LIMIT=7\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TODO_PAGE_LIMIT") })

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UI.PageLimit != 7 {
		t.Errorf("expected page limit from .env, got %d", cfg.UI.PageLimit)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("backend = \n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := config.Load(dir); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BAD-KEY=1\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	_, err := config.Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed .env")
	}
	if !strings.Contains(err.Error(), ".env") {
		t.Errorf("expected error to name .env, got %v", err)
	}
}

func TestLoad_MissingDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := config.Load(dir); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"unknown backend", func(c *config.Config) { c.Backend = "ftp" }, "unknown backend: ftp"},
		{"empty user", func(c *config.Config) { c.API.UserID = "  " }, "user id is required"},
		{"zero limit", func(c *config.Config) { c.UI.PageLimit = 0 }, "invalid page limit: 0"},
		{"bad timeout", func(c *config.Config) { c.API.Timeout = "soon" }, "invalid api timeout: soon"},
		{"no base url", func(c *config.Config) { c.API.BaseURL = "" }, "api base url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestTokenHelpers(t *testing.T) {
	cfg := config.Default(t.TempDir())
	if cfg.HasToken() {
		t.Fatal("expected no token in empty dir")
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
	if !cfg.HasToken() {
		t.Error("expected token to be detected")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasToken() {
		t.Error("expected token to be removed")
	}
}
