package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

func googleEnv(dir string, quiet bool) *commands.Env {
	cfg := config.Default(dir)
	cfg.Backend = config.BackendGoogleTasks
	cfg.Quiet = quiet
	return &commands.Env{Config: cfg}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cmd := &commands.LoginCmd{}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), googleEnv(t.TempDir(), false), nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if !strings.Contains(errBuf.String(), "oauth_client.json not found") {
		t.Errorf("expected setup help, got %q", errBuf.String())
	}
}

// TestLoginCommand_RESTBackend verifies login refuses to run for the REST backend
func TestLoginCommand_RESTBackend(t *testing.T) {
	cmd := &commands.LoginCmd{}
	env := &commands.Env{Config: config.Default(t.TempDir())}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), env, nil, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(errBuf.String(), "googletasks backend") {
		t.Errorf("expected backend hint, got %q", errBuf.String())
	}
}

// TestLoginCommand_InvalidToken verifies login proceeds when token is invalid/corrupt
func TestLoginCommand_InvalidToken(t *testing.T) {
	cmd := &commands.LoginCmd{}
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "oauth_client.json", testOAuthClient)
	writeFile(t, tmpDir, "token.json", `{"access_token":"expired","token_type":"Bearer"}`)

	// Cancel immediately to prevent waiting for the OAuth callback
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(ctx, googleEnv(tmpDir, false), nil, &outBuf, &errBuf)

	if outBuf.String() == "already logged in\n" {
		t.Error("should not say 'already logged in' with invalid token")
	}
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
}

// TestLoginCommand_NoRefreshToken verifies login proceeds when token has no refresh token
func TestLoginCommand_NoRefreshToken(t *testing.T) {
	cmd := &commands.LoginCmd{}
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "oauth_client.json", testOAuthClient)
	writeFile(t, tmpDir, "token.json", `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outBuf, errBuf bytes.Buffer
	_ = cmd.Run(ctx, googleEnv(tmpDir, false), nil, &outBuf, &errBuf)

	if outBuf.String() == "already logged in\n" {
		t.Error("should not say 'already logged in' with token missing refresh_token")
	}
}

// TestLogoutCommand_OnlyRemovesToken verifies logout only removes token.json
func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	cmd := &commands.LogoutCmd{}
	tmpDir := t.TempDir()
	oauthPath := writeFile(t, tmpDir, "oauth_client.json", testOAuthClient)
	tokenPath := writeFile(t, tmpDir, "token.json", `{"access_token":"test","refresh_token":"test"}`)

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), googleEnv(tmpDir, false), nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", outBuf.String())
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should have been deleted")
	}
	if _, err := os.Stat(oauthPath); err != nil {
		t.Error("oauth_client.json should NOT have been deleted")
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), googleEnv(t.TempDir(), false), nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if outBuf.String() != "not logged in\n" {
		t.Errorf("expected 'not logged in\\n', got %q", outBuf.String())
	}
}

// TestLogoutCommand_NotLoggedInQuiet verifies logout is quiet when not logged in
func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), googleEnv(t.TempDir(), true), nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", outBuf.String())
	}
}
