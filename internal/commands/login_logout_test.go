package commands_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
)

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cmd := &commands.LoginCmd{}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: false,
	}

	ctx := context.Background()
	code := cmd.Run(ctx, &commands.Env{Config: cfg}, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if errBuf.String() == "" {
		t.Error("expected error message about missing oauth_client.json")
	}
}

// TestLoginCommand_InvalidToken verifies login proceeds when token is invalid/corrupt
func TestLoginCommand_InvalidToken(t *testing.T) {
	cmd := &commands.LoginCmd{}

	tmpDir := t.TempDir()

	// Create oauth_client.json
	oauthClient := `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`
	err := os.WriteFile(filepath.Join(tmpDir, "oauth_client.json"), []byte(oauthClient), 0600)
	if err != nil {
		t.Fatalf("failed to write oauth_client.json: %v", err)
	}

	// Create invalid token.json (no refresh token)
	invalidToken := `{"access_token":"expired","token_type":"Bearer"}`
	err = os.WriteFile(filepath.Join(tmpDir, "token.json"), []byte(invalidToken), 0600)
	if err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   tmpDir,
		Quiet: false,
	}

	// Create a context that cancels immediately to prevent waiting for OAuth callback
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = cmd.Run(ctx, &commands.Env{Config: cfg}, nil, &outBuf, &errBuf)

	// Should try to proceed with login (context cancelled, so it will error)
	// The important thing is it didn't say "already logged in"
	if outBuf.String() == "already logged in\n" {
		t.Error("should not say 'already logged in' with invalid token")
	}
}

// TestLoginCommand_NoRefreshToken verifies login proceeds when token has no refresh token
func TestLoginCommand_NoRefreshToken(t *testing.T) {
	cmd := &commands.LoginCmd{}

	tmpDir := t.TempDir()

	// Create oauth_client.json
	oauthClient := `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`
	err := os.WriteFile(filepath.Join(tmpDir, "oauth_client.json"), []byte(oauthClient), 0600)
	if err != nil {
		t.Fatalf("failed to write oauth_client.json: %v", err)
	}

	// Create token.json without refresh_token
	tokenWithoutRefresh := `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`
	err = os.WriteFile(filepath.Join(tmpDir, "token.json"), []byte(tokenWithoutRefresh), 0600)
	if err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   tmpDir,
		Quiet: false,
	}

	// Create a context that cancels immediately
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := cmd.Run(ctx, &commands.Env{Config: cfg}, nil, &outBuf, &errBuf)

	// Should try to proceed with login (not "already logged in")
	if outBuf.String() == "already logged in\n" {
		t.Error("should not say 'already logged in' with token missing refresh_token")
	}
	_ = code // We don't care about the exact exit code, just that it tried to re-login
}

// TestLogoutCommand_OnlyRemovesToken verifies logout only removes token.json
func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	tmpDir := t.TempDir()

	// Create oauth_client.json
	oauthClient := `{"installed":{"client_id":"test","client_secret":"test"}}`
	oauthPath := filepath.Join(tmpDir, "oauth_client.json")
	err := os.WriteFile(oauthPath, []byte(oauthClient), 0600)
	if err != nil {
		t.Fatalf("failed to write oauth_client.json: %v", err)
	}

	// Create token.json
	tokenPath := filepath.Join(tmpDir, "token.json")
	err = os.WriteFile(tokenPath, []byte(`{"access_token":"test","refresh_token":"test"}`), 0600)
	if err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   tmpDir,
		Quiet: false,
	}

	ctx := context.Background()
	code := cmd.Run(ctx, &commands.Env{Config: cfg}, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", outBuf.String())
	}

	// Verify token.json was deleted
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should have been deleted")
	}

	// Verify oauth_client.json still exists
	if _, err := os.Stat(oauthPath); err != nil {
		t.Error("oauth_client.json should NOT have been deleted")
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: false,
	}

	ctx := context.Background()
	code := cmd.Run(ctx, &commands.Env{Config: cfg}, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "not logged in\n" {
		t.Errorf("expected 'not logged in\\n', got %q", outBuf.String())
	}
}

// TestLogoutCommand_NotLoggedInQuiet verifies logout is quiet when not logged in
func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	cmd := &commands.LogoutCmd{}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: true,
	}

	ctx := context.Background()
	code := cmd.Run(ctx, &commands.Env{Config: cfg}, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", outBuf.String())
	}
}

// TestLoginCommand_CallbackRejected verifies login fails when the browser
// returns a foreign state or a denial instead of a code
func TestLoginCommand_CallbackRejected(t *testing.T) {
	tests := []struct {
		name      string
		query     func(state string) string
		wantError string
	}{
		{
			name:      "foreign state",
			query:     func(string) string { return "state=forged&code=abc" },
			wantError: "error: oauth state mismatch",
		},
		{
			name:      "access denied",
			query:     func(state string) string { return "state=" + url.QueryEscape(state) + "&error=access_denied" },
			wantError: "error: authorization denied: access_denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			oauthClient := `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`
			if err := os.WriteFile(filepath.Join(tmpDir, "oauth_client.json"), []byte(oauthClient), 0600); err != nil {
				t.Fatalf("failed to write oauth_client.json: %v", err)
			}
			cfg := &config.Config{Dir: tmpDir}

			errReader, errWriter := io.Pipe()
			var outBuf bytes.Buffer
			done := make(chan int, 1)
			go func() {
				done <- (&commands.LoginCmd{}).Run(context.Background(), &commands.Env{Config: cfg}, nil, &outBuf, errWriter)
				errWriter.Close()
			}()

			// The consent URL is printed before the callback server waits
			var authURL string
			scanner := bufio.NewScanner(errReader)
			for scanner.Scan() {
				if line := scanner.Text(); strings.HasPrefix(line, "https://") {
					authURL = line
					break
				}
			}
			rest := make(chan string, 1)
			go func() {
				data, _ := io.ReadAll(errReader)
				rest <- string(data)
			}()
			if authURL == "" {
				<-done
				t.Skipf("no callback port available: %s", <-rest)
			}

			u, err := url.Parse(authURL)
			if err != nil {
				t.Fatalf("invalid auth URL %q: %v", authURL, err)
			}
			state := u.Query().Get("state")
			if state == "" || state == "state" {
				t.Errorf("expected a random state, got %q", state)
			}

			resp, err := http.Get(u.Query().Get("redirect_uri") + "?" + tt.query(state))
			if err != nil {
				t.Fatalf("callback request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
			}

			if code := <-done; code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
			if stderr := <-rest; !strings.Contains(stderr, tt.wantError) {
				t.Errorf("expected %q in stderr, got %q", tt.wantError, stderr)
			}
			if outBuf.String() != "" {
				t.Errorf("expected no stdout, got %q", outBuf.String())
			}
			if cfg.HasToken() {
				t.Error("token.json must not be written")
			}
		})
	}
}
