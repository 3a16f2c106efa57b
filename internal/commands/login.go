package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/exitcode"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command for the Google Tasks backend.
type LoginCmd struct{}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authenticate with Google Tasks" }
func (c *LoginCmd) Usage() string      { return "todo login [common flags]" }
func (c *LoginCmd) NeedsBackend() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Backend == config.BackendREST {
		fmt.Fprintln(errOut, "error: login is only needed for the googletasks backend")
		fmt.Fprintln(errOut, "The REST backend reads [api] token or client credentials from config.toml.")
		return exitcode.UserError
	}

	if !cfg.HasOAuthClient() {
		writeOAuthSetupHelp(errOut, cfg.Dir)
		return exitcode.AuthError
	}

	if cfg.HasToken() && isTokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind to local port for OAuth callback\n")
		return exitcode.AuthError
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)
	log.Debug("waiting for oauth callback", zap.Int("port", port))

	code, err := waitForCode(ctx, listener)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	log.Info("oauth token saved", zap.String("path", cfg.TokenPath()))

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func writeOAuthSetupHelp(w io.Writer, dir string) {
	fmt.Fprintf(w, "error: oauth_client.json not found in %s\n\n", dir)
	fmt.Fprintln(w, "To use the Google Tasks backend, you need OAuth credentials:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(w, "2. Enable the Google Tasks API:")
	fmt.Fprintln(w, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(w, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON file")
	fmt.Fprintln(w, "4. Save it as:")
	fmt.Fprintf(w, "   %s/oauth_client.json\n", dir)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Then run 'todo login' again.")
}

// waitForCode serves the loopback callback until a code arrives.
func waitForCode(ctx context.Context, listener net.Listener) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- errors.New("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(oauthCallbackTimeout):
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}

// isTokenValid reports whether the stored token has a refresh token and
// can still be refreshed.
func isTokenValid(ctx context.Context, cfg *config.Config) bool {
	token, err := googletasks.LoadToken(cfg.TokenPath())
	if err != nil || token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}
