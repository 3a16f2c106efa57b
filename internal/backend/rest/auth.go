package rest

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"todo/internal/config"
)

// TokenSource returns the bearer token source configured in api, or nil when
// the API is unauthenticated. A static token takes precedence over the
// client-credentials grant.
func TokenSource(ctx context.Context, api config.APIConfig) oauth2.TokenSource {
	if api.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: api.Token,
			TokenType:   "Bearer",
		})
	}
	if api.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     api.ClientID,
			ClientSecret: api.ClientSecret,
			TokenURL:     api.TokenURL,
		}
		// clientcredentials caches the token until it expires.
		return cc.TokenSource(ctx)
	}
	return nil
}

// NewFromConfig creates a client from the loaded configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts Options) (*Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	opts.BaseURL = cfg.API.BaseURL
	opts.Timeout = timeout
	if opts.TokenSource == nil {
		opts.TokenSource = TokenSource(ctx, cfg.API)
	}
	return New(opts)
}
