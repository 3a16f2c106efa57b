package googletasks

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"todo/internal/config"
	"todo/internal/service"
)

// OAuthConfig reads the desktop OAuth client stored in the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, service.WrapError(service.ErrCodeUnauthorized, "failed to read "+config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, service.WrapError(service.ErrCodeUnauthorized, "invalid "+config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, service.WrapError(service.ErrCodeUnauthorized, "not logged in", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, service.WrapError(service.ErrCodeUnauthorized, "invalid "+config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken writes token as JSON with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
