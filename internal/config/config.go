// Package config handles the configuration directory and layered settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the TOML settings filename inside the config directory.
	ConfigFile = "config.toml"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// LogFile is the default log filename used by the interactive view.
	LogFile = "todo.log"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Default values.
const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultUserID     = "user123"
	DefaultPageLimit  = 5
	DefaultTimeout    = "10s"
	DefaultGoogleList = "@default"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Backend selects the Service implementation.
	Backend string `toml:"backend"`

	API    APIConfig    `toml:"api"`
	Google GoogleConfig `toml:"google"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

// APIConfig configures the REST backend.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	UserID  string `toml:"user_id"`

	// Token is a static bearer token. When empty and TokenURL is set,
	// tokens are obtained with the OAuth2 client-credentials grant.
	Token        string `toml:"token"`
	TokenURL     string `toml:"token_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// Timeout bounds each request that has no context deadline, e.g. "10s".
	Timeout string `toml:"timeout"`
}

// GoogleConfig configures the Google Tasks backend.
type GoogleConfig struct {
	ListID string `toml:"list_id"`
}

// UIConfig configures the view-model.
type UIConfig struct {
	PageLimit          int  `toml:"page_limit"`
	SurfaceWriteErrors bool `toml:"surface_write_errors"`
}

// LogConfig configures the operator log.
type LogConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
	File     string `toml:"file"`
}

// Default returns a Config populated with defaults for the given directory.
func Default(dir string) *Config {
	return &Config{
		Dir:     dir,
		Backend: BackendREST,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			UserID:  DefaultUserID,
			Timeout: DefaultTimeout,
		},
		Google: GoogleConfig{ListID: DefaultGoogleList},
		UI: UIConfig{
			PageLimit:          DefaultPageLimit,
			SurfaceWriteErrors: true,
		},
		Log: LogConfig{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogFormat,
		},
	}
}

// New creates a Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// No files or environment variables are read; see Load.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return Default(dir), nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		errs = append(errs, fmt.Errorf("unknown backend: %s", c.Backend))
	}
	if strings.TrimSpace(c.API.UserID) == "" {
		errs = append(errs, errors.New("user id is required"))
	}
	if c.UI.PageLimit < 1 {
		errs = append(errs, fmt.Errorf("invalid page limit: %d", c.UI.PageLimit))
	}
	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Backend == BackendREST && strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	return errors.Join(errs...)
}

// RequestTimeout parses API.Timeout. An empty value means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.API.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid api timeout: %s", c.API.Timeout)
	}
	return d, nil
}

// ConfigPath returns the path to the TOML settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// DefaultLogPath returns the log file used when the terminal is busy.
func (c *Config) DefaultLogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
