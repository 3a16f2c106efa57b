package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvFile is the dotenv file read from the working directory.
const EnvFile = ".env"

// Load builds the configuration for configDir.
// Precedence, lowest first: defaults, config.toml, .env / environment.
// Flags are applied by the caller afterwards.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	if err := loadConfigFile(cfg, cfg.ConfigPath()); err != nil {
		return nil, err
	}

	// A missing .env is normal; existing variables win over the file.
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", EnvFile, err)
	}
	applyEnv(cfg)

	return cfg, nil
}

// loadConfigFile decodes TOML over the defaults already in cfg.
// A missing file is not an error.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read %s: %w", path, err)
}

func applyEnv(cfg *Config) {
	cfg.Backend = getString("TODO_BACKEND", cfg.Backend)
	cfg.API.BaseURL = getString("TODO_API_URL", cfg.API.BaseURL)
	cfg.API.UserID = getString("TODO_USER_ID", cfg.API.UserID)
	cfg.API.Token = getString("TODO_API_TOKEN", cfg.API.Token)
	cfg.API.TokenURL = getString("TODO_TOKEN_URL", cfg.API.TokenURL)
	cfg.API.ClientID = getString("TODO_CLIENT_ID", cfg.API.ClientID)
	cfg.API.ClientSecret = getString("TODO_CLIENT_SECRET", cfg.API.ClientSecret)
	cfg.API.Timeout = getString("TODO_API_TIMEOUT", cfg.API.Timeout)
	cfg.Google.ListID = getString("TODO_GOOGLE_LIST", cfg.Google.ListID)
	cfg.UI.PageLimit = getInt("TODO_PAGE_LIMIT", cfg.UI.PageLimit)
	cfg.UI.SurfaceWriteErrors = getBool("TODO_SURFACE_WRITE_ERRORS", cfg.UI.SurfaceWriteErrors)
	cfg.Log.Level = getString("TODO_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getString("TODO_LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.File = getString("TODO_LOG_FILE", cfg.Log.File)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
