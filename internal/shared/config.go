package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Backend BackendConfig `toml:"backend"`
}

// SpotifyConfig contains the Spotify application registration.
//
// ClientSecret is accepted for users who registered a confidential app but
// the session authenticates as a public PKCE client and never sends it.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// BackendConfig contains the xomify statistics backend settings.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// DatabaseConfig contains credential database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the local OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A .env file in the working directory is loaded first (if present), and
// XOMIFY_* environment variables override file values so secrets can stay
// out of config.toml.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	_ = godotenv.Load()

	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}

	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DatabasePath resolves the configured database path, expanding an empty
// value to ~/.xomify/xomify.db.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "xomify.db"
	}
	return filepath.Join(home, ".xomify", "xomify.db")
}

func (c *Config) applyEnv() {
	for env, dest := range map[string]*string{
		"XOMIFY_SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"XOMIFY_SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"XOMIFY_SPOTIFY_REDIRECT_URI":  &c.Credentials.Spotify.RedirectURI,
		"XOMIFY_BACKEND_BASE_URL":      &c.Credentials.Backend.BaseURL,
		"XOMIFY_BACKEND_TOKEN":         &c.Credentials.Backend.Token,
	} {
		if v := os.Getenv(env); v != "" {
			*dest = v
		}
	}
}
