package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "folio"
	configFileName = "config.json"
	tokenFileName  = "tokens.json"

	// DefaultServer is used when nothing else names a server
	DefaultServer = "http://localhost:5000"

	BackendKeyring = "keyring"
	BackendFile    = "file"
)

// UserConfig represents the user's local configuration stored in ~/.config/folio/config.json
type UserConfig struct {
	ServerURL string `json:"server_url,omitempty"`
	// TokenBackend is "keyring" (default) or "file"
	TokenBackend string `json:"token_backend,omitempty"`
	// KnownServers are servers logged in to before, most recent first
	KnownServers []string `json:"known_servers,omitempty"`
}

const maxKnownServers = 10

// Dir returns the folio config directory. FOLIO_CONFIG_DIR overrides it.
func Dir() (string, error) {
	if dir := os.Getenv("FOLIO_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// TokenFilePath returns where the file token backend keeps tokens
func TokenFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	switch cfg.TokenBackend {
	case "", BackendKeyring, BackendFile:
	default:
		return nil, fmt.Errorf("invalid token_backend %q in %s (use %q or %q)", cfg.TokenBackend, configPath, BackendKeyring, BackendFile)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// ResolveServer picks the server URL: flag, then FOLIO_SERVER, then the
// config file, then DefaultServer.
func (c *UserConfig) ResolveServer(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("FOLIO_SERVER"); env != "" {
		return env
	}
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return DefaultServer
}

// SetServer updates the saved server URL
func SetServer(url string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.ServerURL = url
	return Save(cfg)
}

// RememberServer moves url to the front of the known servers
func RememberServer(url string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	known := []string{url}
	for _, s := range cfg.KnownServers {
		if s != url && len(known) < maxKnownServers {
			known = append(known, s)
		}
	}
	cfg.KnownServers = known
	return Save(cfg)
}
