package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	AdminToken string
	TokenFile  string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("RABBLE_SERVER", "http://localhost:3000"),
		AdminToken: os.Getenv("RABBLE_ADMIN_TOKEN"),
		TokenFile:  getEnvOrDefault("RABBLE_TOKEN_FILE", defaultTokenFile()),
		Output:     "text",
		Verbose:    false,
	}
}

// LoadToken loads the admin token from file if not already set
func (c *Config) LoadToken() error {
	if c.AdminToken != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.AdminToken = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the admin token to the token file
func (c *Config) SaveToken(token string) error {
	c.AdminToken = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rabble/admin-token"
	}
	return filepath.Join(home, ".rabble", "admin-token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
