// Package clientconfig loads and stores the CLI's local settings.
package clientconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
)

// DefaultFileName is the config file created in the user's home directory.
const DefaultFileName = ".coffee"

// DefaultServer is used when neither a flag nor COFFEE_SERVER names a server.
const DefaultServer = "http://localhost:8080"

// ErrNoAPIKey is returned when no key was given and none is stored.
var ErrNoAPIKey = errors.New("no API key: pass --key or run 'coffee register EMAIL' first")

// File is the JSON document persisted between CLI runs.
type File struct {
	APIKey string `json:"api_key"`
}

// Env holds client settings read from the environment.
type Env struct {
	Server string `env:"COFFEE_SERVER" envDefault:"http://localhost:8080"`
}

// LoadEnv parses client settings from the environment.
func LoadEnv() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client env: %w", err)
	}
	return cfg, nil
}

// ResolveServer picks the server address: flag first, then environment, then default.
func ResolveServer(flagValue string, e *Env) string {
	if s := strings.TrimSpace(flagValue); s != "" {
		return s
	}
	if e != nil && strings.TrimSpace(e.Server) != "" {
		return strings.TrimSpace(e.Server)
	}
	return DefaultServer
}

// ResolvePath returns flagValue if set, otherwise ~/.coffee.
func ResolvePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Load reads the config file at path. A missing file yields (nil, nil).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f to path, readable by the owner only.
func Save(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ResolveAPIKey returns the explicit key if given, otherwise the stored one.
func ResolveAPIKey(explicit string, f *File) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if f != nil && f.APIKey != "" {
		return f.APIKey, nil
	}
	return "", ErrNoAPIKey
}
