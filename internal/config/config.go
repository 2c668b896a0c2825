/*
Package config handles loading and saving engage configuration.

Configuration is stored in ~/.engage.json. Environment variables (optionally
loaded from a .env file at startup) override the file for deployment-shaped
settings like the backend URL and the listen address.

Schema:

	{
	  "searchBaseUrl": "http://localhost:8080",
	  "listenAddr": ":7070",
	  "allowedOrigin": "http://localhost:3000",
	  "databasePath": "",
	  "history": {"capacity": 10, "viewCooldownSeconds": 30},
	  "suggest": {"minQueryLength": 2, "debounceMs": 300, "pageSize": 5, "trendingSize": 5}
	}
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration structure.
type Config struct {
	// SearchBaseURL is the storefront REST backend that serves product search.
	SearchBaseURL string `json:"searchBaseUrl"`

	// ListenAddr is the address the HTTP facade binds to.
	ListenAddr string `json:"listenAddr"`

	// AllowedOrigin is the storefront UI origin allowed by CORS.
	AllowedOrigin string `json:"allowedOrigin"`

	// DatabasePath overrides the default ~/.engage/engage.db location.
	// Empty means the default.
	DatabasePath string `json:"databasePath,omitempty"`

	// History configures the recently-viewed cache.
	History HistorySettings `json:"history"`

	// Suggest configures the suggestion pipeline.
	Suggest SuggestSettings `json:"suggest"`
}

// HistorySettings configures the recently-viewed cache.
type HistorySettings struct {
	// Capacity is the maximum number of retained viewed items.
	Capacity int `json:"capacity"`

	// ViewCooldownSeconds suppresses repeat view events per product.
	ViewCooldownSeconds int `json:"viewCooldownSeconds"`
}

// SuggestSettings configures the suggestion pipeline.
type SuggestSettings struct {
	// MinQueryLength is the minimum query length that triggers a remote lookup.
	MinQueryLength int `json:"minQueryLength"`

	// DebounceMs is the delay from last keystroke to request issuance.
	DebounceMs int `json:"debounceMs"`

	// PageSize is the remote lookup page size.
	PageSize int `json:"pageSize"`

	// TrendingSize is the number of terms in the trending view.
	TrendingSize int `json:"trendingSize"`
}

// NewConfig creates a configuration with the reference defaults.
func NewConfig() *Config {
	return &Config{
		SearchBaseURL: "http://localhost:8080",
		ListenAddr:    ":7070",
		AllowedOrigin: "http://localhost:3000",
		History: HistorySettings{
			Capacity:            10,
			ViewCooldownSeconds: 30,
		},
		Suggest: SuggestSettings{
			MinQueryLength: 2,
			DebounceMs:     300,
			PageSize:       5,
			TrendingSize:   5,
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.engage.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".engage.json"), nil
}

// Load reads the configuration from the default path and applies environment
// overrides.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrCreate reads the configuration, writing defaults if no file exists.
func LoadOrCreate() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = NewConfig()
		cfg.applyEnv()
		if saveErr := Save(cfg, configPath); saveErr != nil {
			return nil, saveErr
		}
	}

	return cfg, nil
}

// LoadFrom reads the configuration from a specific path and applies
// environment overrides. Missing files return the underlying os error so
// callers can distinguish "not found" from "corrupt".
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv("ENGAGE_SEARCH_URL"); v != "" {
		c.SearchBaseURL = v
	}
	if v := os.Getenv("ENGAGE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ENGAGE_ALLOWED_ORIGIN"); v != "" {
		c.AllowedOrigin = v
	}
	if v := os.Getenv("ENGAGE_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
}
