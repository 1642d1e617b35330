package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProvidersConfig is the bank provider file (BANK_PROVIDERS_FILE). It is read
// once at startup.
type ProvidersConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
	Accounts  []AccountConfig  `yaml:"accounts"`
}

// ProviderConfig describes one bank data source.
type ProviderConfig struct {
	Code string `yaml:"code"`
	Kind string `yaml:"kind"` // "csv" or "http"

	// csv
	Directory string `yaml:"directory,omitempty"`

	// http
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// AccountConfig binds a club bank account to a provider.
type AccountConfig struct {
	AccountRef string `yaml:"account_ref"`
	ClubID     int64  `yaml:"club_id"`
	Provider   string `yaml:"provider"`
}

// LoadProviders reads the provider file. An empty path yields an empty config.
func LoadProviders(path string) (*ProvidersConfig, error) {
	if path == "" {
		return &ProvidersConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}

	var cfg ProvidersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing providers file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ProvidersConfig) Validate() error {
	codes := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Code == "" {
			return fmt.Errorf("provider without code")
		}
		if codes[p.Code] {
			return fmt.Errorf("duplicate provider code %q", p.Code)
		}
		codes[p.Code] = true

		switch p.Kind {
		case "csv":
			if p.Directory == "" {
				return fmt.Errorf("provider %q: directory is required", p.Code)
			}
		case "http":
			if p.BaseURL == "" {
				return fmt.Errorf("provider %q: base_url is required", p.Code)
			}
		default:
			return fmt.Errorf("provider %q: unknown kind %q", p.Code, p.Kind)
		}
	}

	refs := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.AccountRef == "" || a.ClubID == 0 {
			return fmt.Errorf("account entries need account_ref and club_id")
		}
		if refs[a.AccountRef] {
			return fmt.Errorf("duplicate account %q", a.AccountRef)
		}
		refs[a.AccountRef] = true
		if !codes[a.Provider] {
			return fmt.Errorf("account %q: unknown provider %q", a.AccountRef, a.Provider)
		}
	}
	return nil
}
