package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_QUOTES_KEY", "secret123")

	yaml := `
prices:
  url: https://quotes.example.com/graphql
  api_key: ${TEST_QUOTES_KEY}
  timeout: 5s
storage:
  sqlite: folio.db
wallet:
  platform_id: 56
  address: "0xabc"
tokens: [ETH, BTC]
cost_basis: true
`
	cfg, err := LoadAndValidate(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Prices.APIKey != "secret123" {
		t.Errorf("Prices.APIKey = %q, want %q", cfg.Prices.APIKey, "secret123")
	}
	if cfg.Prices.Timeout != 5*time.Second {
		t.Errorf("Prices.Timeout = %v, want 5s", cfg.Prices.Timeout)
	}
	if cfg.Wallet.PlatformID != 56 || cfg.Wallet.Address != "0xabc" {
		t.Errorf("Wallet = %+v", cfg.Wallet)
	}
	if len(cfg.Tokens) != 2 || !cfg.CostBasis {
		t.Errorf("Tokens = %v, CostBasis = %v", cfg.Tokens, cfg.CostBasis)
	}
	if cfg.Storage.SQLite != "folio.db" {
		t.Errorf("Storage.SQLite = %q, want folio.db", cfg.Storage.SQLite)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadAndValidate(writeTempFile(t, "wallet:\n  address: \"0xabc\"\n"))
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Wallet.PlatformID != DefaultPlatformID {
		t.Errorf("Wallet.PlatformID = %d, want %d", cfg.Wallet.PlatformID, DefaultPlatformID)
	}
	if cfg.Prices.Timeout != DefaultPricesTimeout {
		t.Errorf("Prices.Timeout = %v, want %v", cfg.Prices.Timeout, DefaultPricesTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing address", func(c *Config) { c.Wallet.Address = "" }, "wallet.address"},
		{"relative url", func(c *Config) { c.Prices.URL = "/graphql" }, "prices.url"},
		{"missing api key", func(c *Config) { c.Prices.APIKey = "" }, "prices.api_key"},
		{"negative timeout", func(c *Config) { c.Prices.Timeout = -time.Second }, "prices.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Prices: PricesConfig{URL: "https://quotes.example.com", APIKey: "k"},
				Wallet: WalletConfig{Address: "0xabc"},
			}
			cfg.ApplyDefaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
	if _, err := Load(writeTempFile(t, "wallet: [")); err == nil {
		t.Error("Load() of invalid yaml succeeded")
	}
}
