// Package config handles the YAML configuration of the folio tool.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation, so that API keys stay out of the file.
package config

import "time"

// Config is the content of a folio configuration file.
type Config struct {
	Prices  PricesConfig  `yaml:"prices"`
	Storage StorageConfig `yaml:"storage"`
	Wallet  WalletConfig  `yaml:"wallet"`
	// Tokens are priced in addition to the ones found in the ledger.
	Tokens    []string `yaml:"tokens"`
	CostBasis bool     `yaml:"cost_basis"`
}

// PricesConfig locates the price quote service.
type PricesConfig struct {
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	CacheDir string        `yaml:"cache_dir"` // empty disables the daily cache
	Timeout  time.Duration `yaml:"timeout"`
}

// StorageConfig tells where snapshots are persisted. Both sinks can be used at once.
type StorageConfig struct {
	SQLite    string `yaml:"sqlite"`
	Snapshots string `yaml:"snapshots"` // JSONL file
}

// WalletConfig identifies the wallet.
type WalletConfig struct {
	PlatformID int    `yaml:"platform_id"`
	Address    string `yaml:"address"`
}
