package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPlatformID    = 1027 // Ethereum, in CoinMarketCap ids
	DefaultPricesTimeout = 30 * time.Second
)

// ApplyDefaults fills the optional fields left empty.
func (c *Config) ApplyDefaults() {
	if c.Wallet.PlatformID == 0 {
		c.Wallet.PlatformID = DefaultPlatformID
	}
	if c.Prices.Timeout == 0 {
		c.Prices.Timeout = DefaultPricesTimeout
	}
}
