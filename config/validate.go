package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Wallet.Address == "" {
		return errors.New("wallet.address is required")
	}
	if c.Wallet.PlatformID < 0 {
		return fmt.Errorf("wallet.platform_id must be positive, got %d", c.Wallet.PlatformID)
	}

	if c.Prices.URL != "" {
		u, err := url.Parse(c.Prices.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("prices.url %q is not an absolute url", c.Prices.URL)
		}
		if c.Prices.APIKey == "" {
			return errors.New("prices.api_key is required with prices.url")
		}
	}
	if c.Prices.Timeout < 0 {
		return fmt.Errorf("prices.timeout must be positive, got %v", c.Prices.Timeout)
	}
	return nil
}
