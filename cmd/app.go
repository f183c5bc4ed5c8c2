// Package cmd implements the CLI application to value a wallet history.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/tokenfolio"
	"github.com/etnz/tokenfolio/config"
	"github.com/etnz/tokenfolio/quotes"
	"github.com/etnz/tokenfolio/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&processCmd{}, "wallet")
	c.Register(&gainsCmd{}, "wallet")
	c.Register(&bucketsCmd{}, "tools")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", os.Getenv(EnvConfigFile), "Path to the YAML configuration file")
	ledgerFile   = flag.String("ledger-file", envOr(EnvLedgerFile, "transactions.jsonl"), "Path to the wallet transactions file (JSONL format, newest first)")
	balancesFile = flag.String("balances-file", os.Getenv(EnvBalancesFile), "Path to the current balances of the wallet (JSON object)")
	walletFlag   = flag.String("wallet", "", "Wallet address, overrides the configuration")
	Verbose      = flag.Bool("v", false, "Verbose logging")
)

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// loadConfig reads the configuration file if any, and applies the global flags on top of it.
func loadConfig() (*config.Config, error) {
	cfg := new(config.Config)
	if *configFile != "" {
		c, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if *walletFlag != "" {
		cfg.Wallet.Address = *walletFlag
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// priceProvider returns the quote client of the configuration, or nil if no
// service is configured.
func priceProvider(cfg *config.Config) tokenfolio.PriceProvider {
	if cfg.Prices.URL == "" {
		log.Println("warning, no price service configured, every price is zero")
		return nil
	}
	c := quotes.New(cfg.Prices.URL, cfg.Prices.APIKey, cfg.Prices.CacheDir)
	c.HTTP.Timeout = cfg.Prices.Timeout
	return c
}

// sinks returns the snapshot sinks of the configuration. close must be called once done.
func sinks(cfg *config.Config) (out []tokenfolio.SnapshotSink, close func(), err error) {
	close = func() {}
	if cfg.Storage.Snapshots != "" {
		out = append(out, tokenfolio.FileSink{Path: cfg.Storage.Snapshots})
	}
	if cfg.Storage.SQLite != "" {
		db, err := store.Open(cfg.Storage.SQLite)
		if err != nil {
			return nil, close, err
		}
		out = append(out, db)
		close = func() { db.Close() }
	}
	return out, close, nil
}

// decodeLedger reads the transactions and the balances files.
func decodeLedger() ([]tokenfolio.Transaction, tokenfolio.Balances, error) {
	f, err := os.Open(*ledgerFile)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	txs, err := tokenfolio.DecodeTransactions(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %q: %w", *ledgerFile, err)
	}

	if *balancesFile == "" {
		return txs, tokenfolio.Balances{}, nil
	}
	b, err := os.Open(*balancesFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, balances file %q does not exist, starting from empty balances", *balancesFile)
		return txs, tokenfolio.Balances{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer b.Close()
	balances, err := tokenfolio.DecodeBalances(b)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %q: %w", *balancesFile, err)
	}
	return txs, balances, nil
}

// decodeLots reads a persisted FIFO state. A missing file is an empty state.
func decodeLots(path string) (map[string][]tokenfolio.Lot, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tokenfolio.DecodeLots(f)
}

// parseTime parses an absolute date (RFC 3339 or YYYY-MM-DD), "now", or a
// duration before now such as "36h" or "30d".
func parseTime(s string, now time.Time) (time.Time, error) {
	switch {
	case s == "" || s == "now":
		return now, nil
	case strings.HasSuffix(s, "d"):
		if days, err := strconv.Atoi(strings.TrimSuffix(s, "d")); err == nil {
			return now.AddDate(0, 0, -days), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD, RFC 3339, now, or a duration like 30d", s)
}

// printWarnings prints the non fatal problems of a computation to stderr.
func printWarnings(warnings []error) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
}

// printMarkdown renders markdown in the terminal, or prints it as is if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
