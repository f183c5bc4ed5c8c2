package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/etnz/tokenfolio"
	"github.com/etnz/tokenfolio/renderer"
	"github.com/google/subcommands"
)

// processCmd holds the flags for the 'process' subcommand.
type processCmd struct {
	from, to, ref string
	tokens        string
	output        string
	metadata      string
	save          bool
	samples       string
	token         string
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "compute the valued history of a wallet" }
func (*processCmd) Usage() string {
	return `folio process [-s <date>] [-d <date>] [-ref <date>] [-tokens <list>] [-o <file>] [-m <file>] [-save] [-samples <file> -token <symbol>]

  Replays the wallet transactions over the bucket grid, values each bucket in
  USD, and prints the history.

  With -o, the full result (backfilled transactions, snapshots and metadata)
  is written as JSON. With -save, the snapshots are upserted into the
  storage of the configuration.

  With -samples, the history is built from a balance history of a single
  token (JSONL of {"timestamp", "balance"}) instead of the transactions,
  for wallets such as bitcoin addresses.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "30d", "Start of the history. See parseTime for supported formats.")
	f.StringVar(&c.to, "d", "now", "End of the history.")
	f.StringVar(&c.ref, "ref", "now", "Reference date the bucket recency is measured from.")
	f.StringVar(&c.tokens, "tokens", "", "Comma separated list of additional tokens to price")
	f.StringVar(&c.output, "o", "", "Write the result as JSON to this file")
	f.StringVar(&c.metadata, "m", "", "Wallet metadata file, read and updated in place")
	f.BoolVar(&c.save, "save", false, "Upsert the snapshots into the configured storage")
	f.StringVar(&c.samples, "samples", "", "Balance history file (JSONL) replacing the transaction replay")
	f.StringVar(&c.token, "token", "BTC", "Token of the -samples balance history")
}

// request builds the engine request common to the wallet commands. The
// ledger file is optional when withLedger is false.
func request(from, to, ref, tokens string, withLedger bool) (tokenfolio.Request, error) {
	now := time.Now().UTC()
	var req tokenfolio.Request
	var err error
	if req.Reference, err = parseTime(ref, now); err != nil {
		return req, err
	}
	if req.From, err = parseTime(from, req.Reference); err != nil {
		return req, err
	}
	if req.To, err = parseTime(to, req.Reference); err != nil {
		return req, err
	}
	if tokens != "" {
		req.Tokens = strings.Split(tokens, ",")
	}
	if !withLedger {
		if _, err := os.Stat(*ledgerFile); errors.Is(err, fs.ErrNotExist) {
			return req, nil
		}
	}
	if req.Transactions, req.Balances, err = decodeLedger(); err != nil {
		return req, err
	}
	return req, nil
}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	req, err := request(c.from, c.to, c.ref, c.tokens, c.samples == "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	req.Wallet = tokenfolio.Wallet{PlatformID: cfg.Wallet.PlatformID, Address: cfg.Wallet.Address}
	req.Tokens = append(req.Tokens, cfg.Tokens...)
	req.Prices = priceProvider(cfg)
	req.CostBasis = cfg.CostBasis
	if c.samples != "" {
		if req.Samples, err = decodeSamples(c.samples); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading samples %q: %v\n", c.samples, err)
			return subcommands.ExitFailure
		}
		req.SampleToken = c.token
	}

	if c.metadata != "" {
		if b, err := os.ReadFile(c.metadata); err == nil {
			var m tokenfolio.WalletMetadata
			if err := json.Unmarshal(b, &m); err != nil {
				fmt.Fprintf(os.Stderr, "Error reading metadata %q: %v\n", c.metadata, err)
				return subcommands.ExitFailure
			}
			req.Metadata = &m
		}
	}

	res, err := tokenfolio.Process(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing wallet: %v\n", err)
		return subcommands.ExitFailure
	}
	printWarnings(res.Warnings)

	if c.output != "" {
		if err := writeJSON(c.output, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
	}
	if c.metadata != "" {
		if err := writeJSON(c.metadata, res.Metadata); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.metadata, err)
			return subcommands.ExitFailure
		}
	}
	if c.save {
		targets, closeAll, err := sinks(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
			return subcommands.ExitFailure
		}
		defer closeAll()
		if len(targets) == 0 {
			fmt.Fprintln(os.Stderr, "-save requires storage.sqlite or storage.snapshots in the configuration")
			return subcommands.ExitUsageError
		}
		for _, s := range targets {
			if err := s.Upsert(ctx, res.Snapshots); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving snapshots: %v\n", err)
				return subcommands.ExitFailure
			}
		}
	}

	printMarkdown(renderer.HistoryMarkdown(req.Wallet, res.Snapshots))
	return subcommands.ExitSuccess
}

// writeJSON writes v as indented JSON into the file.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

// decodeSamples reads a balance history file.
func decodeSamples(path string) ([]tokenfolio.BalanceSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tokenfolio.DecodeBalanceSamples(f)
}
