package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tokenfolio"
	"github.com/etnz/tokenfolio/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	ref      string
	lotsFile string
	update   bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized and unrealized FIFO gains" }
func (*gainsCmd) Usage() string {
	return `folio gains [-ref <date>] [-lots <file>] [-u]

  Matches the wallet disposals against its acquisitions, first in first out,
  and displays the realized gains per token and the unrealized gains of the
  lots still held, at the latest price.

  With -lots, the matching resumes from the lots in the file; -u writes the
  resulting lots back.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ref, "ref", "now", "Date the lots are marked to market.")
	f.StringVar(&c.lotsFile, "lots", "", "Persisted lots to resume from (JSON)")
	f.BoolVar(&c.update, "u", false, "Write the resulting lots back into the -lots file")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.update && c.lotsFile == "" {
		fmt.Fprintln(os.Stderr, "-u requires -lots")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	// only the newest bucket is needed to price the lots.
	req, err := request("now", "now", c.ref, "", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	req.Wallet = tokenfolio.Wallet{PlatformID: cfg.Wallet.PlatformID, Address: cfg.Wallet.Address}
	req.Tokens = cfg.Tokens
	req.Prices = priceProvider(cfg)
	req.CostBasis = true
	if req.Lots, err = decodeLots(c.lotsFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading lots %q: %v\n", c.lotsFile, err)
		return subcommands.ExitFailure
	}

	res, err := tokenfolio.Process(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating gains: %v\n", err)
		return subcommands.ExitFailure
	}
	printWarnings(res.Warnings)

	if c.update {
		if err := writeJSON(c.lotsFile, res.Profits.Lots); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing lots %q: %v\n", c.lotsFile, err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.GainsMarkdown(res.Profits, res.Prices))
	return subcommands.ExitSuccess
}
