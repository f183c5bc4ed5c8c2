package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/tokenfolio"
	"github.com/etnz/tokenfolio/bucket"
	"github.com/etnz/tokenfolio/renderer"
	"github.com/google/subcommands"
)

type bucketsCmd struct {
	from, to, ref string
	dates         bool
}

func (*bucketsCmd) Name() string     { return "buckets" }
func (*bucketsCmd) Synopsis() string { return "show the bucket grid of a date range" }
func (*bucketsCmd) Usage() string {
	return `folio buckets [-s <date>] [-d <date>] [-ref <date>] [-dates]

  Shows how a date range is split into buckets: 30 minutes over the last
  day, 2 hours over the last week, 6 hours over the last month, and a day
  before that.
`
}

func (c *bucketsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "30d", "Start of the range.")
	f.StringVar(&c.to, "d", "now", "End of the range.")
	f.StringVar(&c.ref, "ref", "now", "Reference date the bucket recency is measured from.")
	f.BoolVar(&c.dates, "dates", false, "List every bucket date")
}

func (c *bucketsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref, err := parseTime(c.ref, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	from, err := parseTime(c.from, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := parseTime(c.to, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := tokenfolio.CheckRange(from, to); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	from, to = bucket.Range(ref, from, to)
	printMarkdown(renderer.BucketsMarkdown(bucket.Enumerate(from, to, ref), ref, c.dates))
	return subcommands.ExitSuccess
}
