// Command folio values the history of a crypto wallet.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/etnz/tokenfolio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion().Complete("folio")

	commander := subcommands.NewCommander(flag.CommandLine, "folio")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a builtin subcommand.
func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		if sc.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
// Install it with COMP_INSTALL=1 folio.
func completion() *complete.Command {
	dates := predict.Set{"now", "1d", "7d", "30d", "90d"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":        predict.Files("*.yaml"),
			"ledger-file":   predict.Files("*.jsonl"),
			"balances-file": predict.Files("*.json"),
			"wallet":        predict.Nothing,
			"v":             predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"process": {Flags: map[string]complete.Predictor{
				"s":       dates,
				"d":       dates,
				"ref":     dates,
				"tokens":  predict.Nothing,
				"o":       predict.Files("*.json"),
				"m":       predict.Files("*.json"),
				"save":    predict.Nothing,
				"samples": predict.Files("*.jsonl"),
				"token":   predict.Set{"BTC"},
			}},
			"gains": {Flags: map[string]complete.Predictor{
				"ref":  dates,
				"lots": predict.Files("*.json"),
				"u":    predict.Nothing,
			}},
			"buckets": {Flags: map[string]complete.Predictor{
				"s":     dates,
				"d":     dates,
				"ref":   dates,
				"dates": predict.Nothing,
			}},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
