package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// Environment variables an extension receives from the global flags.
const (
	EnvConfigFile   = "FOLIO_CONFIG"
	EnvLedgerFile   = "FOLIO_LEDGER_FILE"
	EnvBalancesFile = "FOLIO_BALANCES_FILE"
	EnvWallet       = "FOLIO_WALLET"
	EnvVerbose      = "FOLIO_VERBOSE"
)

// extensionEnv returns the global flags in use as environment assignments.
// Unset flags are not forwarded, so the extension applies its own defaults.
func extensionEnv() []string {
	var env []string
	set := func(name, value string) {
		if value != "" {
			env = append(env, name+"="+value)
		}
	}
	set(EnvConfigFile, *configFile)
	set(EnvLedgerFile, *ledgerFile)
	set(EnvBalancesFile, *balancesFile)
	set(EnvWallet, *walletFlag)
	if *Verbose {
		set(EnvVerbose, "true")
	}
	return env
}

// RunExtension runs the folio-<subcommand> program found in PATH with args.
// found is false when there is no such program; otherwise code is its exit
// code.
func RunExtension(subcommand string, args []string) (found bool, code int) {
	name := "folio-" + subcommand
	path, err := exec.LookPath(name)
	if err != nil {
		log.Printf("no extension %q in PATH: %v", name, err)
		return false, 0
	}

	ext := exec.Command(path, args...)
	ext.Stdin, ext.Stdout, ext.Stderr = os.Stdin, os.Stdout, os.Stderr
	ext.Env = append(os.Environ(), extensionEnv()...)

	err = ext.Run()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return true, 0
	case errors.As(err, &exit):
		return true, exit.ExitCode()
	default:
		fmt.Fprintf(os.Stderr, "Error running extension %q: %v\n", name, err)
		return true, 1
	}
}
