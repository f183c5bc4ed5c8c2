package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are tested with a shell script")
	}
	tempDir := t.TempDir()
	out := filepath.Join(tempDir, "env.txt")

	script := "#!/bin/sh\n" +
		"echo \"" + EnvLedgerFile + "=$" + EnvLedgerFile + "\" > " + out + "\n" +
		"echo \"" + EnvWallet + "=$" + EnvWallet + "\" >> " + out + "\n" +
		"echo \"args=$*\" >> " + out + "\n" +
		"exit 3\n"
	if err := os.WriteFile(filepath.Join(tempDir, "folio-hello"), []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write folio-hello: %v", err)
	}
	t.Setenv("PATH", tempDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	*ledgerFile = filepath.Join(tempDir, "random_ledger.jsonl")
	*walletFlag = "0xabc"
	t.Cleanup(func() { *ledgerFile, *walletFlag = "transactions.jsonl", "" })

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found {
		t.Fatal("RunExtension() did not find folio-hello")
	}
	if code != 3 {
		t.Errorf("RunExtension() exit code = %d, want 3", code)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("extension did not run: %v", err)
	}
	for _, want := range []string{
		EnvLedgerFile + "=" + *ledgerFile,
		EnvWallet + "=0xabc",
		"args=a b",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("extension output %q does not contain %q", content, want)
		}
	}
}

func TestRunExtension_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, _ := RunExtension("does-not-exist", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}

func TestExtensionEnv(t *testing.T) {
	*ledgerFile, *walletFlag, *balancesFile, *configFile = "l.jsonl", "0xabc", "", ""
	t.Cleanup(func() { *ledgerFile, *walletFlag = "transactions.jsonl", "" })

	got := strings.Join(extensionEnv(), " ")
	want := EnvLedgerFile + "=l.jsonl " + EnvWallet + "=0xabc"
	if got != want {
		t.Errorf("extensionEnv() = %q, want %q", got, want)
	}
}
