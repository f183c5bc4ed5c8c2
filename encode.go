package tokenfolio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
)

// DecodeTransactions reads a JSONL ledger, one transaction per line, in
// feed order (newest first). Empty lines are ignored.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(b, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// EncodeTransactions writes a ledger as JSONL.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		if err := enc.Encode(tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBalances reads a JSON object mapping a token to its balance.
func DecodeBalances(r io.Reader) (Balances, error) {
	var raw map[string]json.Number
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	strs := make(map[string]string, len(raw))
	for token, n := range raw {
		strs[token] = n.String()
	}
	return ParseBalances(strs)
}

// DecodeBalanceSamples reads a JSONL balance history.
func DecodeBalanceSamples(r io.Reader) ([]BalanceSample, error) {
	var samples []BalanceSample
	dec := json.NewDecoder(r)
	for {
		var s BalanceSample
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", len(samples), err)
		}
		samples = append(samples, s)
	}
}

// DecodeLots reads a persisted FIFO state.
func DecodeLots(r io.Reader) (map[string][]Lot, error) {
	var l map[string][]Lot
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode lots: %w", err)
	}
	return l, nil
}

// EncodeSnapshots writes snapshots as JSONL.
func EncodeSnapshots(w io.Writer, snapshots []PortfolioSnapshot) error {
	enc := json.NewEncoder(w)
	for _, s := range snapshots {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSnapshots reads snapshots written by EncodeSnapshots.
func DecodeSnapshots(r io.Reader) ([]PortfolioSnapshot, error) {
	var out []PortfolioSnapshot
	dec := json.NewDecoder(r)
	for {
		var s PortfolioSnapshot
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", len(out), err)
		}
		out = append(out, s)
	}
}

// SnapshotSink persists snapshots. Upserting the same snapshots twice
// leaves the sink unchanged: snapshots are keyed by SnapshotKey.
type SnapshotSink interface {
	Upsert(ctx context.Context, snapshots []PortfolioSnapshot) error
}

// FileSink is a SnapshotSink on a JSONL file.
type FileSink struct {
	Path string
}

// Upsert merges the snapshots into the file. The file is kept sorted by
// wallet, platform and date.
func (f FileSink) Upsert(_ context.Context, snapshots []PortfolioSnapshot) error {
	var existing []PortfolioSnapshot
	r, err := os.Open(f.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return err
	default:
		existing, err = DecodeSnapshots(r)
		r.Close()
		if err != nil {
			return fmt.Errorf("read %q: %w", f.Path, err)
		}
	}

	index := make(map[SnapshotKey]int, len(existing))
	for i, s := range existing {
		index[s.Key()] = i
	}
	for _, s := range snapshots {
		if i, ok := index[s.Key()]; ok {
			existing[i] = s
			continue
		}
		index[s.Key()] = len(existing)
		existing = append(existing, s)
	}
	slices.SortStableFunc(existing, compareSnapshots)

	var buf bytes.Buffer
	if err := EncodeSnapshots(&buf, existing); err != nil {
		return err
	}
	return os.WriteFile(f.Path, buf.Bytes(), 0644)
}

func compareSnapshots(a, b PortfolioSnapshot) int {
	switch {
	case a.WalletAddress < b.WalletAddress:
		return -1
	case a.WalletAddress > b.WalletAddress:
		return 1
	case a.PlatformID != b.PlatformID:
		return a.PlatformID - b.PlatformID
	}
	return a.DateTime.Compare(b.DateTime)
}
