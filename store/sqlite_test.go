package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/tokenfolio"
	"github.com/shopspring/decimal"
)

var (
	ref    = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	wallet = tokenfolio.Wallet{PlatformID: 1027, Address: "0xabc"}
)

// snapshot is a helper for test to create a snapshot holding some ETH.
func snapshot(on time.Time, eth string, price float64) tokenfolio.PortfolioSnapshot {
	q := tokenfolio.MustQ(eth)
	return tokenfolio.PortfolioSnapshot{
		DateTime:      on,
		PlatformID:    wallet.PlatformID,
		WalletAddress: wallet.Address,
		Balances:      tokenfolio.Balances{"ETH": q},
		BalancesUSD:   map[string]tokenfolio.Money{"ETH": tokenfolio.USD(price).Mul(q)},
	}
}

func open(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "folio.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_UpsertIdempotent(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	snaps := []tokenfolio.PortfolioSnapshot{
		snapshot(ref.Add(-time.Hour), "1.5", 3000),
		snapshot(ref, "2", 3000),
	}
	for range 2 {
		if err := s.Upsert(ctx, snaps); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	if n, err := s.Count(ctx); err != nil || n != 2 {
		t.Errorf("Count() = %d, %v, want 2", n, err)
	}

	// a new value for the same key replaces the row.
	updated := snapshot(ref, "3", 3000)
	updated.Hash = "0x1"
	if err := s.Upsert(ctx, []tokenfolio.PortfolioSnapshot{updated}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := s.List(ctx, wallet)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(got))
	}
	if !got[0].DateTime.Equal(ref.Add(-time.Hour)) {
		t.Errorf("List()[0].DateTime = %v, want %v", got[0].DateTime, ref.Add(-time.Hour))
	}
	last := got[1]
	if !last.Balances["ETH"].Equal(tokenfolio.Q(3)) || last.Hash != "0x1" {
		t.Errorf("List()[1] = %+v, want the updated snapshot", last)
	}
	if !last.BalancesUSD["ETH"].Equal(tokenfolio.USD(9000)) {
		t.Errorf("List()[1].BalancesUSD[ETH] = %v, want 9000", last.BalancesUSD["ETH"])
	}
}

func TestSQLite_KeepsPrecision(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	snap := snapshot(ref, "0.123456789012345678", 1)
	if err := s.Upsert(ctx, []tokenfolio.PortfolioSnapshot{snap}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	got, err := s.List(ctx, wallet)
	if err != nil || len(got) != 1 {
		t.Fatalf("List() = %v, %v", got, err)
	}
	want := decimal.RequireFromString("0.123456789012345678")
	if !got[0].Balances["ETH"].Decimal().Equal(want) {
		t.Errorf("ETH = %v, want %v", got[0].Balances["ETH"], want)
	}
}

func TestSQLite_OtherWallet(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.Upsert(ctx, []tokenfolio.PortfolioSnapshot{snapshot(ref, "1", 1)}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	got, err := s.List(ctx, tokenfolio.Wallet{PlatformID: 1, Address: "0xabc"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List() = %v, want none", got)
	}
}

func TestSQLite_ImplementsSink(t *testing.T) {
	var _ tokenfolio.SnapshotSink = (*SQLite)(nil)
}
