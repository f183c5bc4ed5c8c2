package tokenfolio

import (
	"testing"
	"time"
)

func TestReplayTransactions(t *testing.T) {
	anchor := Balances{"ETH": Q(10), "X": Q(5)}

	failed := withFee(newTx(hoursAgo(10.0/60), "h4", out("X", "100", 0)), "ETH", "0.5", 1)
	failed.Success = false

	// newest first
	txs := []Transaction{
		failed,
		newTx(hoursAgo(40.0/60), "h3", in("ETH", "20", 0)),
		newTx(hoursAgo(2+5.0/60), "h2", out("X", "1", 0)),
		withFee(newTx(hoursAgo(2+10.0/60), "h1", in("X", "2", 0)), "ETH", "0.1", 0),
	}

	r, err := ReplayTransactions(ref, wallet, anchor, txs)
	if err != nil {
		t.Fatalf("ReplayTransactions() error = %v", err)
	}
	if r.Buckets.Len() != 3 {
		t.Fatalf("Buckets.Len() = %d, want 3", r.Buckets.Len())
	}

	testCases := []struct {
		on     time.Time
		hash   string
		eth, x string
	}{
		// the first transaction of the bucket wins, h2 is not recorded.
		{hoursAgo(2), "h1", "10", "5"},
		{hoursAgo(0.5), "h3", "9.9", "4"},
		{ref, "h4", "0", "4"},
	}
	for _, tc := range testCases {
		snap, ok := r.Buckets.Get(tc.on)
		if !ok {
			t.Errorf("no snapshot at %v", tc.on)
			continue
		}
		if snap.Hash != tc.hash {
			t.Errorf("snapshot %v hash = %q, want %q", tc.on, snap.Hash, tc.hash)
		}
		if got := snap.Balances["ETH"]; !got.Equal(MustQ(tc.eth)) {
			t.Errorf("snapshot %v ETH = %v, want %v", tc.on, got, tc.eth)
		}
		if got := snap.Balances["X"]; !got.Equal(MustQ(tc.x)) {
			t.Errorf("snapshot %v X = %v, want %v", tc.on, got, tc.x)
		}
		if snap.WalletAddress != wallet.Address || snap.PlatformID != wallet.PlatformID {
			t.Errorf("snapshot %v wallet = %v/%v", tc.on, snap.PlatformID, snap.WalletAddress)
		}
	}

	if got := r.Balances["ETH"]; !got.IsZero() {
		t.Errorf("final ETH = %v, want 0", got)
	}
	if got := r.Balances["X"]; !got.Equal(Q(4)) {
		t.Errorf("final X = %v, want 4", got)
	}
	if got := anchor["ETH"]; !got.Equal(Q(10)) {
		t.Errorf("anchor was modified: ETH = %v", got)
	}
}

func TestReplayTransactions_FeeCurrencyRegistered(t *testing.T) {
	txs := []Transaction{withFee(newTx(hoursAgo(1), "h"), "BNB", "0.01", 3)}
	r, err := ReplayTransactions(ref, wallet, nil, txs)
	if err != nil {
		t.Fatalf("ReplayTransactions() error = %v", err)
	}
	got, ok := r.Balances["BNB"]
	if !ok {
		t.Fatal("fee currency was not registered")
	}
	if !got.IsZero() {
		t.Errorf("BNB = %v, want 0", got)
	}
	snap, _ := r.Buckets.Get(hoursAgo(1))
	if len(snap.Balances) != 0 {
		t.Errorf("bucket balances = %v, want the balances before the transaction", snap.Balances)
	}
}

func TestReplayTransactions_Empty(t *testing.T) {
	r, err := ReplayTransactions(ref, wallet, Balances{"ETH": Q(1)}, nil)
	if err != nil {
		t.Fatalf("ReplayTransactions() error = %v", err)
	}
	if r.Buckets.Len() != 0 {
		t.Errorf("Buckets.Len() = %d, want 0", r.Buckets.Len())
	}
	if !r.Balances["ETH"].Equal(Q(1)) {
		t.Errorf("Balances = %v, want the anchor", r.Balances)
	}
}

func TestAggregateBalanceHistory(t *testing.T) {
	samples := []BalanceSample{
		{Timestamp: hoursAgo(0.9), Balance: "1.5"},
		{Timestamp: hoursAgo(0.6), Balance: "2"}, // same bucket as the first one
		{Timestamp: hoursAgo(0.1), Balance: "3"},
	}
	s, err := AggregateBalanceHistory(ref, wallet, "BTC", samples)
	if err != nil {
		t.Fatalf("AggregateBalanceHistory() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	snap, _ := s.Get(hoursAgo(0.5))
	if got := snap.Balances["BTC"]; !got.Equal(MustQ("1.5")) {
		t.Errorf("BTC at -30m = %v, want 1.5", got)
	}

	if _, err := AggregateBalanceHistory(ref, wallet, "BTC", []BalanceSample{{Timestamp: ref, Balance: "x"}}); err == nil {
		t.Error("AggregateBalanceHistory() with an invalid balance succeeded")
	}
}
