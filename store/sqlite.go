// Package store persists portfolio snapshots in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/etnz/tokenfolio"
	_ "modernc.org/sqlite"
)

// SQLite is a tokenfolio.SnapshotSink on a SQLite database.
//
// Snapshots are keyed by (date_time, platform_id, wallet_address): upserting
// a snapshot twice updates it in place.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Printf("sqlite store opened: %s", path)
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			date_time      INTEGER NOT NULL,
			platform_id    INTEGER NOT NULL,
			wallet_address TEXT NOT NULL,
			balances       TEXT NOT NULL,
			balances_usd   TEXT NOT NULL,
			total_usd      TEXT NOT NULL,
			block          INTEGER,
			hash           TEXT,
			UNIQUE (date_time, platform_id, wallet_address)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_wallet ON portfolio_snapshots(wallet_address, platform_id, date_time)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const upsert = `INSERT INTO portfolio_snapshots
	(date_time, platform_id, wallet_address, balances, balances_usd, total_usd, block, hash)
	VALUES (?,?,?,?,?,?,?,?)
	ON CONFLICT (date_time, platform_id, wallet_address) DO UPDATE SET
		balances = excluded.balances,
		balances_usd = excluded.balances_usd,
		total_usd = excluded.total_usd,
		block = excluded.block,
		hash = excluded.hash`

// Upsert implements tokenfolio.SnapshotSink. The snapshots are written in a
// single transaction.
func (s *SQLite) Upsert(ctx context.Context, snapshots []tokenfolio.PortfolioSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, snap := range snapshots {
		balances, err := json.Marshal(snap.Balances)
		if err != nil {
			return err
		}
		usd, err := json.Marshal(snap.BalancesUSD)
		if err != nil {
			return err
		}
		key := snap.Key()
		if _, err := stmt.ExecContext(ctx,
			key.DateTime.Unix(), key.PlatformID, key.WalletAddress,
			string(balances), string(usd), snap.TotalUSD().Decimal().String(),
			snap.Block, snap.Hash,
		); err != nil {
			return fmt.Errorf("upsert %s at %s: %w", key.WalletAddress, key.DateTime.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}

// List returns the snapshots of a wallet, in ascending date order.
func (s *SQLite) List(ctx context.Context, w tokenfolio.Wallet) ([]tokenfolio.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT date_time, balances, balances_usd, block, hash
		FROM portfolio_snapshots
		WHERE platform_id = ? AND wallet_address = ?
		ORDER BY date_time`, w.PlatformID, w.Address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tokenfolio.PortfolioSnapshot
	for rows.Next() {
		var (
			unix          int64
			balances, usd string
			block         sql.NullInt64
			hash          sql.NullString
		)
		if err := rows.Scan(&unix, &balances, &usd, &block, &hash); err != nil {
			return nil, err
		}
		snap := tokenfolio.PortfolioSnapshot{
			DateTime:      time.Unix(unix, 0).UTC(),
			PlatformID:    w.PlatformID,
			WalletAddress: w.Address,
			Block:         block.Int64,
			Hash:          hash.String,
		}
		if err := json.Unmarshal([]byte(balances), &snap.Balances); err != nil {
			return nil, fmt.Errorf("balances: %w", err)
		}
		if err := json.Unmarshal([]byte(usd), &snap.BalancesUSD); err != nil {
			return nil, fmt.Errorf("balances_usd: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Count returns the number of stored snapshots.
func (s *SQLite) Count(ctx context.Context) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM portfolio_snapshots`).Scan(&n)
	return n, err
}

func (s *SQLite) Close() error {
	log.Println("closing sqlite store")
	return s.db.Close()
}
