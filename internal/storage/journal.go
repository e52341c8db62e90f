// Package storage provides the append-only SQLite audit journal.
// The journal is write-mostly: the engine's in-memory state is the
// source of truth, the journal exists for post-trade analysis.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"hyperexec/internal/domain"
	"hyperexec/internal/event"
)

// Journal persists engine events and final execution reports.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal database with WAL enabled.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY,
			type INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			order_id TEXT NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			order_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			end_ts INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}

	return &Journal{db: db}, nil
}

// SaveEvent appends one engine event.
func (j *Journal) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		"INSERT INTO events (seq, type, ts, payload, order_id) VALUES (?, ?, ?, ?, ?)",
		ev.GetSeq(), ev.GetType(), ev.GetTs(), payload, ev.GetOrderID(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// SaveReport upserts the final report of a terminal order.
func (j *Journal) SaveReport(ctx context.Context, report domain.ExecutionReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO reports (order_id, symbol, side, end_ts, payload) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(order_id) DO UPDATE SET end_ts=excluded.end_ts, payload=excluded.payload`,
		report.OrderID, report.Symbol, string(report.Side), report.EndUnixM, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

// LastSeq returns the highest stored event sequence, 0 when empty.
func (j *Journal) LastSeq(ctx context.Context) (uint64, error) {
	var last sql.NullInt64
	err := j.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM events").Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last seq: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return uint64(last.Int64), nil
}

// CountEvents returns the number of journaled events for one order.
func (j *Journal) CountEvents(ctx context.Context, orderID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE order_id = ?", orderID).Scan(&n)
	return n, err
}

// LoadReport fetches the journaled report of one order.
func (j *Journal) LoadReport(ctx context.Context, orderID string) (domain.ExecutionReport, error) {
	var payload []byte
	err := j.db.QueryRowContext(ctx,
		"SELECT payload FROM reports WHERE order_id = ?", orderID).Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.ExecutionReport{}, fmt.Errorf("report %s: %w", orderID, domain.ErrUnknownOrder)
	}
	if err != nil {
		return domain.ExecutionReport{}, fmt.Errorf("failed to query report: %w", err)
	}

	var report domain.ExecutionReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.ExecutionReport{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}
