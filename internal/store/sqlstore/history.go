package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Simplici0/logicalc/internal/history"
)

const historySelect = `
	SELECT id, created_at, invoice_value, total_weight, best_carrier_name, best_freight_value, branch_name
	FROM simulation_history
	ORDER BY seq DESC
	LIMIT ?`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) loadHistory(ctx context.Context, q queryer) ([]history.Entry, error) {
	rows, err := q.QueryContext(ctx, s.q(historySelect), history.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]history.Entry, 0, history.MaxEntries)
	for rows.Next() {
		var (
			e       history.Entry
			created string
		)
		if err := rows.Scan(&e.ID, &created, &e.InvoiceValue, &e.TotalWeight, &e.BestCarrierName, &e.BestFreightValue, &e.BranchName); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Date, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse history date %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Load returns the history log, newest first.
func (s *Store) Load(ctx context.Context) ([]history.Entry, error) {
	return s.loadHistory(ctx, s.db)
}

// Append inserts e and evicts everything beyond history.MaxEntries in one transaction.
func (s *Store) Append(ctx context.Context, e history.Entry) ([]history.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM simulation_history`).Scan(&last); err != nil {
		return nil, fmt.Errorf("read history sequence: %w", err)
	}
	next := last + 1

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO simulation_history (
			seq, id, created_at, invoice_value, total_weight, best_carrier_name, best_freight_value, branch_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), next, e.ID, e.Date.UTC().Format(time.RFC3339Nano), e.InvoiceValue, e.TotalWeight,
		e.BestCarrierName, e.BestFreightValue, e.BranchName); err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM simulation_history WHERE seq <= ?`), next-history.MaxEntries); err != nil {
		return nil, fmt.Errorf("trim history: %w", err)
	}

	entries, err := s.loadHistory(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit history transaction: %w", err)
	}
	return entries, nil
}
