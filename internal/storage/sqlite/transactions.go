package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/debtfree/internal/models"
)

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var amount string
		if err := rows.Scan(&tx.ID, &tx.PersonID, &amount, &tx.Direction, &tx.Date, &tx.Note, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
		}
		tx.Amount = dec
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

// ListTransactions returns every transaction, newest first by event date.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, person_id, amount, direction, date, note, created_at FROM transactions ORDER BY date DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// SaveTransaction upserts a transaction by ID.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, tx models.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, person_id, amount, direction, date, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   person_id = excluded.person_id,
		   amount = excluded.amount,
		   direction = excluded.direction,
		   date = excluded.date,
		   note = excluded.note,
		   created_at = excluded.created_at`,
		tx.ID, tx.PersonID, tx.Amount.String(), string(tx.Direction), tx.Date, tx.Note, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction. The schema cascades the delete to
// its history entries.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func scanHistory(rows *sql.Rows) ([]models.TransactionHistory, error) {
	entries := []models.TransactionHistory{}
	for rows.Next() {
		var h models.TransactionHistory
		var amount string
		if err := rows.Scan(&h.ID, &h.TransactionID, &amount, &h.PreviousDirection, &h.PreviousNote, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse previous amount %q: %w", amount, err)
		}
		h.PreviousAmount = dec
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// ListHistory returns every history entry, newest first.
func (s *SQLiteStore) ListHistory(ctx context.Context) ([]models.TransactionHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, transaction_id, previous_amount, previous_direction, previous_note, changed_at FROM transaction_history ORDER BY changed_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

// HistoryForTransaction returns the edit history of one transaction, newest
// first.
func (s *SQLiteStore) HistoryForTransaction(ctx context.Context, txID string) ([]models.TransactionHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, transaction_id, previous_amount, previous_direction, previous_note, changed_at FROM transaction_history WHERE transaction_id = ? ORDER BY changed_at DESC",
		txID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for transaction: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

// AppendHistory records one pre-edit snapshot. History is append-only;
// entries are never updated, so a plain insert (still an upsert by ID for
// sync replays) is enough.
func (s *SQLiteStore) AppendHistory(ctx context.Context, h models.TransactionHistory) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_history (id, transaction_id, previous_amount, previous_direction, previous_note, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   transaction_id = excluded.transaction_id,
		   previous_amount = excluded.previous_amount,
		   previous_direction = excluded.previous_direction,
		   previous_note = excluded.previous_note,
		   changed_at = excluded.changed_at`,
		h.ID, h.TransactionID, h.PreviousAmount.String(), string(h.PreviousDirection), h.PreviousNote, h.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}
