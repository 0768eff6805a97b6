package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/storage"
)

// ApplyBatch applies every operation inside one SQL transaction: either all
// land or none do. Set operations are upserts keyed by record ID.
//
// Operations run in the order given. Callers inserting related records must
// order them parent-first (people before transactions before history) so
// foreign keys resolve.
func (s *SQLiteStore) ApplyBatch(ctx context.Context, ops []storage.BatchOp) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, op := range ops {
		if err := applyOp(ctx, tx, op); err != nil {
			return fmt.Errorf("batch op %d (%s %s/%s): %w", i, op.Action, op.Collection, op.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func applyOp(ctx context.Context, tx *sql.Tx, op storage.BatchOp) error {
	switch op.Action {
	case storage.BatchDelete:
		return deleteOp(ctx, tx, op)
	case storage.BatchSet:
		return setOp(ctx, tx, op)
	}
	return fmt.Errorf("unknown batch action %q", op.Action)
}

func deleteOp(ctx context.Context, tx *sql.Tx, op storage.BatchOp) error {
	var table string
	switch op.Collection {
	case storage.People:
		table = "people"
	case storage.Transactions:
		table = "transactions"
	case storage.History:
		table = "transaction_history"
	case storage.Cards:
		table = "cards"
	default:
		return fmt.Errorf("unknown collection %q", op.Collection)
	}
	_, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), op.ID)
	return err
}

func setOp(ctx context.Context, tx *sql.Tx, op storage.BatchOp) error {
	switch op.Collection {
	case storage.People:
		var p models.Person
		if err := json.Unmarshal(op.Record, &p); err != nil {
			return fmt.Errorf("failed to decode person: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO people (id, name, phone, notes, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, phone = excluded.phone,
			   notes = excluded.notes, created_at = excluded.created_at`,
			p.ID, p.Name, p.Phone, p.Notes, p.CreatedAt,
		)
		return err

	case storage.Transactions:
		var t models.Transaction
		if err := json.Unmarshal(op.Record, &t); err != nil {
			return fmt.Errorf("failed to decode transaction: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, person_id, amount, direction, date, note, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   person_id = excluded.person_id, amount = excluded.amount,
			   direction = excluded.direction, date = excluded.date,
			   note = excluded.note, created_at = excluded.created_at`,
			t.ID, t.PersonID, t.Amount.String(), string(t.Direction), t.Date, t.Note, t.CreatedAt,
		)
		return err

	case storage.History:
		var h models.TransactionHistory
		if err := json.Unmarshal(op.Record, &h); err != nil {
			return fmt.Errorf("failed to decode history entry: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_history (id, transaction_id, previous_amount, previous_direction, previous_note, changed_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   transaction_id = excluded.transaction_id, previous_amount = excluded.previous_amount,
			   previous_direction = excluded.previous_direction, previous_note = excluded.previous_note,
			   changed_at = excluded.changed_at`,
			h.ID, h.TransactionID, h.PreviousAmount.String(), string(h.PreviousDirection), h.PreviousNote, h.ChangedAt,
		)
		return err

	case storage.Cards:
		var c models.CreditCard
		if err := json.Unmarshal(op.Record, &c); err != nil {
			return fmt.Errorf("failed to decode card: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, card_name, card_number, card_type, name_on_card, expiry, cvv, color, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   card_name = excluded.card_name, card_number = excluded.card_number,
			   card_type = excluded.card_type, name_on_card = excluded.name_on_card,
			   expiry = excluded.expiry, cvv = excluded.cvv,
			   color = excluded.color, created_at = excluded.created_at`,
			c.ID, c.CardName, c.CardNumber, string(c.CardType), c.NameOnCard, c.Expiry, c.CVV, c.Color, c.CreatedAt,
		)
		return err
	}
	return fmt.Errorf("unknown collection %q", op.Collection)
}
