package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/debtfree/internal/models"
)

// ListCards returns all cards, newest first.
func (s *SQLiteStore) ListCards(ctx context.Context) ([]models.CreditCard, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, card_name, card_number, card_type, name_on_card, expiry, cvv, color, created_at FROM cards ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []models.CreditCard{}
	for rows.Next() {
		var c models.CreditCard
		if err := rows.Scan(&c.ID, &c.CardName, &c.CardNumber, &c.CardType, &c.NameOnCard, &c.Expiry, &c.CVV, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// SaveCard upserts a card by ID.
func (s *SQLiteStore) SaveCard(ctx context.Context, c models.CreditCard) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, card_name, card_number, card_type, name_on_card, expiry, cvv, color, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   card_name = excluded.card_name,
		   card_number = excluded.card_number,
		   card_type = excluded.card_type,
		   name_on_card = excluded.name_on_card,
		   expiry = excluded.expiry,
		   cvv = excluded.cvv,
		   color = excluded.color,
		   created_at = excluded.created_at`,
		c.ID, c.CardName, c.CardNumber, string(c.CardType), c.NameOnCard, c.Expiry, c.CVV, c.Color, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// DeleteCard removes a card by ID.
func (s *SQLiteStore) DeleteCard(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}
