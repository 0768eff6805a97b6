package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/debtfree/internal/models"
)

// ListPeople returns all people, newest first.
func (s *SQLiteStore) ListPeople(ctx context.Context) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, phone, notes, created_at FROM people ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}

// SavePerson upserts a person by ID.
func (s *SQLiteStore) SavePerson(ctx context.Context, p models.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (id, name, phone, notes, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   phone = excluded.phone,
		   notes = excluded.notes,
		   created_at = excluded.created_at`,
		p.ID, p.Name, p.Phone, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

// DeletePerson removes a person. The schema cascades the delete to the
// person's transactions and their history.
func (s *SQLiteStore) DeletePerson(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}
