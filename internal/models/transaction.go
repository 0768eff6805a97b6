package models

import "github.com/shopspring/decimal"

// Direction marks whether a transaction increases or decreases the net
// balance with a person.
type Direction string

const (
	// YouLent means the user gave money; the person owes the user.
	YouLent Direction = "YOU_LENT"

	// YouBorrowed means the user received money; the user owes the person.
	YouBorrowed Direction = "YOU_BORROWED"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == YouLent || d == YouBorrowed
}

// Sign returns +1 for YouLent and -1 for YouBorrowed.
// Unknown directions contribute nothing to a balance.
func (d Direction) Sign() int {
	switch d {
	case YouLent:
		return 1
	case YouBorrowed:
		return -1
	}
	return 0
}

// Transaction represents a single lending or borrowing event.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// PersonID references the Person this transaction belongs to.
	PersonID string `json:"personId"`

	// Amount is the positive magnitude of the transaction. The direction
	// carries the sign; Amount itself is always > 0.
	Amount decimal.Decimal `json:"amount"`

	// Direction is YOU_LENT or YOU_BORROWED.
	Direction Direction `json:"direction"`

	// Date is the Unix millisecond timestamp of the event itself.
	Date int64 `json:"date"`

	// Note is an optional description.
	Note string `json:"note"`

	// CreatedAt is the Unix millisecond timestamp when the record was created.
	CreatedAt int64 `json:"createdAt"`
}

// TransactionHistory is one archived pre-edit state of a transaction.
// Records are append-only: created when a transaction is edited, never
// mutated, and removed only when the parent transaction is deleted.
type TransactionHistory struct {
	// ID is the unique identifier for the history entry (UUID format).
	ID string `json:"id"`

	// TransactionID references the transaction that was edited.
	TransactionID string `json:"transactionId"`

	// PreviousAmount is the amount before the edit.
	PreviousAmount decimal.Decimal `json:"previousAmount"`

	// PreviousDirection is the direction before the edit.
	PreviousDirection Direction `json:"previousDirection"`

	// PreviousNote is the note before the edit.
	PreviousNote string `json:"previousNote"`

	// ChangedAt is the Unix millisecond timestamp of the edit.
	ChangedAt int64 `json:"changedAt"`
}
