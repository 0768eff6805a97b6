// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"encoding/json"

	"github.com/mmynk/debtfree/internal/models"
)

// Collection names the four logical record collections. The same names appear
// in the sync server's URL layout and in batch operations.
type Collection string

const (
	People       Collection = "people"
	Transactions Collection = "transactions"
	History      Collection = "transactionHistory"
	Cards        Collection = "cards"
)

// Valid reports whether c is one of the four known collections.
func (c Collection) Valid() bool {
	switch c {
	case People, Transactions, History, Cards:
		return true
	}
	return false
}

// Store is the interface every persistence backend implements. The device
// store (sqlite) and the sync-server client (remote) are interchangeable
// behind it; the ledger picks one at construction time based on auth state.
//
// Save operations are upserts: replace the record with the same ID, or insert.
// List operations return newest-first (people and cards by CreatedAt,
// transactions by Date, history by ChangedAt), and an empty database yields
// empty slices, not errors.
//
// Deletes cascade: removing a person removes their transactions and those
// transactions' history; removing a transaction removes its history.
type Store interface {
	ListPeople(ctx context.Context) ([]models.Person, error)
	SavePerson(ctx context.Context, p models.Person) error
	DeletePerson(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	SaveTransaction(ctx context.Context, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	ListHistory(ctx context.Context) ([]models.TransactionHistory, error)
	HistoryForTransaction(ctx context.Context, txID string) ([]models.TransactionHistory, error)
	AppendHistory(ctx context.Context, h models.TransactionHistory) error

	ListCards(ctx context.Context) ([]models.CreditCard, error)
	SaveCard(ctx context.Context, c models.CreditCard) error
	DeleteCard(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// BatchAction is the kind of a single batch operation.
type BatchAction string

const (
	BatchSet    BatchAction = "set"
	BatchDelete BatchAction = "delete"
)

// BatchOp is one upsert or delete inside an atomic batch. Record holds the
// JSON-encoded entity for set operations and is empty for deletes.
type BatchOp struct {
	Action     BatchAction     `json:"action"`
	Collection Collection      `json:"collection"`
	ID         string          `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// BatchWriter is implemented by stores that can apply a batch of writes
// atomically: either every operation lands or none do. The cloud-sync bridge
// uses this for bulk upload.
type BatchWriter interface {
	ApplyBatch(ctx context.Context, ops []BatchOp) error
}

// SetOp builds a BatchSet operation for the given entity.
func SetOp(col Collection, id string, record any) (BatchOp, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return BatchOp{}, err
	}
	return BatchOp{Action: BatchSet, Collection: col, ID: id, Record: raw}, nil
}
