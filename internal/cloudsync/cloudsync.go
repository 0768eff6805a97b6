// Package cloudsync implements the one-shot bulk bridge between the device
// store and a remote document store. It is independent of the ledger's
// per-record routing: both directions copy whole collections, overwriting by
// id with no merge or timestamp comparison. Last writer wins per record.
package cloudsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/debtfree/internal/storage"
)

// RemoteStore is the remote side of the bridge: full reads plus atomic
// batched writes.
type RemoteStore interface {
	storage.Store
	storage.BatchWriter
}

// Report is the normalized outcome of a bridge run. The bridge is the one
// component that folds errors into a result shape instead of returning them;
// callers display Error when Success is false.
type Report struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Records is how many records were copied on success.
	Records int `json:"records"`
}

func failure(err error) Report {
	return Report{Success: false, Error: err.Error()}
}

// Upload copies the entire local dataset to the remote store in one atomic
// batch: all four collections, including every history entry. Ops are
// ordered parent-first so the remote's referential checks hold.
func Upload(ctx context.Context, local storage.Store, remote RemoteStore) Report {
	people, err := local.ListPeople(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read local people: %w", err))
	}
	txs, err := local.ListTransactions(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read local transactions: %w", err))
	}
	history, err := local.ListHistory(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read local history: %w", err))
	}
	cards, err := local.ListCards(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read local cards: %w", err))
	}

	var ops []storage.BatchOp
	for _, p := range people {
		op, err := storage.SetOp(storage.People, p.ID, p)
		if err != nil {
			return failure(err)
		}
		ops = append(ops, op)
	}
	for _, tx := range txs {
		op, err := storage.SetOp(storage.Transactions, tx.ID, tx)
		if err != nil {
			return failure(err)
		}
		ops = append(ops, op)
	}
	for _, h := range history {
		op, err := storage.SetOp(storage.History, h.ID, h)
		if err != nil {
			return failure(err)
		}
		ops = append(ops, op)
	}
	for _, c := range cards {
		op, err := storage.SetOp(storage.Cards, c.ID, c)
		if err != nil {
			return failure(err)
		}
		ops = append(ops, op)
	}

	if err := remote.ApplyBatch(ctx, ops); err != nil {
		return failure(fmt.Errorf("upload batch failed: %w", err))
	}

	slog.Info("Upload complete",
		"people", len(people), "transactions", len(txs),
		"history", len(history), "cards", len(cards),
	)
	return Report{Success: true, Records: len(ops)}
}

// Download copies the entire remote dataset into the local store, upserting
// record by record (no local batching). A failure partway leaves the records
// written so far in place.
func Download(ctx context.Context, remote RemoteStore, local storage.Store) Report {
	people, err := remote.ListPeople(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read remote people: %w", err))
	}
	txs, err := remote.ListTransactions(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read remote transactions: %w", err))
	}
	history, err := remote.ListHistory(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read remote history: %w", err))
	}
	cards, err := remote.ListCards(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to read remote cards: %w", err))
	}

	records := 0
	// People before transactions before history, so local foreign keys
	// resolve as records land.
	for _, p := range people {
		if err := local.SavePerson(ctx, p); err != nil {
			return failure(fmt.Errorf("failed to save person %s: %w", p.ID, err))
		}
		records++
	}
	for _, tx := range txs {
		if err := local.SaveTransaction(ctx, tx); err != nil {
			return failure(fmt.Errorf("failed to save transaction %s: %w", tx.ID, err))
		}
		records++
	}
	for _, h := range history {
		if err := local.AppendHistory(ctx, h); err != nil {
			return failure(fmt.Errorf("failed to save history entry %s: %w", h.ID, err))
		}
		records++
	}
	for _, c := range cards {
		if err := local.SaveCard(ctx, c); err != nil {
			return failure(fmt.Errorf("failed to save card %s: %w", c.ID, err))
		}
		records++
	}

	slog.Info("Download complete",
		"people", len(people), "transactions", len(txs),
		"history", len(history), "cards", len(cards),
	)
	return Report{Success: true, Records: records}
}
