package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/storage"
)

// storeResolver picks the backing store for a request: the caller's per-user
// database, or the shared project database.
type storeResolver func(*http.Request) (docStore, error)

func (s *Server) mountCollections(r chi.Router, resolve storeResolver) {
	r.Get("/{collection}", s.handleList(resolve))
	r.Put("/{collection}/{id}", s.handleSave(resolve))
	r.Delete("/{collection}/{id}", s.handleDelete(resolve))
	r.Post("/batch", s.handleBatch(resolve))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func collectionParam(r *http.Request) (storage.Collection, bool) {
	col := storage.Collection(chi.URLParam(r, "collection"))
	return col, col.Valid()
}

// handleList returns a full collection, newest first. transactionHistory
// additionally supports ?transactionId= to fetch one transaction's trail.
func (s *Server) handleList(resolve storeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		col, ok := collectionParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown collection")
			return
		}
		store, err := resolve(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx := r.Context()
		var records any
		switch col {
		case storage.People:
			records, err = store.ListPeople(ctx)
		case storage.Transactions:
			records, err = store.ListTransactions(ctx)
		case storage.History:
			if txID := r.URL.Query().Get("transactionId"); txID != "" {
				records, err = store.HistoryForTransaction(ctx, txID)
			} else {
				records, err = store.ListHistory(ctx)
			}
		case storage.Cards:
			records, err = store.ListCards(ctx)
		}
		if err != nil {
			slog.Error("List failed", "collection", col, "error", err)
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// handleSave upserts one record. The body's id must match the path id.
func (s *Server) handleSave(resolve storeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		col, ok := collectionParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown collection")
			return
		}
		store, err := resolve(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := chi.URLParam(r, "id")
		ctx := r.Context()
		dec := json.NewDecoder(r.Body)

		switch col {
		case storage.People:
			var p models.Person
			if err := dec.Decode(&p); err != nil {
				writeError(w, http.StatusBadRequest, "malformed person")
				return
			}
			if p.ID != id {
				writeError(w, http.StatusBadRequest, "body id does not match path")
				return
			}
			err = store.SavePerson(ctx, p)

		case storage.Transactions:
			var tx models.Transaction
			if err := dec.Decode(&tx); err != nil {
				writeError(w, http.StatusBadRequest, "malformed transaction")
				return
			}
			if tx.ID != id {
				writeError(w, http.StatusBadRequest, "body id does not match path")
				return
			}
			err = store.SaveTransaction(ctx, tx)

		case storage.History:
			var h models.TransactionHistory
			if err := dec.Decode(&h); err != nil {
				writeError(w, http.StatusBadRequest, "malformed history entry")
				return
			}
			if h.ID != id {
				writeError(w, http.StatusBadRequest, "body id does not match path")
				return
			}
			err = store.AppendHistory(ctx, h)

		case storage.Cards:
			var c models.CreditCard
			if err := dec.Decode(&c); err != nil {
				writeError(w, http.StatusBadRequest, "malformed card")
				return
			}
			if c.ID != id {
				writeError(w, http.StatusBadRequest, "body id does not match path")
				return
			}
			err = store.SaveCard(ctx, c)
		}

		if err != nil {
			slog.Error("Save failed", "collection", col, "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleDelete removes one record. Person deletes cascade in-store, so the
// person's transactions and their history vanish in the same SQL transaction.
func (s *Server) handleDelete(resolve storeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		col, ok := collectionParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown collection")
			return
		}
		store, err := resolve(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := chi.URLParam(r, "id")
		ctx := r.Context()
		switch col {
		case storage.People:
			err = store.DeletePerson(ctx, id)
		case storage.Transactions:
			err = store.DeleteTransaction(ctx, id)
		case storage.History:
			err = store.ApplyBatch(ctx, []storage.BatchOp{
				{Action: storage.BatchDelete, Collection: storage.History, ID: id},
			})
		case storage.Cards:
			err = store.DeleteCard(ctx, id)
		}
		if err != nil {
			slog.Error("Delete failed", "collection", col, "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleBatch applies a list of set/delete operations atomically.
func (s *Server) handleBatch(resolve storeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := resolve(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var ops []storage.BatchOp
		if err := json.NewDecoder(r.Body).Decode(&ops); err != nil {
			writeError(w, http.StatusBadRequest, "malformed batch")
			return
		}
		for _, op := range ops {
			if !op.Collection.Valid() {
				writeError(w, http.StatusBadRequest, "unknown collection in batch")
				return
			}
		}

		if err := store.ApplyBatch(r.Context(), ops); err != nil {
			slog.Error("Batch failed", "ops", len(ops), "error", err)
			writeError(w, http.StatusInternalServerError, "batch failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
