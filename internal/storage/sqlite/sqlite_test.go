package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func person(name string) models.Person {
	return models.Person{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
	}
}

func transaction(personID string, amount string, dir models.Direction) models.Transaction {
	return models.Transaction{
		ID:        uuid.New().String(),
		PersonID:  personID,
		Amount:    decimal.RequireFromString(amount),
		Direction: dir,
		Date:      time.Now().UnixMilli(),
		CreatedAt: time.Now().UnixMilli(),
	}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("empty database lists are empty not nil errors", func(t *testing.T) {
		people, err := store.ListPeople(ctx)
		if err != nil {
			t.Fatalf("ListPeople failed: %v", err)
		}
		if len(people) != 0 {
			t.Errorf("Expected empty people, got %d", len(people))
		}

		txs, err := store.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(txs) != 0 {
			t.Errorf("Expected empty transactions, got %d", len(txs))
		}
	})

	t.Run("save and list person roundtrip", func(t *testing.T) {
		p := person("Alex")
		p.Phone = "+91 99999 00000"
		p.Notes = "college friend"

		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("SavePerson failed: %v", err)
		}

		people, err := store.ListPeople(ctx)
		if err != nil {
			t.Fatalf("ListPeople failed: %v", err)
		}
		if len(people) != 1 {
			t.Fatalf("Expected 1 person, got %d", len(people))
		}
		if !reflect.DeepEqual(people[0], p) {
			t.Errorf("Person mismatch: got %+v, want %+v", people[0], p)
		}
	})

	t.Run("save twice is idempotent", func(t *testing.T) {
		p := person("Sam")
		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("SavePerson failed: %v", err)
		}

		before, err := store.ListPeople(ctx)
		if err != nil {
			t.Fatalf("ListPeople failed: %v", err)
		}

		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("Second SavePerson failed: %v", err)
		}

		after, err := store.ListPeople(ctx)
		if err != nil {
			t.Fatalf("ListPeople failed: %v", err)
		}
		if !reflect.DeepEqual(before, after) {
			t.Errorf("Collection changed after idempotent save:\nbefore %+v\nafter  %+v", before, after)
		}
	})

	t.Run("save with existing id replaces", func(t *testing.T) {
		p := person("Typo Nmae")
		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("SavePerson failed: %v", err)
		}

		p.Name = "Fixed Name"
		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		people, err := store.ListPeople(ctx)
		if err != nil {
			t.Fatalf("ListPeople failed: %v", err)
		}
		found := 0
		for _, got := range people {
			if got.ID == p.ID {
				found++
				if got.Name != "Fixed Name" {
					t.Errorf("Name = %q, want %q", got.Name, "Fixed Name")
				}
			}
		}
		if found != 1 {
			t.Errorf("Expected exactly 1 record with upserted id, found %d", found)
		}
	})

	t.Run("transactions sort newest first", func(t *testing.T) {
		p := person("Dated")
		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("SavePerson failed: %v", err)
		}

		older := transaction(p.ID, "10", models.YouLent)
		older.Date = 1000
		newer := transaction(p.ID, "20", models.YouLent)
		newer.Date = 2000

		if err := store.SaveTransaction(ctx, older); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}
		if err := store.SaveTransaction(ctx, newer); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		txs, err := store.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		var dates []int64
		for _, tx := range txs {
			dates = append(dates, tx.Date)
		}
		for i := 1; i < len(dates); i++ {
			if dates[i-1] < dates[i] {
				t.Errorf("Transactions not sorted newest first: %v", dates)
			}
		}
	})

	t.Run("amounts roundtrip exactly", func(t *testing.T) {
		p := person("Precise")
		if err := store.SavePerson(ctx, p); err != nil {
			t.Fatalf("SavePerson failed: %v", err)
		}
		tx := transaction(p.ID, "12345.67", models.YouBorrowed)
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		txs, err := store.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		for _, got := range txs {
			if got.ID == tx.ID && got.Amount.String() != "12345.67" {
				t.Errorf("Amount = %s, want 12345.67", got.Amount)
			}
		}
	})

	t.Run("card roundtrip", func(t *testing.T) {
		card := models.CreditCard{
			ID:         uuid.New().String(),
			CardName:   "HDFC Salary",
			CardNumber: "4111111111111111",
			CardType:   models.CardVisa,
			NameOnCard: "ALEX DOE",
			Expiry:     "09/28",
			CVV:        "123",
			Color:      "#1A237E",
			CreatedAt:  time.Now().UnixMilli(),
		}

		if err := store.SaveCard(ctx, card); err != nil {
			t.Fatalf("SaveCard failed: %v", err)
		}

		cards, err := store.ListCards(ctx)
		if err != nil {
			t.Fatalf("ListCards failed: %v", err)
		}
		if len(cards) != 1 || !reflect.DeepEqual(cards[0], card) {
			t.Errorf("Card mismatch: got %+v, want %+v", cards, card)
		}

		if err := store.DeleteCard(ctx, card.ID); err != nil {
			t.Fatalf("DeleteCard failed: %v", err)
		}
		cards, err = store.ListCards(ctx)
		if err != nil {
			t.Fatalf("ListCards failed: %v", err)
		}
		if len(cards) != 0 {
			t.Errorf("Expected no cards after delete, got %d", len(cards))
		}
	})
}

func TestCascadeDeletes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := person("Cascade Target")
	keep := person("Bystander")
	if err := store.SavePerson(ctx, p); err != nil {
		t.Fatalf("SavePerson failed: %v", err)
	}
	if err := store.SavePerson(ctx, keep); err != nil {
		t.Fatalf("SavePerson failed: %v", err)
	}

	// Two transactions for the target, each with two history entries,
	// plus one unrelated transaction that must survive.
	var targetTxIDs []string
	for i := 0; i < 2; i++ {
		tx := transaction(p.ID, "100", models.YouLent)
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}
		targetTxIDs = append(targetTxIDs, tx.ID)

		for j := 0; j < 2; j++ {
			h := models.TransactionHistory{
				ID:                uuid.New().String(),
				TransactionID:     tx.ID,
				PreviousAmount:    decimal.NewFromInt(int64(50 + j)),
				PreviousDirection: models.YouLent,
				ChangedAt:         time.Now().UnixMilli(),
			}
			if err := store.AppendHistory(ctx, h); err != nil {
				t.Fatalf("AppendHistory failed: %v", err)
			}
		}
	}
	survivor := transaction(keep.ID, "42", models.YouBorrowed)
	if err := store.SaveTransaction(ctx, survivor); err != nil {
		t.Fatalf("SaveTransaction failed: %v", err)
	}

	t.Run("person delete cascades transactions and history", func(t *testing.T) {
		if err := store.DeletePerson(ctx, p.ID); err != nil {
			t.Fatalf("DeletePerson failed: %v", err)
		}

		txs, err := store.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		for _, tx := range txs {
			if tx.PersonID == p.ID {
				t.Errorf("Transaction %s still references deleted person", tx.ID)
			}
		}
		if len(txs) != 1 || txs[0].ID != survivor.ID {
			t.Errorf("Expected only the bystander transaction to survive, got %+v", txs)
		}

		history, err := store.ListHistory(ctx)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		for _, h := range history {
			for _, id := range targetTxIDs {
				if h.TransactionID == id {
					t.Errorf("History %s still references deleted transaction %s", h.ID, id)
				}
			}
		}
		if len(history) != 0 {
			t.Errorf("Expected no history left, got %d entries", len(history))
		}
	})

	t.Run("transaction delete cascades its history", func(t *testing.T) {
		h := models.TransactionHistory{
			ID:                uuid.New().String(),
			TransactionID:     survivor.ID,
			PreviousAmount:    decimal.NewFromInt(41),
			PreviousDirection: models.YouBorrowed,
			ChangedAt:         time.Now().UnixMilli(),
		}
		if err := store.AppendHistory(ctx, h); err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}

		if err := store.DeleteTransaction(ctx, survivor.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}

		history, err := store.HistoryForTransaction(ctx, survivor.ID)
		if err != nil {
			t.Fatalf("HistoryForTransaction failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected history gone with its transaction, got %d entries", len(history))
		}
	})
}

func TestApplyBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("applies sets and deletes atomically", func(t *testing.T) {
		store := newTestStore(t)

		p := person("Batched")
		tx := transaction(p.ID, "77", models.YouLent)

		opPerson, err := storage.SetOp(storage.People, p.ID, p)
		if err != nil {
			t.Fatalf("SetOp failed: %v", err)
		}
		opTx, err := storage.SetOp(storage.Transactions, tx.ID, tx)
		if err != nil {
			t.Fatalf("SetOp failed: %v", err)
		}

		if err := store.ApplyBatch(ctx, []storage.BatchOp{opPerson, opTx}); err != nil {
			t.Fatalf("ApplyBatch failed: %v", err)
		}

		people, _ := store.ListPeople(ctx)
		txs, _ := store.ListTransactions(ctx)
		if len(people) != 1 || len(txs) != 1 {
			t.Fatalf("Expected 1 person and 1 transaction, got %d/%d", len(people), len(txs))
		}

		if err := store.ApplyBatch(ctx, []storage.BatchOp{
			{Action: storage.BatchDelete, Collection: storage.Transactions, ID: tx.ID},
		}); err != nil {
			t.Fatalf("ApplyBatch delete failed: %v", err)
		}
		txs, _ = store.ListTransactions(ctx)
		if len(txs) != 0 {
			t.Errorf("Expected transaction deleted, got %d", len(txs))
		}
	})

	t.Run("one bad op rolls back the whole batch", func(t *testing.T) {
		store := newTestStore(t)

		p := person("Rollback")
		opPerson, err := storage.SetOp(storage.People, p.ID, p)
		if err != nil {
			t.Fatalf("SetOp failed: %v", err)
		}
		bad := storage.BatchOp{
			Action:     storage.BatchSet,
			Collection: "no-such-collection",
			ID:         "x",
			Record:     json.RawMessage(`{}`),
		}

		if err := store.ApplyBatch(ctx, []storage.BatchOp{opPerson, bad}); err == nil {
			t.Fatal("Expected batch with bad op to fail")
		}

		people, err := store.ListPeople(ctx)
		if err != nil {
			t.Fatalf("ListPeople failed: %v", err)
		}
		if len(people) != 0 {
			t.Errorf("Expected rollback to leave nothing, got %d people", len(people))
		}
	})
}

func TestUserStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alex@example.com", "Alex", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("lookup by email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alex@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Errorf("GetUserByEmail = %+v, want id %s", got, user.ID)
		}
	})

	t.Run("missing user is nil not error", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for unknown email, got %+v", got)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("alex@example.com", "Other Alex", "hash2")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected duplicate email to fail")
		}
	})
}
