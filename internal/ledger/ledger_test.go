package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/debtfree/internal/calculator"
	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/storage"
	"github.com/mmynk/debtfree/internal/storage/sqlite"
)

func newTestLedger(t *testing.T) (*Ledger, *sqlite.SQLiteStore) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	l := New(store, nil)
	l.Reload(context.Background())
	return l, store
}

func TestAddPersonValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.AddPerson(ctx, "   ", "", ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}

	p, err := l.AddPerson(ctx, "Alex", "12345", "friend")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	if p.ID == "" || p.CreatedAt == 0 {
		t.Errorf("Expected generated ID and timestamp, got %+v", p)
	}
	if got := len(l.People()); got != 1 {
		t.Errorf("Expected 1 cached person, got %d", got)
	}
}

func TestBalanceScenario(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alex, err := l.AddPerson(ctx, "Alex", "", "")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}

	if _, err := l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(500), models.YouLent, "dinner"); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if _, err := l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(200), models.YouBorrowed, "cab"); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	bal := l.PersonBalance(alex.ID)
	if bal.String() != "300" {
		t.Errorf("PersonBalance = %s, want 300", bal)
	}
	if status := calculator.BalanceStatus(bal); status != calculator.StatusLent {
		t.Errorf("Status = %q, want %q", status, calculator.StatusLent)
	}

	// A third transaction settles the account.
	if _, err := l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(300), models.YouBorrowed, ""); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	bal = l.PersonBalance(alex.ID)
	if !bal.IsZero() {
		t.Errorf("PersonBalance = %s, want 0", bal)
	}
	if status := calculator.BalanceStatus(bal); status != calculator.StatusSettled {
		t.Errorf("Status = %q, want %q", status, calculator.StatusSettled)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alex, err := l.AddPerson(ctx, "Alex", "", "")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}

	tests := []struct {
		name      string
		personID  string
		amount    decimal.Decimal
		direction models.Direction
		wantErr   error
	}{
		{"zero amount", alex.ID, decimal.Zero, models.YouLent, ErrNonPositiveAmount},
		{"negative amount", alex.ID, decimal.NewFromInt(-5), models.YouLent, ErrNonPositiveAmount},
		{"bad direction", alex.ID, decimal.NewFromInt(5), "SIDEWAYS", ErrBadDirection},
		{"unknown person", "nope", decimal.NewFromInt(5), models.YouLent, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.AddTransaction(ctx, tt.personID, tt.amount, tt.direction, ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddTransaction error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateTransactionArchivesHistory(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alex, err := l.AddPerson(ctx, "Alex", "", "")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	tx, err := l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(100), models.YouLent, "original")
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	updated, err := l.UpdateTransaction(ctx, tx.ID, decimal.NewFromInt(250), models.YouLent, "corrected")
	if err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}
	if updated.Amount.String() != "250" || updated.Note != "corrected" {
		t.Errorf("Updated transaction = %+v", updated)
	}

	history, err := l.TransactionHistory(ctx, tx.ID)
	if err != nil {
		t.Fatalf("TransactionHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected exactly 1 history entry, got %d", len(history))
	}
	h := history[0]
	if h.PreviousAmount.String() != "100" {
		t.Errorf("PreviousAmount = %s, want 100", h.PreviousAmount)
	}
	if h.PreviousDirection != models.YouLent || h.PreviousNote != "original" {
		t.Errorf("History entry = %+v", h)
	}

	// A second edit appends a second entry capturing the first edit's state.
	if _, err := l.UpdateTransaction(ctx, tx.ID, decimal.NewFromInt(300), models.YouBorrowed, "again"); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}
	history, err = l.TransactionHistory(ctx, tx.ID)
	if err != nil {
		t.Fatalf("TransactionHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	// Newest first: the latest entry archived the 250/corrected state.
	if history[0].PreviousAmount.String() != "250" || history[0].PreviousNote != "corrected" {
		t.Errorf("Latest history entry = %+v", history[0])
	}
}

func TestRemovePersonPrunesCache(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	alex, _ := l.AddPerson(ctx, "Alex", "", "")
	sam, _ := l.AddPerson(ctx, "Sam", "", "")
	l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(10), models.YouLent, "")
	l.AddTransaction(ctx, sam.ID, decimal.NewFromInt(20), models.YouLent, "")

	if err := l.RemovePerson(ctx, alex.ID); err != nil {
		t.Fatalf("RemovePerson failed: %v", err)
	}

	for _, p := range l.People() {
		if p.ID == alex.ID {
			t.Error("Removed person still cached")
		}
	}
	for _, tx := range l.Transactions() {
		if tx.PersonID == alex.ID {
			t.Error("Removed person's transaction still cached")
		}
	}

	// The store agrees with the cache.
	txs, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 1 || txs[0].PersonID != sam.ID {
		t.Errorf("Store transactions = %+v", txs)
	}
}

func TestTotals(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alex, _ := l.AddPerson(ctx, "Alex", "", "")
	sam, _ := l.AddPerson(ctx, "Sam", "", "")
	l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(500), models.YouLent, "")
	l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(200), models.YouBorrowed, "")
	l.AddTransaction(ctx, sam.ID, decimal.NewFromInt(75), models.YouBorrowed, "")

	totals := l.Totals()
	if totals.Global.String() != "225" {
		t.Errorf("Global = %s, want 225", totals.Global)
	}
	if totals.Lent.String() != "300" {
		t.Errorf("Lent = %s, want 300", totals.Lent)
	}
	if totals.Borrowed.String() != "75" {
		t.Errorf("Borrowed = %s, want 75", totals.Borrowed)
	}
}

// failingStore wraps a Store and fails every write, to verify the cache is
// untouched when persistence fails.
type failingStore struct {
	storage.Store
}

var errBoom = errors.New("disk on fire")

func (f *failingStore) SavePerson(context.Context, models.Person) error           { return errBoom }
func (f *failingStore) SaveTransaction(context.Context, models.Transaction) error { return errBoom }
func (f *failingStore) DeletePerson(context.Context, string) error                { return errBoom }
func (f *failingStore) AppendHistory(context.Context, models.TransactionHistory) error {
	return errBoom
}

func TestFailedWriteLeavesCacheUntouched(t *testing.T) {
	inner, err := sqlite.New(filepath.Join(t.TempDir(), "failing.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { inner.Close() })
	ctx := context.Background()

	// Seed through a working ledger first.
	seed := New(inner, nil)
	seed.Reload(ctx)
	alex, err := seed.AddPerson(ctx, "Alex", "", "")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	tx, err := seed.AddTransaction(ctx, alex.ID, decimal.NewFromInt(100), models.YouLent, "")
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	l := New(&failingStore{Store: inner}, nil)
	l.Reload(ctx)

	t.Run("failed add person", func(t *testing.T) {
		if _, err := l.AddPerson(ctx, "Nope", "", ""); !errors.Is(err, errBoom) {
			t.Fatalf("Expected errBoom, got %v", err)
		}
		if len(l.People()) != 1 {
			t.Errorf("Cache changed after failed write: %+v", l.People())
		}
	})

	t.Run("failed remove person", func(t *testing.T) {
		if err := l.RemovePerson(ctx, alex.ID); !errors.Is(err, errBoom) {
			t.Fatalf("Expected errBoom, got %v", err)
		}
		if len(l.People()) != 1 || len(l.Transactions()) != 1 {
			t.Error("Cache pruned despite failed delete")
		}
	})

	t.Run("failed edit keeps live state", func(t *testing.T) {
		if _, err := l.UpdateTransaction(ctx, tx.ID, decimal.NewFromInt(999), models.YouLent, "x"); !errors.Is(err, errBoom) {
			t.Fatalf("Expected errBoom, got %v", err)
		}
		got := l.Transactions()[0]
		if got.Amount.String() != "100" {
			t.Errorf("Amount = %s after failed edit, want 100", got.Amount)
		}
	})
}

// Concurrent edits of the same transaction must serialize so every
// intermediate state lands in history exactly once.
func TestConcurrentEditsArchiveEveryState(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	alex, err := l.AddPerson(ctx, "Alex", "", "")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	tx, err := l.AddTransaction(ctx, alex.ID, decimal.NewFromInt(100), models.YouLent, "")
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	const edits = 10
	var wg sync.WaitGroup
	for i := 0; i < edits; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			if _, err := l.UpdateTransaction(ctx, tx.ID, decimal.NewFromInt(amount), models.YouLent, ""); err != nil {
				t.Errorf("UpdateTransaction failed: %v", err)
			}
		}(int64(101 + i))
	}
	wg.Wait()

	history, err := l.TransactionHistory(ctx, tx.ID)
	if err != nil {
		t.Fatalf("TransactionHistory failed: %v", err)
	}
	if len(history) != edits {
		t.Fatalf("Expected %d history entries, got %d", edits, len(history))
	}

	live := l.Transactions()[0].Amount.String()
	archived := make(map[string]int)
	for _, h := range history {
		archived[h.PreviousAmount.String()]++
	}
	if archived["100"] != 1 {
		t.Errorf("Original amount archived %d times, want exactly once", archived["100"])
	}
	if archived[live] != 0 {
		t.Errorf("Live amount %s must not appear in history", live)
	}
	for amount, n := range archived {
		if n != 1 {
			t.Errorf("Amount %s archived %d times, want exactly once", amount, n)
		}
	}
	if len(archived) != edits {
		t.Errorf("Got %d distinct archived amounts, want %d", len(archived), edits)
	}
}
