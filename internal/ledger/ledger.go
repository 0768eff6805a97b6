// Package ledger is the coordination layer between the UI-facing surface
// (CLI, future apps) and a storage backend. It owns the in-memory cache of
// people, transactions and cards; nothing else writes that cache.
//
// A Ledger is built over exactly one storage.Store. The caller decides once,
// at construction, whether that is the device store or the sync-server client
// (signed in means remote, signed out means local); the ledger never inspects
// auth state.
//
// Every mutation persists to the store first and touches the cache only after
// the store call succeeds, so a failed write leaves the cache at the
// pre-mutation state and the error propagates to the caller unchanged.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/debtfree/internal/calculator"
	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/storage"
)

var (
	ErrEmptyName         = errors.New("person name required")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrBadDirection      = errors.New("direction must be YOU_LENT or YOU_BORROWED")
	ErrBadCardType       = errors.New("card type must be VISA, MASTERCARD or RUPAY")
	ErrNotFound          = errors.New("not found")
)

// Ledger caches the four collections in memory and funnels every change
// through its store.
type Ledger struct {
	mu     sync.Mutex
	store  storage.Store
	logger *slog.Logger

	people []models.Person
	txs    []models.Transaction
	cards  []models.CreditCard
}

// New creates a Ledger over the given store. Call Reload before reading.
func New(store storage.Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, logger: logger}
}

// Reload re-fetches all collections from the store and replaces the cache
// wholesale. A collection that fails to load is logged and left empty rather
// than failing the whole reload; the cache settles on whatever was fetched.
func (l *Ledger) Reload(ctx context.Context) {
	people, err := l.store.ListPeople(ctx)
	if err != nil {
		l.logger.Error("Failed to load people", "error", err)
		people = []models.Person{}
	}
	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		l.logger.Error("Failed to load transactions", "error", err)
		txs = []models.Transaction{}
	}
	cards, err := l.store.ListCards(ctx)
	if err != nil {
		l.logger.Error("Failed to load cards", "error", err)
		cards = []models.CreditCard{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.people, l.txs, l.cards = people, txs, cards
}

// People returns a copy of the cached people, newest first.
func (l *Ledger) People() []models.Person {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Person, len(l.people))
	copy(out, l.people)
	return out
}

// Transactions returns a copy of the cached transactions, newest first.
func (l *Ledger) Transactions() []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Cards returns a copy of the cached cards, newest first.
func (l *Ledger) Cards() []models.CreditCard {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.CreditCard, len(l.cards))
	copy(out, l.cards)
	return out
}

// Person returns a cached person by ID.
func (l *Ledger) Person(id string) (models.Person, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.people {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Person{}, ErrNotFound
}

// AddPerson creates and persists a new person.
func (l *Ledger) AddPerson(ctx context.Context, name, phone, notes string) (models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Person{}, ErrEmptyName
	}

	p := models.Person{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Notes:     notes,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := l.store.SavePerson(ctx, p); err != nil {
		return models.Person{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.people = append([]models.Person{p}, l.people...)
	return p, nil
}

// UpdatePerson persists an edited person and refreshes the cache entry.
func (l *Ledger) UpdatePerson(ctx context.Context, p models.Person) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if err := l.store.SavePerson(ctx, p); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.people {
		if l.people[i].ID == p.ID {
			l.people[i] = p
			break
		}
	}
	return nil
}

// RemovePerson deletes a person. The store cascades the delete to the
// person's transactions and history; the cache is pruned to match.
func (l *Ledger) RemovePerson(ctx context.Context, id string) error {
	if err := l.store.DeletePerson(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	people := l.people[:0]
	for _, p := range l.people {
		if p.ID != id {
			people = append(people, p)
		}
	}
	l.people = people

	txs := l.txs[:0]
	for _, tx := range l.txs {
		if tx.PersonID != id {
			txs = append(txs, tx)
		}
	}
	l.txs = txs
	return nil
}

// AddTransaction records a new lend/borrow event against a known person.
func (l *Ledger) AddTransaction(ctx context.Context, personID string, amount decimal.Decimal, direction models.Direction, note string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, ErrNonPositiveAmount
	}
	if !direction.Valid() {
		return models.Transaction{}, ErrBadDirection
	}
	if _, err := l.Person(personID); err != nil {
		return models.Transaction{}, err
	}

	now := time.Now().UnixMilli()
	tx := models.Transaction{
		ID:        uuid.New().String(),
		PersonID:  personID,
		Amount:    amount,
		Direction: direction,
		Date:      now,
		Note:      note,
		CreatedAt: now,
	}
	if err := l.store.SaveTransaction(ctx, tx); err != nil {
		return models.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append([]models.Transaction{tx}, l.txs...)
	return tx, nil
}

// UpdateTransaction archives the transaction's current state to history, then
// overwrites it with the new amount, direction and note.
func (l *Ledger) UpdateTransaction(ctx context.Context, id string, amount decimal.Decimal, direction models.Direction, note string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, ErrNonPositiveAmount
	}
	if !direction.Valid() {
		return models.Transaction{}, ErrBadDirection
	}

	// The lock spans snapshot, archive and save so concurrent edits of the
	// same transaction each archive the state the previous edit left behind.
	l.mu.Lock()
	defer l.mu.Unlock()

	var current *models.Transaction
	for i := range l.txs {
		if l.txs[i].ID == id {
			current = &l.txs[i]
			break
		}
	}
	if current == nil {
		return models.Transaction{}, ErrNotFound
	}
	prev := *current

	entry := models.TransactionHistory{
		ID:                uuid.New().String(),
		TransactionID:     prev.ID,
		PreviousAmount:    prev.Amount,
		PreviousDirection: prev.Direction,
		PreviousNote:      prev.Note,
		ChangedAt:         time.Now().UnixMilli(),
	}
	updated := prev
	updated.Amount = amount
	updated.Direction = direction
	updated.Note = note

	// Archive first so an interrupted edit loses the new state, never the
	// audit trail.
	if err := l.store.AppendHistory(ctx, entry); err != nil {
		return models.Transaction{}, err
	}
	if err := l.store.SaveTransaction(ctx, updated); err != nil {
		return models.Transaction{}, err
	}

	*current = updated
	return updated, nil
}

// RemoveTransaction deletes a transaction; its history goes with it.
func (l *Ledger) RemoveTransaction(ctx context.Context, id string) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	txs := l.txs[:0]
	for _, tx := range l.txs {
		if tx.ID != id {
			txs = append(txs, tx)
		}
	}
	l.txs = txs
	return nil
}

// TransactionHistory fetches the edit history of one transaction from the
// store (history is not cached).
func (l *Ledger) TransactionHistory(ctx context.Context, txID string) ([]models.TransactionHistory, error) {
	return l.store.HistoryForTransaction(ctx, txID)
}

// AddCard stores a new card. ID and CreatedAt are assigned here.
func (l *Ledger) AddCard(ctx context.Context, card models.CreditCard) (models.CreditCard, error) {
	if !card.CardType.Valid() {
		return models.CreditCard{}, ErrBadCardType
	}
	if card.Color == "" {
		l.mu.Lock()
		card.Color = models.CardColors[len(l.cards)%len(models.CardColors)]
		l.mu.Unlock()
	}

	card.ID = uuid.New().String()
	card.CreatedAt = time.Now().UnixMilli()
	if err := l.store.SaveCard(ctx, card); err != nil {
		return models.CreditCard{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.cards = append([]models.CreditCard{card}, l.cards...)
	return card, nil
}

// UpdateCard persists an edited card and refreshes the cache entry.
func (l *Ledger) UpdateCard(ctx context.Context, card models.CreditCard) error {
	if !card.CardType.Valid() {
		return ErrBadCardType
	}
	if err := l.store.SaveCard(ctx, card); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.cards {
		if l.cards[i].ID == card.ID {
			l.cards[i] = card
			break
		}
	}
	return nil
}

// RemoveCard deletes a card.
func (l *Ledger) RemoveCard(ctx context.Context, id string) error {
	if err := l.store.DeleteCard(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	cards := l.cards[:0]
	for _, c := range l.cards {
		if c.ID != id {
			cards = append(cards, c)
		}
	}
	l.cards = cards
	return nil
}

// PersonTransactions returns the cached transactions of one person, newest
// first by event date.
func (l *Ledger) PersonTransactions(personID string) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Transaction
	for _, tx := range l.txs {
		if tx.PersonID == personID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// PersonBalance returns the signed net balance with one person.
func (l *Ledger) PersonBalance(personID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calculator.PersonBalance(l.txs, personID)
}

// Totals returns the portfolio-wide aggregates over the cache.
func (l *Ledger) Totals() calculator.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calculator.ComputeTotals(l.people, l.txs)
}
