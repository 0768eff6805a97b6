// Package calculator computes balances over transaction lists.
// Everything here is pure: no storage, no clocks, no side effects.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/debtfree/internal/models"
)

// Balance returns the signed net amount of the given transactions.
// Positive means net lent, negative means net borrowed, zero means settled.
// The sum is commutative, so the result is independent of transaction order.
// An empty list yields zero.
func Balance(txs []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		switch tx.Direction.Sign() {
		case 1:
			sum = sum.Add(tx.Amount)
		case -1:
			sum = sum.Sub(tx.Amount)
		}
	}
	return sum
}

// PersonBalance filters txs to one person and returns their net balance.
func PersonBalance(txs []models.Transaction, personID string) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.PersonID != personID {
			continue
		}
		switch tx.Direction.Sign() {
		case 1:
			sum = sum.Add(tx.Amount)
		case -1:
			sum = sum.Sub(tx.Amount)
		}
	}
	return sum
}

// Totals aggregates per-person balances across the whole portfolio.
type Totals struct {
	// Global is the sum of all per-person balances.
	Global decimal.Decimal

	// Lent is the sum of positive per-person balances (money owed to the user).
	Lent decimal.Decimal

	// Borrowed is the absolute sum of negative per-person balances
	// (money the user owes).
	Borrowed decimal.Decimal
}

// ComputeTotals calculates portfolio-wide totals over the given people and
// transactions. Transactions referencing unknown people are ignored, matching
// what the per-person views show.
func ComputeTotals(people []models.Person, txs []models.Transaction) Totals {
	byPerson := make(map[string]decimal.Decimal, len(people))
	for _, p := range people {
		byPerson[p.ID] = decimal.Zero
	}
	for _, tx := range txs {
		bal, ok := byPerson[tx.PersonID]
		if !ok {
			continue
		}
		switch tx.Direction.Sign() {
		case 1:
			byPerson[tx.PersonID] = bal.Add(tx.Amount)
		case -1:
			byPerson[tx.PersonID] = bal.Sub(tx.Amount)
		}
	}

	t := Totals{Global: decimal.Zero, Lent: decimal.Zero, Borrowed: decimal.Zero}
	for _, bal := range byPerson {
		t.Global = t.Global.Add(bal)
		switch {
		case bal.IsPositive():
			t.Lent = t.Lent.Add(bal)
		case bal.IsNegative():
			t.Borrowed = t.Borrowed.Add(bal.Neg())
		}
	}
	return t
}

// Status is the settlement state of a balance, used for display.
type Status string

const (
	StatusLent     Status = "YOU LENT"
	StatusBorrowed Status = "YOU BORROWED"
	StatusSettled  Status = "SETTLED"
)

// BalanceStatus maps a signed balance to its display status.
func BalanceStatus(balance decimal.Decimal) Status {
	switch {
	case balance.IsPositive():
		return StatusLent
	case balance.IsNegative():
		return StatusBorrowed
	}
	return StatusSettled
}
