// Package models defines the core domain models for DebtFree.
//
// # Entities
//
//   - Person: someone the user lends to or borrows from
//   - Transaction: a single lend/borrow event against a Person
//   - TransactionHistory: append-only audit trail of transaction edits
//   - CreditCard: card metadata in the user's wallet (no relation to Person)
//   - User: a registered account on the sync server
//
// # Design Principles
//
// 1. **No object graphs**: transactions reference their person by ID string,
// never by pointer, so entities serialize cleanly to JSON and SQL rows.
// 2. **Millisecond timestamps**: all CreatedAt/Date/ChangedAt fields are Unix
// milliseconds, matching the wire format of the sync server.
// 3. **Exact money**: amounts are shopspring decimals, never floats.
package models
