// Package ledger holds the base bookkeeping records and the mutation API
// that changes them.
//
// The ledger is the only externally mutable state in the system. Every
// change goes through Store.Apply (or Store.UpdateSettings), which
// validates the mutation against the current record set and either
// applies it whole or rejects it whole - a rejected mutation leaves the
// store untouched.
//
// INVARIANTS:
//   - Record IDs are unique per entity kind.
//   - Every Invoice.CustomerID resolves to a stored Customer; every
//     Expense.VendorID, when set, resolves to a stored Vendor. Deleting
//     a referenced record is rejected.
//   - Expense categories and payment methods are drawn from Settings;
//     Settings updates may not drop a value that records still use.
//   - Derived amounts (invoice subtotal, VAT, balance, inventory value)
//     are never stored; they are methods over the current fields, so no
//     stale cached value can survive a mutation.
//
// Accessors return deep copies in insertion order. Callers never observe
// or share the store's internal state, which keeps recompute passes
// deterministic and isolated from later mutations.
//
// The store itself is not goroutine-safe; the engine serializes all
// access through its single-writer loop.
package ledger
