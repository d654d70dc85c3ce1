// Package views computes the derived financial reports.
//
// Views form a strict acyclic dependency order over the record store
// and over each other:
//
//	Tier 0: RevenueSummary, per-customer/per-vendor accounts, inventory
//	Tier 1: CashPosition, TradeDebtors, expenses by category
//	Tier 2: BankReconciliation, ProfitAndLoss, DashboardKPIs
//	Tier 3: TaxSummary, then BalanceSheet (which consumes net VAT payable)
//
// Build runs the whole pass in that order; a view only ever reads the
// record inputs and fully-finished lower tiers, never a partially
// updated one. The pass is pure and idempotent: the same Inputs produce
// byte-identical canonical encodings, so there is no I/O, no clock read
// and no randomness anywhere below Build.
//
// A Snapshot is immutable once built. The engine replaces snapshots
// wholesale; nothing patches a view in place.
package views
