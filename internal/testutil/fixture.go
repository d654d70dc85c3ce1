// Package testutil provides shared fixtures for package tests: exact
// decimal and date constructors and a small, fully hand-checked set of
// books whose derived figures are computed in the test assertions.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flashillumination/flashbooks/internal/ledger"
)

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses an exact decimal literal. Panics on malformed input; test
// fixtures are written by hand and a typo should fail loudly.
func Dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("testutil: bad decimal literal " + s)
	}
	return d
}

// DecP is Dec for optional amount fields.
func DecP(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// FixtureAsOf is the reference date the fixture figures are computed
// against.
var FixtureAsOf = Date(2025, time.June, 15)

// FixtureSettings returns the fixture company: 15% VAT, fiscal year
// from Jan 1 2025, 5000 opening cash in hand and 20000 at bank.
func FixtureSettings() ledger.Settings {
	s := ledger.DefaultSettings()
	s.CompanyName = "Flash Illumination"
	s.Tagline = "Lighting & events"
	s.VATRate = Dec("0.15")
	s.FiscalYearStart = Date(2025, time.January, 1)
	s.OpeningCashHand = Dec("5000")
	s.OpeningCashBank = Dec("20000")
	return s
}

// FixtureMutations returns the fixture records in dependency order.
//
// Expense amounts are multiples of 1.15 so the embedded VAT works out
// exactly; invoice dates sit 0, 5, 45 and 65 days before FixtureAsOf
// to land one invoice in each aging situation.
func FixtureMutations() []ledger.Mutation {
	return []ledger.Mutation{
		{Entity: ledger.EntityCustomer, Op: ledger.OpCreate, Customer: &ledger.Customer{
			ID:               "C-001",
			Name:             "Acme Rentals",
			Email:            "accounts@acmerentals.example",
			PaymentTermsDays: 30,
			CreditLimit:      Dec("10000"),
		}},
		{Entity: ledger.EntityCustomer, Op: ledger.OpCreate, Customer: &ledger.Customer{
			ID:               "C-002",
			Name:             "Bright Events",
			PaymentTermsDays: 14,
		}},
		{Entity: ledger.EntityVendor, Op: ledger.OpCreate, Vendor: &ledger.Vendor{
			ID:   "V-001",
			Name: "Metro Supplies",
		}},
		{Entity: ledger.EntityInventoryItem, Op: ledger.OpCreate, Item: &ledger.InventoryItem{
			ID:                "ITEM-001",
			Description:       "Stage light",
			UnitPrice:         Dec("500"),
			QuantityInStore:   4,
			QuantityRentedOut: 2,
		}},

		// Paid in full this month: 10000 + 1500 VAT. Billed two days
		// after the event it covers.
		{Entity: ledger.EntityInvoice, Op: ledger.OpCreate, Invoice: &ledger.Invoice{
			ID:          "INV-001",
			InvoiceDate: Date(2025, time.June, 10),
			EventDate:   Date(2025, time.June, 8),
			CustomerID:  "C-001",
			Lines: []ledger.LineItem{
				{Description: "Lighting rig hire", Quantity: Dec("2"), UnitPrice: Dec("5000")},
			},
			ReceiptMethod:  "Bank Transfer",
			AmountReceived: Dec("11500"),
		}},
		// 45 days out, partially paid: 2000 still owed.
		{Entity: ledger.EntityInvoice, Op: ledger.OpCreate, Invoice: &ledger.Invoice{
			ID:          "INV-002",
			InvoiceDate: Date(2025, time.May, 1),
			CustomerID:  "C-001",
			Lines: []ledger.LineItem{
				{Description: "Sound system hire", Quantity: Dec("1"), UnitPrice: Dec("4000")},
			},
			ReceiptMethod:  "Bank Transfer",
			AmountReceived: Dec("2600"),
		}},
		// 65 days out, unpaid: 2300 owed.
		{Entity: ledger.EntityInvoice, Op: ledger.OpCreate, Invoice: &ledger.Invoice{
			ID:          "INV-003",
			InvoiceDate: Date(2025, time.April, 11),
			CustomerID:  "C-002",
			Lines: []ledger.LineItem{
				{Description: "Venue lighting", Quantity: Dec("1"), UnitPrice: Dec("2000")},
			},
			ReceiptMethod: "Bank Transfer",
		}},
		// Cash sale on the as-of day.
		{Entity: ledger.EntityInvoice, Op: ledger.OpCreate, Invoice: &ledger.Invoice{
			ID:          "INV-004",
			InvoiceDate: Date(2025, time.June, 15),
			CustomerID:  "C-002",
			Lines: []ledger.LineItem{
				{Description: "Spotlight hire", Quantity: Dec("1"), UnitPrice: Dec("1000")},
			},
			ReceiptMethod:  "Cash",
			AmountReceived: Dec("1150"),
		}},

		{Entity: ledger.EntityExpense, Op: ledger.OpCreate, Expense: &ledger.Expense{
			ID:            "EXP-001",
			Date:          Date(2025, time.June, 5),
			Category:      "Equipment Purchase",
			VendorID:      "V-001",
			Description:   "Replacement fixtures",
			Amount:        Dec("2300"),
			PaymentMethod: "Bank Transfer",
			VATInclusive:  true,
		}},
		{Entity: ledger.EntityExpense, Op: ledger.OpCreate, Expense: &ledger.Expense{
			ID:            "EXP-002",
			Date:          Date(2025, time.May, 10),
			Category:      "Rent",
			Amount:        Dec("1150"),
			PaymentMethod: "Bank Transfer",
			VATInclusive:  true,
		}},
		{Entity: ledger.EntityExpense, Op: ledger.OpCreate, Expense: &ledger.Expense{
			ID:            "EXP-003",
			Date:          Date(2025, time.June, 12),
			Category:      "Transport/Fuel",
			Amount:        Dec("230"),
			PaymentMethod: "Cash",
			VATInclusive:  true,
		}},
		// Partially settled: 300 still payable.
		{Entity: ledger.EntityExpense, Op: ledger.OpCreate, Expense: &ledger.Expense{
			ID:            "EXP-004",
			Date:          Date(2025, time.April, 20),
			Category:      "Utilities",
			Amount:        Dec("575"),
			AmountPaid:    DecP("275"),
			PaymentMethod: "Bank Transfer",
			VATInclusive:  true,
		}},

		// Statement matches the book bank balance after outstanding items.
		{Entity: ledger.EntityBankStatement, Op: ledger.OpUpdate, Statement: &ledger.BankStatement{
			StatementBalance: Dec("30275"),
			OutstandingDeposits: []ledger.StatementItem{
				{Description: "Deposit in transit", Amount: Dec("250")},
			},
			OutstandingChecks: []ledger.StatementItem{
				{Description: "Check 1042", Amount: Dec("150")},
			},
		}},
	}
}

// FixtureStore builds a store holding the full fixture.
func FixtureStore(t *testing.T) *ledger.Store {
	t.Helper()

	st, err := ledger.NewStore(FixtureSettings())
	require.NoError(t, err)

	for _, m := range FixtureMutations() {
		res := st.Apply(m)
		require.Truef(t, res.OK(), "fixture %s %s %s: %v", m.Op, m.Entity, m.RecordID(), res.Errors)
	}
	return st
}
