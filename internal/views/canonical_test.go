package views_test

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashillumination/flashbooks/internal/ledger"
	"github.com/flashillumination/flashbooks/internal/reconcile"
	"github.com/flashillumination/flashbooks/internal/testutil"
	"github.com/flashillumination/flashbooks/internal/views"
)

// goldenStore holds books whose every derived figure works out exactly:
// zero VAT, round amounts, and all activity inside the as-of month. The
// balance sheet is off by exactly 1730 so the snapshot carries one
// warning.
func goldenStore(t *testing.T) *ledger.Store {
	t.Helper()

	s := ledger.DefaultSettings()
	s.CompanyName = "Golden Lighting"
	s.VATRate = testutil.Dec("0")
	s.FiscalYearStart = testutil.Date(2025, time.January, 1)
	s.OpeningCashHand = testutil.Dec("1000")
	s.OpeningCashBank = testutil.Dec("9000")

	st, err := ledger.NewStore(s)
	require.NoError(t, err)

	mutations := []ledger.Mutation{
		{Entity: ledger.EntityCustomer, Op: ledger.OpCreate, Customer: &ledger.Customer{
			ID: "C-101", Name: "Golden Events", PaymentTermsDays: 30,
		}},
		{Entity: ledger.EntityVendor, Op: ledger.OpCreate, Vendor: &ledger.Vendor{
			ID: "V-101", Name: "Stage Supply Co",
		}},
		{Entity: ledger.EntityInventoryItem, Op: ledger.OpCreate, Item: &ledger.InventoryItem{
			ID: "ITEM-101", Description: "Par can", UnitPrice: testutil.Dec("500"), QuantityInStore: 2,
		}},
		{Entity: ledger.EntityInvoice, Op: ledger.OpCreate, Invoice: &ledger.Invoice{
			ID:          "INV-101",
			InvoiceDate: testutil.Date(2025, time.June, 10),
			EventDate:   testutil.Date(2025, time.June, 7),
			CustomerID:  "C-101",
			Lines: []ledger.LineItem{
				{Description: "Festival rig", Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("10000")},
			},
			ReceiptMethod:  "Bank Transfer",
			AmountReceived: testutil.Dec("10000"),
		}},
		{Entity: ledger.EntityInvoice, Op: ledger.OpCreate, Invoice: &ledger.Invoice{
			ID:          "INV-102",
			InvoiceDate: testutil.Date(2025, time.June, 1),
			CustomerID:  "C-101",
			Lines: []ledger.LineItem{
				{Description: "Follow spot", Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("730")},
			},
			ReceiptMethod: "Bank Transfer",
		}},
		{Entity: ledger.EntityExpense, Op: ledger.OpCreate, Expense: &ledger.Expense{
			ID:            "EXP-101",
			Date:          testutil.Date(2025, time.June, 5),
			Category:      "Equipment Purchase",
			VendorID:      "V-101",
			Description:   "Dimmer racks",
			Amount:        testutil.Dec("2000"),
			PaymentMethod: "Bank Transfer",
			VATInclusive:  true,
		}},
		{Entity: ledger.EntityExpense, Op: ledger.OpCreate, Expense: &ledger.Expense{
			ID:            "EXP-102",
			Date:          testutil.Date(2025, time.June, 8),
			Category:      "Rent",
			Amount:        testutil.Dec("1000"),
			PaymentMethod: "Bank Transfer",
			VATInclusive:  true,
		}},
		{Entity: ledger.EntityBankStatement, Op: ledger.OpUpdate, Statement: &ledger.BankStatement{
			StatementBalance: testutil.Dec("15900"),
			OutstandingDeposits: []ledger.StatementItem{
				{Description: "Deposit in transit", Amount: testutil.Dec("200")},
			},
			OutstandingChecks: []ledger.StatementItem{
				{Description: "Check 2001", Amount: testutil.Dec("100")},
			},
		}},
	}
	for _, m := range mutations {
		res := st.Apply(m)
		require.Truef(t, res.OK(), "%s %s %s: %v", m.Op, m.Entity, m.RecordID(), res.Errors)
	}
	return st
}

func goldenSnapshot(t *testing.T) *views.Snapshot {
	t.Helper()
	in := views.Collect(goldenStore(t), testutil.Date(2025, time.June, 15))
	snap := views.Build(in)
	snap.Warnings = reconcile.Check(in, snap)
	return snap
}

func TestMarshalCanonical_Golden(t *testing.T) {
	snap := goldenSnapshot(t)
	data, err := views.MarshalCanonical(snap)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "snapshot", data)
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	first, err := views.MarshalCanonical(goldenSnapshot(t))
	require.NoError(t, err)
	second, err := views.MarshalCanonical(goldenSnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second),
		"two recomputes over the same records must be byte-identical")
}

func TestMarshalCanonical_RevisionExcluded(t *testing.T) {
	snap := goldenSnapshot(t)
	snap.Revision = 1
	first, err := views.MarshalCanonical(snap)
	require.NoError(t, err)

	snap.Revision = 99
	second, err := views.MarshalCanonical(snap)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMarshalCanonical_NormalizesStrings(t *testing.T) {
	in := views.Inputs{
		AsOf:     testutil.FixtureAsOf,
		Settings: testutil.FixtureSettings(),
		Customers: []ledger.Customer{
			// Decomposed e + combining acute.
			{ID: "C-001", Name: "Café Lumière"},
		},
	}
	data, err := views.MarshalCanonical(views.Build(in))
	require.NoError(t, err)

	assert.Contains(t, string(data), "Café Lumière")
	assert.NotContains(t, string(data), "́")
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	in := views.Inputs{
		AsOf:     testutil.FixtureAsOf,
		Settings: testutil.FixtureSettings(),
		Customers: []ledger.Customer{
			{ID: "C-001", Name: "Smith & Sons <Pty>"},
		},
	}
	data, err := views.MarshalCanonical(views.Build(in))
	require.NoError(t, err)

	assert.Contains(t, string(data), "Smith & Sons <Pty>")
	assert.NotContains(t, string(data), "\\u0026")
}
