package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashillumination/flashbooks/internal/ledger"
	"github.com/flashillumination/flashbooks/internal/reconcile"
	"github.com/flashillumination/flashbooks/internal/testutil"
	"github.com/flashillumination/flashbooks/internal/views"
)

func fixtureInputs(t *testing.T) views.Inputs {
	t.Helper()
	return views.Collect(testutil.FixtureStore(t), testutil.FixtureAsOf)
}

func codes(warnings []views.Warning) []views.WarningCode {
	out := make([]views.WarningCode, len(warnings))
	for i, w := range warnings {
		out[i] = w.Code
	}
	return out
}

func TestCheck_FixtureBalanceMismatchOnly(t *testing.T) {
	in := fixtureInputs(t)
	snap := views.Build(in)

	warnings := reconcile.Check(in, snap)
	require.Len(t, warnings, 1)

	w := warnings[0]
	assert.Equal(t, views.WarnBalanceMismatch, w.Code)
	assert.True(t, testutil.Dec("5305").Equal(w.Difference), "got %s", w.Difference)
	assert.Contains(t, w.Message, "5305")
	assert.Contains(t, w.Message, "assets 43595")
}

func TestCheck_UnreconciledBank(t *testing.T) {
	in := fixtureInputs(t)
	// Throw the statement off by 40.
	in.Statement.StatementBalance = testutil.Dec("30235")
	snap := views.Build(in)

	warnings := reconcile.Check(in, snap)
	require.Contains(t, codes(warnings), views.WarnUnreconciled)

	for _, w := range warnings {
		if w.Code != views.WarnUnreconciled {
			continue
		}
		assert.True(t, testutil.Dec("-40").Equal(w.Difference), "got %s", w.Difference)
		assert.Contains(t, w.Message, "book balance 30375")
	}
}

func TestCheck_DanglingReferences(t *testing.T) {
	in := views.Inputs{
		AsOf:     testutil.FixtureAsOf,
		Settings: testutil.FixtureSettings(),
		Invoices: []ledger.Invoice{{
			ID:          "INV-900",
			InvoiceDate: testutil.Date(2025, time.June, 1),
			CustomerID:  "C-MISSING",
			Lines: []ledger.LineItem{
				{Description: "Hire", Quantity: testutil.Dec("1"), UnitPrice: testutil.Dec("100")},
			},
		}},
		Expenses: []ledger.Expense{
			{
				ID:       "EXP-900",
				Date:     testutil.Date(2025, time.June, 2),
				Category: "Rent",
				VendorID: "V-MISSING",
				Amount:   testutil.Dec("50"),
			},
			// No vendor reference at all is fine.
			{
				ID:       "EXP-901",
				Date:     testutil.Date(2025, time.June, 3),
				Category: "Rent",
				Amount:   testutil.Dec("50"),
			},
		},
	}
	snap := views.Build(in)

	var dangling []views.Warning
	for _, w := range reconcile.Check(in, snap) {
		if w.Code == views.WarnDanglingReference {
			dangling = append(dangling, w)
		}
	}
	require.Len(t, dangling, 2)
	assert.Contains(t, dangling[0].Message, "invoice INV-900 references missing customer C-MISSING")
	assert.Contains(t, dangling[1].Message, "expense EXP-900 references missing vendor V-MISSING")
}
