package views_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashillumination/flashbooks/internal/classify"
	"github.com/flashillumination/flashbooks/internal/testutil"
	"github.com/flashillumination/flashbooks/internal/views"
)

// assertDec compares decimals by value so 0 and 0.00 are equal.
func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, testutil.Dec(want).Equal(got), "want %s, got %s: %v", want, got, msgAndArgs)
}

func fixtureSnapshot(t *testing.T) *views.Snapshot {
	t.Helper()
	st := testutil.FixtureStore(t)
	return views.Build(views.Collect(st, testutil.FixtureAsOf))
}

func TestBuild_RevenueSummary(t *testing.T) {
	snap := fixtureSnapshot(t)
	rev := snap.Revenue

	require.Len(t, rev.Rows, 4)

	// Revenue is received-basis, keyed on invoice date.
	assertDec(t, "1150", rev.Today)
	assertDec(t, "12650", rev.ThisMonth)
	assertDec(t, "15250", rev.YTD)

	assertDec(t, "19550", rev.TotalInvoiced)
	assertDec(t, "15250", rev.TotalReceived)
	assertDec(t, "4300", rev.TotalOutstanding)

	byID := make(map[string]views.InvoiceRow, len(rev.Rows))
	for _, row := range rev.Rows {
		byID[row.InvoiceID] = row
	}

	paid := byID["INV-001"]
	assert.Equal(t, "Acme Rentals", paid.CustomerName)
	assert.Equal(t, testutil.Date(2025, time.June, 8), paid.EventDate,
		"billed after the event it covers")
	assertDec(t, "10000", paid.Subtotal)
	assertDec(t, "1500", paid.VATAmount)
	assertDec(t, "11500", paid.Total)
	assertDec(t, "0", paid.Balance)
	assert.Equal(t, classify.StatusPaid, paid.PaymentStatus)

	partial := byID["INV-002"]
	assertDec(t, "2000", partial.Balance)
	assert.Equal(t, classify.StatusPartiallyPaid, partial.PaymentStatus)

	unpaid := byID["INV-003"]
	assertDec(t, "2300", unpaid.Balance)
	assert.Equal(t, classify.StatusUnpaid, unpaid.PaymentStatus)
	assert.Equal(t, unpaid.InvoiceDate, unpaid.EventDate,
		"event date falls back to the invoice date when not given")
}

func TestBuild_RevenueMonthly(t *testing.T) {
	snap := fixtureSnapshot(t)

	monthly := snap.Revenue.Monthly
	require.Len(t, monthly, 12)

	byMonth := make(map[time.Month]views.MonthRevenue, len(monthly))
	for _, m := range monthly {
		byMonth[m.Month] = m
	}

	assertDec(t, "0", byMonth[time.January].Invoiced)
	assertDec(t, "2300", byMonth[time.April].Invoiced)
	assertDec(t, "0", byMonth[time.April].Received)
	assertDec(t, "4600", byMonth[time.May].Invoiced)
	assertDec(t, "2600", byMonth[time.May].Received)
	assertDec(t, "12650", byMonth[time.June].Invoiced)
	assertDec(t, "12650", byMonth[time.June].Received)
}

func TestBuild_CustomerAndVendorAccounts(t *testing.T) {
	snap := fixtureSnapshot(t)

	require.Len(t, snap.Customers, 2)
	acme := snap.Customers[0]
	assert.Equal(t, "C-001", acme.CustomerID)
	assertDec(t, "14100", acme.TotalPaid)
	assertDec(t, "2000", acme.Balance)
	assert.Equal(t, classify.AccountActive, acme.Status)

	bright := snap.Customers[1]
	assertDec(t, "2300", bright.Balance)
	assert.Equal(t, classify.AccountActive, bright.Status,
		"no credit limit, balance alone never warns")

	require.Len(t, snap.Vendors, 1)
	metro := snap.Vendors[0]
	assertDec(t, "2300", metro.TotalPurchased)
	assertDec(t, "2300", metro.TotalPaid)
	assertDec(t, "0", metro.BalanceOwed)
}

func TestBuild_Inventory(t *testing.T) {
	snap := fixtureSnapshot(t)
	inv := snap.Inventory

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, int64(4), inv.InStore)
	assert.Equal(t, int64(2), inv.RentedOut)
	assert.Equal(t, int64(0), inv.InTransit)
	assert.Equal(t, int64(6), inv.Lines[0].TotalQuantity)
	assertDec(t, "3000", inv.TotalValue)
}

func TestBuild_CashPosition(t *testing.T) {
	snap := fixtureSnapshot(t)
	cash := snap.Cash

	// Hand: 5000 opening + cash sale 1150 - fuel 230.
	assertDec(t, "1150", cash.HandReceipts)
	assertDec(t, "230", cash.HandPayments)
	assertDec(t, "5920", cash.ClosingHand)

	// Bank: 20000 opening + 14100 received - 3725 settled. The partly
	// paid utility bill only moves its settled 275.
	assertDec(t, "14100", cash.BankReceipts)
	assertDec(t, "3725", cash.BankPayments)
	assertDec(t, "30375", cash.ClosingBank)

	assertDec(t, "36295", cash.TotalCash)
}

func TestBuild_TradeDebtors(t *testing.T) {
	snap := fixtureSnapshot(t)
	deb := snap.Debtors

	// Fully paid invoices never appear.
	require.Len(t, deb.Rows, 2)

	byID := make(map[string]views.DebtorRow, len(deb.Rows))
	for _, row := range deb.Rows {
		byID[row.InvoiceID] = row
	}

	dueSoon := byID["INV-002"]
	assert.Equal(t, 45, dueSoon.DaysOutstanding)
	assert.Equal(t, classify.BucketDueSoon, dueSoon.Bucket)
	assert.Equal(t, testutil.Date(2025, time.May, 31), dueSoon.DueDate,
		"30 day terms from May 1")

	overdue := byID["INV-003"]
	assert.Equal(t, 65, overdue.DaysOutstanding)
	assert.Equal(t, classify.BucketOverdue, overdue.Bucket)
	assert.Equal(t, testutil.Date(2025, time.April, 11), overdue.EventDate)

	assertDec(t, "4300", deb.TotalOutstanding)
	assertDec(t, "0", deb.Current)
	assertDec(t, "2000", deb.DueSoon)
	assertDec(t, "2300", deb.Overdue)
}

func TestBuild_ExpensesByCategory(t *testing.T) {
	snap := fixtureSnapshot(t)

	totals := make(map[string]views.CategoryTotal, len(snap.ExpensesByCategory))
	for _, ct := range snap.ExpensesByCategory {
		totals[ct.Category] = ct
	}

	assertDec(t, "2300", totals["Equipment Purchase"].ThisMonth)
	assertDec(t, "2300", totals["Equipment Purchase"].YTD)
	assertDec(t, "0", totals["Rent"].ThisMonth)
	assertDec(t, "1150", totals["Rent"].YTD)
	assertDec(t, "230", totals["Transport/Fuel"].ThisMonth)
	// Accrual basis: the full utility bill lands in its month even
	// though only 275 is settled.
	assertDec(t, "575", totals["Utilities"].YTD)
}

func TestBuild_BankReconciliation(t *testing.T) {
	snap := fixtureSnapshot(t)
	rec := snap.BankRec

	assertDec(t, "30275", rec.StatementBalance)
	assertDec(t, "250", rec.OutstandingDeposits)
	assertDec(t, "150", rec.OutstandingChecks)
	assertDec(t, "30375", rec.AdjustedBalance)
	assertDec(t, "30375", rec.BookBalance)
	assertDec(t, "0", rec.Difference)
	assert.True(t, rec.Balanced)
}

func TestBuild_ProfitAndLoss(t *testing.T) {
	snap := fixtureSnapshot(t)
	pl := snap.ProfitAndLoss

	assertDec(t, "15250", pl.YTD.Revenue)
	assertDec(t, "2300", pl.YTD.CostOfServices)
	assertDec(t, "12950", pl.YTD.GrossProfit)
	assertDec(t, "1955", pl.YTD.OperatingExpenses)
	assertDec(t, "10995", pl.YTD.NetIncome)

	assertDec(t, "12650", pl.ThisMonth.Revenue)
	assertDec(t, "10120", pl.ThisMonth.NetIncome)
	assertDec(t, "0.8", pl.ThisMonth.NetMargin)

	// The cost of services category never shows up as an operating line.
	for _, ln := range pl.OperatingLines {
		assert.NotEqual(t, "Equipment Purchase", ln.Category)
	}
}

func TestBuild_TaxSummary(t *testing.T) {
	snap := fixtureSnapshot(t)
	tax := snap.Tax

	assertDec(t, "19550", tax.TotalInvoiced)
	assertDec(t, "15250", tax.TotalReceived)
	assertDec(t, "4300", tax.OutstandingReceivables)

	assertDec(t, "2550", tax.VATCollected)
	// 4255 of VAT-inclusive expenses at 15%: 4255 x 0.15/1.15 = 555.
	assertDec(t, "555", tax.VATPaid)
	assertDec(t, "1995", tax.NetVATPayable)

	assertDec(t, "4255", tax.TotalExpenses)
	assertDec(t, "10995", tax.NetProfitBeforeTax)
}

func TestBuild_BalanceSheet(t *testing.T) {
	snap := fixtureSnapshot(t)
	bs := snap.BalanceSheet

	assertDec(t, "40595", bs.TotalCurrentAssets)
	assertDec(t, "3000", bs.TotalFixedAssets)
	assertDec(t, "43595", bs.TotalAssets)

	assertDec(t, "300", bs.AccountsPayable)
	assertDec(t, "1995", bs.VATPayable)
	assertDec(t, "2295", bs.TotalLiabilities)

	assertDec(t, "25000", bs.OpeningCapital)
	assertDec(t, "10995", bs.RetainedEarnings)
	assertDec(t, "35995", bs.TotalEquity)
	assertDec(t, "38290", bs.TotalLiabilitiesAndEquity)

	// The fixture books deliberately do not balance: revenue received
	// on old invoices and inventory bought before the fiscal year have
	// no matching capital entry.
	assertDec(t, "5305", bs.Difference)
	assert.False(t, bs.Balanced)
}

func TestBuild_Dashboard(t *testing.T) {
	snap := fixtureSnapshot(t)
	kpi := snap.Dashboard

	assertDec(t, "12650", kpi.MonthlyRevenue)
	assertDec(t, "2530", kpi.MonthlyExpenses)
	assertDec(t, "10120", kpi.MonthlyNetProfit)
	assertDec(t, "0.8", kpi.MonthlyMargin)

	assertDec(t, "15250", kpi.YTDRevenue)
	assertDec(t, "4255", kpi.YTDExpenses)
	assertDec(t, "10995", kpi.YTDNetProfit)

	assertDec(t, "36295", kpi.TotalCash)
	assertDec(t, "4300", kpi.OutstandingInvoices)
	assertDec(t, "3000", kpi.StockValue)
	assertDec(t, "1995", kpi.VATPayable)

	// DSO = 4300/15250 x 365.
	assertDec(t, "102.9180327868852465", kpi.DSO)

	assert.True(t, kpi.QuickRatioDefined)
	assertDec(t, "17.6884531590413943", kpi.QuickRatio)

	require.Len(t, kpi.Trend, 12)
	byMonth := make(map[time.Month]views.MonthFlow, 12)
	for _, m := range kpi.Trend {
		byMonth[m.Month] = m
	}
	assertDec(t, "12650", byMonth[time.June].Inflow)
	assertDec(t, "2530", byMonth[time.June].Outflow)
	assertDec(t, "2600", byMonth[time.May].Inflow)
	assertDec(t, "1150", byMonth[time.May].Outflow)
	assertDec(t, "0", byMonth[time.January].Inflow)
	assertDec(t, "0", byMonth[time.December].Net)
}

func TestBuild_EmptyBooks(t *testing.T) {
	in := views.Inputs{
		AsOf:     testutil.FixtureAsOf,
		Settings: testutil.FixtureSettings(),
	}
	snap := views.Build(in)

	assertDec(t, "0", snap.Revenue.YTD)
	assert.Empty(t, snap.Debtors.Rows)
	assertDec(t, "5000", snap.Cash.ClosingHand)
	assertDec(t, "20000", snap.Cash.ClosingBank)

	// No revenue: every ratio resolves to a defined zero.
	assertDec(t, "0", snap.ProfitAndLoss.YTD.NetMargin)
	assertDec(t, "0", snap.Dashboard.DSO)
	assert.False(t, snap.Dashboard.QuickRatioDefined)
	assertDec(t, "0", snap.Dashboard.QuickRatio)
}
