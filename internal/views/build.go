package views

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flashillumination/flashbooks/internal/aggregate"
	"github.com/flashillumination/flashbooks/internal/classify"
	"github.com/flashillumination/flashbooks/internal/ledger"
)

var (
	one         = decimal.NewFromInt(1)
	daysPerYear = decimal.NewFromInt(365)
)

// Build runs one full recompute pass over the given inputs, strictly in
// tier order. The returned snapshot carries no warnings yet; the
// reconciliation validator attaches them after the pass.
func Build(in Inputs) *Snapshot {
	snap := &Snapshot{AsOf: in.AsOf, Settings: in.Settings.Clone()}

	// Tier 0: straight off the record store.
	snap.Revenue = buildRevenue(in)
	snap.Customers = buildCustomerAccounts(in)
	snap.Vendors = buildVendorAccounts(in)
	snap.Inventory = buildInventory(in)

	// Tier 1.
	snap.Cash = buildCashPosition(in)
	snap.Debtors = buildTradeDebtors(in)
	snap.ExpensesByCategory = buildExpensesByCategory(in)

	// Tier 2.
	snap.BankRec = buildBankReconciliation(in, snap.Cash)
	snap.ProfitAndLoss = buildProfitAndLoss(in)
	snap.Dashboard = buildDashboard(in, snap.Revenue, snap.Cash, snap.Debtors, snap.Inventory, snap.ProfitAndLoss)

	// Tier 3: tax summary first, the balance sheet consumes its net
	// VAT payable.
	snap.Tax = buildTaxSummary(in, snap.ProfitAndLoss)
	snap.BalanceSheet = buildBalanceSheet(in, snap.Cash, snap.Debtors, snap.Inventory, snap.Tax, snap.ProfitAndLoss)

	return snap
}

// day truncates to a UTC calendar date. All range arithmetic below works
// on whole dates.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ytdRange is [fiscal year start, as-of].
func ytdRange(in Inputs) (time.Time, time.Time) {
	return day(in.Settings.FiscalYearStart), day(in.AsOf)
}

// fiscalYearRange is [fiscal year start, Dec 31 of the starting year],
// the window the tax summary reports on.
func fiscalYearRange(in Inputs) (time.Time, time.Time) {
	from := day(in.Settings.FiscalYearStart)
	return from, time.Date(from.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
}

func invoiceDate(inv ledger.Invoice) time.Time { return day(inv.InvoiceDate) }
func invoiceReceived(inv ledger.Invoice) decimal.Decimal { return inv.AmountReceived }
func invoiceTotal(inv ledger.Invoice) decimal.Decimal { return inv.Total() }
func invoiceVAT(inv ledger.Invoice) decimal.Decimal { return inv.VATAmount() }

func expenseDate(e ledger.Expense) time.Time { return day(e.Date) }
func expenseAmount(e ledger.Expense) decimal.Decimal { return e.Amount }
func expensePaid(e ledger.Expense) decimal.Decimal { return e.Paid() }

// ratio returns num/den, or 0 when den is zero. Division-by-zero in the
// reports resolves to a defined default rather than raising.
func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

func buildRevenue(in Inputs) RevenueSummary {
	out := RevenueSummary{
		Today:            decimal.Zero,
		ThisMonth:        decimal.Zero,
		YTD:              decimal.Zero,
		TotalInvoiced:    decimal.Zero,
		TotalReceived:    decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	for _, inv := range in.Invoices {
		name := ""
		if c, ok := aggregate.Lookup(in.Customers, func(c ledger.Customer) string { return c.ID }, inv.CustomerID); ok {
			name = c.Name
		}
		total := inv.Total()
		out.Rows = append(out.Rows, InvoiceRow{
			InvoiceID:     inv.ID,
			InvoiceDate:   day(inv.InvoiceDate),
			EventDate:     day(inv.EventDate),
			CustomerID:    inv.CustomerID,
			CustomerName:  name,
			Subtotal:      inv.Subtotal(),
			VATAmount:     inv.VATAmount(),
			Total:         total,
			Received:      inv.AmountReceived,
			Balance:       inv.Balance(),
			PaymentStatus: classify.InvoicePaymentStatus(total, inv.AmountReceived),
		})
		out.TotalInvoiced = out.TotalInvoiced.Add(total)
		out.TotalReceived = out.TotalReceived.Add(inv.AmountReceived)
		out.TotalOutstanding = out.TotalOutstanding.Add(inv.Balance())
	}

	today := day(in.AsOf)
	ytdFrom, ytdTo := ytdRange(in)
	out.Today = aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceReceived, today, today)
	out.ThisMonth = aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceReceived, monthStart(in.AsOf), today)
	out.YTD = aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceReceived, ytdFrom, ytdTo)

	year := in.AsOf.Year()
	for m := time.January; m <= time.December; m++ {
		from := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)
		out.Monthly = append(out.Monthly, MonthRevenue{
			Month:    m,
			Invoiced: aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceTotal, from, to),
			Received: aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceReceived, from, to),
		})
	}
	return out
}

func buildCustomerAccounts(in Inputs) []CustomerAccount {
	customerID := func(inv ledger.Invoice) string { return inv.CustomerID }

	out := make([]CustomerAccount, 0, len(in.Customers))
	for _, c := range in.Customers {
		invoiced := aggregate.SumByCategory(in.Invoices, customerID, invoiceTotal, c.ID)
		paid := aggregate.SumByCategory(in.Invoices, customerID, invoiceReceived, c.ID)
		balance := invoiced.Sub(paid)
		out = append(out, CustomerAccount{
			CustomerID:    c.ID,
			Name:          c.Name,
			TotalInvoiced: invoiced,
			TotalPaid:     paid,
			Balance:       balance,
			Status:        classify.CustomerStatus(balance, c.CreditLimit),
		})
	}
	return out
}

func buildVendorAccounts(in Inputs) []VendorAccount {
	vendorID := func(e ledger.Expense) string { return e.VendorID }

	out := make([]VendorAccount, 0, len(in.Vendors))
	for _, v := range in.Vendors {
		purchased := aggregate.SumByCategory(in.Expenses, vendorID, expenseAmount, v.ID)
		paid := aggregate.SumByCategory(in.Expenses, vendorID, expensePaid, v.ID)
		out = append(out, VendorAccount{
			VendorID:       v.ID,
			Name:           v.Name,
			TotalPurchased: purchased,
			TotalPaid:      paid,
			BalanceOwed:    purchased.Sub(paid),
		})
	}
	return out
}

func buildInventory(in Inputs) InventorySummary {
	out := InventorySummary{TotalValue: decimal.Zero}
	for _, it := range in.Items {
		out.Lines = append(out.Lines, InventoryLine{
			ItemID:        it.ID,
			Description:   it.Description,
			UnitPrice:     it.UnitPrice,
			InStore:       it.QuantityInStore,
			RentedOut:     it.QuantityRentedOut,
			InTransit:     it.QuantityInTransit,
			TotalQuantity: it.TotalQuantity(),
			TotalValue:    it.TotalValue(),
		})
		out.InStore += it.QuantityInStore
		out.RentedOut += it.QuantityRentedOut
		out.InTransit += it.QuantityInTransit
		out.TotalValue = out.TotalValue.Add(it.TotalValue())
	}
	return out
}

func buildCashPosition(in Inputs) CashPosition {
	from, to := ytdRange(in)

	isCashReceipt := func(inv ledger.Invoice) bool { return inv.ReceiptMethod == ledger.PaymentMethodCash }
	isBankReceipt := func(inv ledger.Invoice) bool { return inv.ReceiptMethod != ledger.PaymentMethodCash }
	isCashPayment := func(e ledger.Expense) bool { return e.PaymentMethod == ledger.PaymentMethodCash }
	isBankPayment := func(e ledger.Expense) bool { return e.PaymentMethod != ledger.PaymentMethodCash }

	inRangeInvoice := func(pred func(ledger.Invoice) bool) func(ledger.Invoice) bool {
		return func(inv ledger.Invoice) bool {
			d := invoiceDate(inv)
			return pred(inv) && !d.Before(from) && !d.After(to)
		}
	}
	inRangeExpense := func(pred func(ledger.Expense) bool) func(ledger.Expense) bool {
		return func(e ledger.Expense) bool {
			d := expenseDate(e)
			return pred(e) && !d.Before(from) && !d.After(to)
		}
	}

	out := CashPosition{
		OpeningHand:  in.Settings.OpeningCashHand,
		OpeningBank:  in.Settings.OpeningCashBank,
		HandReceipts: aggregate.SumWhere(in.Invoices, inRangeInvoice(isCashReceipt), invoiceReceived),
		BankReceipts: aggregate.SumWhere(in.Invoices, inRangeInvoice(isBankReceipt), invoiceReceived),
		// Payments move the settled portion of each expense.
		HandPayments: aggregate.SumWhere(in.Expenses, inRangeExpense(isCashPayment), expensePaid),
		BankPayments: aggregate.SumWhere(in.Expenses, inRangeExpense(isBankPayment), expensePaid),
	}
	out.ClosingHand = out.OpeningHand.Add(out.HandReceipts).Sub(out.HandPayments)
	out.ClosingBank = out.OpeningBank.Add(out.BankReceipts).Sub(out.BankPayments)
	out.TotalCash = out.ClosingHand.Add(out.ClosingBank)
	return out
}

func buildTradeDebtors(in Inputs) TradeDebtors {
	out := TradeDebtors{
		TotalOutstanding: decimal.Zero,
		Current:          decimal.Zero,
		DueSoon:          decimal.Zero,
		Overdue:          decimal.Zero,
	}
	asOf := day(in.AsOf)

	for _, inv := range in.Invoices {
		owed := inv.Balance()
		if owed.Sign() <= 0 {
			continue // fully paid invoices never appear here
		}
		name := ""
		terms := 0
		if c, ok := aggregate.Lookup(in.Customers, func(c ledger.Customer) string { return c.ID }, inv.CustomerID); ok {
			name = c.Name
			terms = c.PaymentTermsDays
		}
		days := classify.DaysOutstanding(day(inv.InvoiceDate), asOf)
		bucket := classify.AgingBucket(days)
		out.Rows = append(out.Rows, DebtorRow{
			InvoiceID:       inv.ID,
			InvoiceDate:     day(inv.InvoiceDate),
			EventDate:       day(inv.EventDate),
			DueDate:         inv.DueDate(terms),
			CustomerID:      inv.CustomerID,
			CustomerName:    name,
			AmountOwed:      owed,
			DaysOutstanding: days,
			Bucket:          bucket,
		})
		out.TotalOutstanding = out.TotalOutstanding.Add(owed)
		switch bucket {
		case classify.BucketCurrent:
			out.Current = out.Current.Add(owed)
		case classify.BucketDueSoon:
			out.DueSoon = out.DueSoon.Add(owed)
		case classify.BucketOverdue:
			out.Overdue = out.Overdue.Add(owed)
		}
	}
	return out
}

func buildExpensesByCategory(in Inputs) []CategoryTotal {
	today := day(in.AsOf)
	ytdFrom, ytdTo := ytdRange(in)
	mStart := monthStart(in.AsOf)

	out := make([]CategoryTotal, 0, len(in.Settings.Categories))
	for _, cat := range in.Settings.Categories {
		byCat := func(e ledger.Expense) bool { return e.Category == cat }
		out = append(out, CategoryTotal{
			Category: cat,
			ThisMonth: aggregate.SumWhere(in.Expenses, func(e ledger.Expense) bool {
				d := expenseDate(e)
				return byCat(e) && !d.Before(mStart) && !d.After(today)
			}, expenseAmount),
			YTD: aggregate.SumWhere(in.Expenses, func(e ledger.Expense) bool {
				d := expenseDate(e)
				return byCat(e) && !d.Before(ytdFrom) && !d.After(ytdTo)
			}, expenseAmount),
		})
	}
	return out
}

func buildBankReconciliation(in Inputs, cash CashPosition) BankReconciliation {
	deposits := in.Statement.TotalDeposits()
	checks := in.Statement.TotalChecks()
	diff := classify.ReconciliationDifference(in.Statement.StatementBalance, deposits, checks, cash.ClosingBank)
	return BankReconciliation{
		StatementBalance:    in.Statement.StatementBalance,
		OutstandingDeposits: deposits,
		OutstandingChecks:   checks,
		AdjustedBalance:     in.Statement.StatementBalance.Add(deposits).Sub(checks),
		BookBalance:         cash.ClosingBank,
		Difference:          diff,
		Balanced:            classify.Balanced(diff),
	}
}

func plTotals(in Inputs, from, to time.Time) (PLTotals, map[string]decimal.Decimal) {
	revenue := aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceReceived, from, to)

	byCategory := make(map[string]decimal.Decimal, len(in.Settings.Categories))
	operating := decimal.Zero
	cost := decimal.Zero
	for _, cat := range in.Settings.Categories {
		sum := aggregate.SumWhere(in.Expenses, func(e ledger.Expense) bool {
			d := expenseDate(e)
			return e.Category == cat && !d.Before(from) && !d.After(to)
		}, expenseAmount)
		byCategory[cat] = sum
		if cat == in.Settings.CostOfServicesCategory {
			cost = cost.Add(sum)
		} else {
			operating = operating.Add(sum)
		}
	}

	gross := revenue.Sub(cost)
	net := gross.Sub(operating)
	return PLTotals{
		Revenue:           revenue,
		CostOfServices:    cost,
		GrossProfit:       gross,
		OperatingExpenses: operating,
		NetIncome:         net,
		NetMargin:         ratio(net, revenue),
	}, byCategory
}

func buildProfitAndLoss(in Inputs) ProfitAndLoss {
	today := day(in.AsOf)
	ytdFrom, ytdTo := ytdRange(in)

	month, monthByCat := plTotals(in, monthStart(in.AsOf), today)
	ytd, ytdByCat := plTotals(in, ytdFrom, ytdTo)

	var lines []PLLine
	for _, cat := range in.Settings.Categories {
		if cat == in.Settings.CostOfServicesCategory {
			continue
		}
		lines = append(lines, PLLine{
			Category:  cat,
			ThisMonth: monthByCat[cat],
			YTD:       ytdByCat[cat],
		})
	}

	return ProfitAndLoss{OperatingLines: lines, ThisMonth: month, YTD: ytd}
}

// vatPaid is the recoverable VAT embedded in VAT-inclusive expenses in
// [from, to]: amount x r/(1+r) at the configured rate.
func vatPaid(in Inputs, from, to time.Time) decimal.Decimal {
	r := in.Settings.VATRate
	if r.IsZero() {
		return decimal.Zero
	}
	base := aggregate.SumWhere(in.Expenses, func(e ledger.Expense) bool {
		d := expenseDate(e)
		return e.VATInclusive && !d.Before(from) && !d.After(to)
	}, expenseAmount)
	return base.Mul(r).Div(one.Add(r))
}

// accountsPayable is the unsettled portion of all recorded expenses.
func accountsPayable(in Inputs) decimal.Decimal {
	return aggregate.SumWhere(in.Expenses, func(ledger.Expense) bool { return true },
		func(e ledger.Expense) decimal.Decimal { return e.Outstanding() })
}

// netVATPayable over the fiscal year: collected on sales minus paid on
// purchases. Shared by the tax summary, the dashboard and the balance
// sheet so the three always agree.
func netVATPayable(in Inputs) decimal.Decimal {
	from, to := fiscalYearRange(in)
	collected := aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceVAT, from, to)
	return collected.Sub(vatPaid(in, from, to))
}

func buildDashboard(in Inputs, rev RevenueSummary, cash CashPosition, debtors TradeDebtors, inventory InventorySummary, pl ProfitAndLoss) DashboardKPIs {
	out := DashboardKPIs{
		MonthlyRevenue:   pl.ThisMonth.Revenue,
		MonthlyExpenses:  pl.ThisMonth.CostOfServices.Add(pl.ThisMonth.OperatingExpenses),
		MonthlyNetProfit: pl.ThisMonth.NetIncome,
		MonthlyMargin:    pl.ThisMonth.NetMargin,

		YTDRevenue:   pl.YTD.Revenue,
		YTDExpenses:  pl.YTD.CostOfServices.Add(pl.YTD.OperatingExpenses),
		YTDNetProfit: pl.YTD.NetIncome,
		YTDMargin:    pl.YTD.NetMargin,

		CashInHand: cash.ClosingHand,
		CashAtBank: cash.ClosingBank,
		TotalCash:  cash.TotalCash,

		OutstandingInvoices: debtors.TotalOutstanding,
		StockValue:          inventory.TotalValue,
		VATPayable:          netVATPayable(in),

		QuickRatio: decimal.Zero,
	}

	// DSO: receivables scaled to days of YTD revenue; defined as 0 when
	// there is no revenue yet.
	out.DSO = ratio(debtors.TotalOutstanding, rev.YTD).Mul(daysPerYear)

	// Quick ratio needs current liabilities, which are recomputed from
	// the records here so the dashboard stays below the balance sheet
	// in the dependency order.
	liabilities := accountsPayable(in).Add(netVATPayable(in))
	if liabilities.IsZero() {
		out.QuickRatioDefined = false
	} else {
		out.QuickRatioDefined = true
		out.QuickRatio = cash.TotalCash.Add(debtors.TotalOutstanding).Div(liabilities)
	}

	year := in.AsOf.Year()
	for _, mr := range rev.Monthly {
		from := time.Date(year, mr.Month, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)
		outflow := aggregate.SumByDateRange(in.Expenses, expenseDate, expenseAmount, from, to)
		out.Trend = append(out.Trend, MonthFlow{
			Month:   mr.Month,
			Inflow:  mr.Received,
			Outflow: outflow,
			Net:     mr.Received.Sub(outflow),
		})
	}
	return out
}

func buildTaxSummary(in Inputs, pl ProfitAndLoss) TaxSummary {
	from, to := fiscalYearRange(in)

	invoiced := aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceTotal, from, to)
	received := aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceReceived, from, to)
	collected := aggregate.SumByDateRange(in.Invoices, invoiceDate, invoiceVAT, from, to)
	paid := vatPaid(in, from, to)

	out := TaxSummary{
		TotalInvoiced:          invoiced,
		TotalReceived:          received,
		OutstandingReceivables: invoiced.Sub(received),
		VATCollected:           collected,
		VATPaid:                paid,
		NetVATPayable:          collected.Sub(paid),
		TotalExpenses:          decimal.Zero,
		NetProfitBeforeTax:     pl.YTD.NetIncome,
	}

	for _, cat := range in.Settings.Categories {
		sum := aggregate.SumWhere(in.Expenses, func(e ledger.Expense) bool {
			d := expenseDate(e)
			return e.Category == cat && !d.Before(from) && !d.After(to)
		}, expenseAmount)
		out.DeductibleExpenses = append(out.DeductibleExpenses, CategoryAmount{Category: cat, Amount: sum})
		out.TotalExpenses = out.TotalExpenses.Add(sum)
	}

	out.ProfitMargin = ratio(out.NetProfitBeforeTax, received)
	return out
}

func buildBalanceSheet(in Inputs, cash CashPosition, debtors TradeDebtors, inventory InventorySummary, tax TaxSummary, pl ProfitAndLoss) BalanceSheet {
	out := BalanceSheet{
		CashInHand:         cash.ClosingHand,
		CashAtBank:         cash.ClosingBank,
		AccountsReceivable: debtors.TotalOutstanding,
		InventoryValue:     inventory.TotalValue,

		AccountsPayable: accountsPayable(in),
		VATPayable:      tax.NetVATPayable,

		OpeningCapital:   in.Settings.OpeningCashHand.Add(in.Settings.OpeningCashBank),
		RetainedEarnings: pl.YTD.NetIncome,
	}
	out.TotalCurrentAssets = out.CashInHand.Add(out.CashAtBank).Add(out.AccountsReceivable)
	out.TotalFixedAssets = out.InventoryValue
	out.TotalAssets = out.TotalCurrentAssets.Add(out.TotalFixedAssets)
	out.TotalLiabilities = out.AccountsPayable.Add(out.VATPayable)
	out.TotalEquity = out.OpeningCapital.Add(out.RetainedEarnings)
	out.TotalLiabilitiesAndEquity = out.TotalLiabilities.Add(out.TotalEquity)
	out.Difference = out.TotalAssets.Sub(out.TotalLiabilitiesAndEquity)
	out.Balanced = classify.Balanced(out.Difference)
	return out
}
