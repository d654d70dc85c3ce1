// Package render writes a snapshot out as an Excel workbook, one sheet
// per report. The workbook is a presentation of an already-computed
// snapshot; nothing in here derives figures.
package render

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/flashillumination/flashbooks/internal/views"
)

// Sheet names, in workbook order.
const (
	SheetDashboard    = "Dashboard"
	SheetRevenue      = "Revenue"
	SheetDebtors      = "Trade Debtors"
	SheetCash         = "Cash Position"
	SheetBankRec      = "Bank Reconciliation"
	SheetPL           = "Profit & Loss"
	SheetBalanceSheet = "Balance Sheet"
	SheetTax          = "Tax Summary"
	SheetCustomers    = "Customers"
	SheetVendors      = "Vendors"
	SheetInventory    = "Inventory"
)

// Workbook builds the report workbook for a snapshot. The caller owns
// the returned file and is responsible for SaveAs/Write and Close.
func Workbook(snap *views.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	w := &writer{f: f}
	if err := w.styles(); err != nil {
		return nil, err
	}

	w.dashboard(snap)
	w.revenue(snap)
	w.debtors(snap)
	w.cash(snap)
	w.bankRec(snap)
	w.profitAndLoss(snap)
	w.balanceSheet(snap)
	w.taxSummary(snap)
	w.customers(snap)
	w.vendors(snap)
	w.inventory(snap)

	if w.err != nil {
		return nil, w.err
	}

	// Drop the default sheet and land on the dashboard.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetDashboard)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// Save renders the snapshot and writes the workbook to path.
func Save(snap *views.Snapshot, path string) error {
	f, err := Workbook(snap)
	if err != nil {
		return fmt.Errorf("render workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writer tracks the first error across sheet builders so each builder
// can stay linear.
type writer struct {
	f   *excelize.File
	err error

	titleStyle  int
	headerStyle int
}

func (w *writer) styles() error {
	title, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	header, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	w.titleStyle = title
	w.headerStyle = header
	return nil
}

func (w *writer) sheet(name string) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("create sheet %s: %w", name, err)
	}
}

func (w *writer) cell(sheet string, col, row int, value any) {
	if w.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if d, ok := value.(decimal.Decimal); ok {
		value = d.InexactFloat64()
	}
	if err := w.f.SetCellValue(sheet, name, value); err != nil {
		w.err = fmt.Errorf("set %s!%s: %w", sheet, name, err)
	}
}

func (w *writer) row(sheet string, row int, values ...any) {
	for i, v := range values {
		w.cell(sheet, i+1, row, v)
	}
}

func (w *writer) styleRow(sheet string, row, style int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetRowStyle(sheet, row, row, style); err != nil {
		w.err = fmt.Errorf("style %s row %d: %w", sheet, row, err)
	}
}

func (w *writer) widths(sheet string, cols int, width float64) {
	if w.err != nil {
		return
	}
	start, _ := excelize.ColumnNumberToName(1)
	end, _ := excelize.ColumnNumberToName(cols)
	if err := w.f.SetColWidth(sheet, start, end, width); err != nil {
		w.err = fmt.Errorf("widths %s: %w", sheet, err)
	}
}

// title writes the company banner rows every sheet opens with and
// returns the first free row.
func (w *writer) title(sheet, report string, snap *views.Snapshot) int {
	w.row(sheet, 1, snap.Settings.CompanyName)
	w.styleRow(sheet, 1, w.titleStyle)
	w.row(sheet, 2, report, "", "As of", snap.AsOf.Format("2006-01-02"))
	return 4
}

func (w *writer) dashboard(snap *views.Snapshot) {
	w.sheet(SheetDashboard)
	d := snap.Dashboard
	r := w.title(SheetDashboard, "Business Overview", snap)

	kpis := []struct {
		label string
		value any
	}{
		{"Monthly Revenue", d.MonthlyRevenue},
		{"Monthly Expenses", d.MonthlyExpenses},
		{"Monthly Net Profit", d.MonthlyNetProfit},
		{"Monthly Margin", d.MonthlyMargin},
		{"YTD Revenue", d.YTDRevenue},
		{"YTD Expenses", d.YTDExpenses},
		{"YTD Net Profit", d.YTDNetProfit},
		{"YTD Margin", d.YTDMargin},
		{"Cash in Hand", d.CashInHand},
		{"Cash at Bank", d.CashAtBank},
		{"Total Cash", d.TotalCash},
		{"Outstanding Invoices", d.OutstandingInvoices},
		{"Stock Value", d.StockValue},
		{"VAT Payable", d.VATPayable},
		{"Days Sales Outstanding", d.DSO},
	}
	for _, kpi := range kpis {
		w.row(SheetDashboard, r, kpi.label, kpi.value)
		r++
	}
	if d.QuickRatioDefined {
		w.row(SheetDashboard, r, "Quick Ratio", d.QuickRatio)
	} else {
		w.row(SheetDashboard, r, "Quick Ratio", "n/a")
	}
	r += 2

	w.row(SheetDashboard, r, "Month", "Inflow", "Outflow", "Net")
	w.styleRow(SheetDashboard, r, w.headerStyle)
	r++
	for _, m := range d.Trend {
		w.row(SheetDashboard, r, m.Month.String(), m.Inflow, m.Outflow, m.Net)
		r++
	}
	w.widths(SheetDashboard, 4, 22)
}

func (w *writer) revenue(snap *views.Snapshot) {
	w.sheet(SheetRevenue)
	rev := snap.Revenue
	r := w.title(SheetRevenue, "Revenue Summary", snap)

	w.row(SheetRevenue, r, "Today", rev.Today)
	w.row(SheetRevenue, r+1, "This Month", rev.ThisMonth)
	w.row(SheetRevenue, r+2, "Year to Date", rev.YTD)
	r += 4

	w.row(SheetRevenue, r, "Invoice", "Date", "Event Date", "Customer", "Subtotal", "VAT", "Total", "Received", "Balance", "Status")
	w.styleRow(SheetRevenue, r, w.headerStyle)
	r++
	for _, row := range rev.Rows {
		w.row(SheetRevenue, r,
			row.InvoiceID,
			row.InvoiceDate.Format("2006-01-02"),
			row.EventDate.Format("2006-01-02"),
			row.CustomerName,
			row.Subtotal,
			row.VATAmount,
			row.Total,
			row.Received,
			row.Balance,
			string(row.PaymentStatus),
		)
		r++
	}
	w.row(SheetRevenue, r, "Total", "", "", "", "", "", rev.TotalInvoiced, rev.TotalReceived, rev.TotalOutstanding)
	w.styleRow(SheetRevenue, r, w.headerStyle)
	w.widths(SheetRevenue, 10, 16)
}

func (w *writer) debtors(snap *views.Snapshot) {
	w.sheet(SheetDebtors)
	d := snap.Debtors
	r := w.title(SheetDebtors, "Accounts Receivable Aging", snap)

	w.row(SheetDebtors, r, "Invoice", "Date", "Due", "Customer", "Owed", "Days", "Bucket")
	w.styleRow(SheetDebtors, r, w.headerStyle)
	r++
	for _, row := range d.Rows {
		w.row(SheetDebtors, r,
			row.InvoiceID,
			row.InvoiceDate.Format("2006-01-02"),
			row.DueDate.Format("2006-01-02"),
			row.CustomerName,
			row.AmountOwed,
			row.DaysOutstanding,
			string(row.Bucket),
		)
		r++
	}
	r++
	w.row(SheetDebtors, r, "Current", d.Current)
	w.row(SheetDebtors, r+1, "Due Soon", d.DueSoon)
	w.row(SheetDebtors, r+2, "Overdue", d.Overdue)
	w.row(SheetDebtors, r+3, "Total Outstanding", d.TotalOutstanding)
	w.widths(SheetDebtors, 7, 16)
}

func (w *writer) cash(snap *views.Snapshot) {
	w.sheet(SheetCash)
	c := snap.Cash
	r := w.title(SheetCash, "Cash Position", snap)

	w.row(SheetCash, r, "", "Cash in Hand", "Cash at Bank")
	w.styleRow(SheetCash, r, w.headerStyle)
	w.row(SheetCash, r+1, "Opening", c.OpeningHand, c.OpeningBank)
	w.row(SheetCash, r+2, "Receipts", c.HandReceipts, c.BankReceipts)
	w.row(SheetCash, r+3, "Payments", c.HandPayments, c.BankPayments)
	w.row(SheetCash, r+4, "Closing", c.ClosingHand, c.ClosingBank)
	w.row(SheetCash, r+6, "Total Cash", c.TotalCash)
	w.widths(SheetCash, 3, 18)
}

func (w *writer) bankRec(snap *views.Snapshot) {
	w.sheet(SheetBankRec)
	b := snap.BankRec
	r := w.title(SheetBankRec, "Bank Reconciliation", snap)

	w.row(SheetBankRec, r, "Statement Balance", b.StatementBalance)
	w.row(SheetBankRec, r+1, "Outstanding Deposits", b.OutstandingDeposits)
	w.row(SheetBankRec, r+2, "Outstanding Checks", b.OutstandingChecks)
	w.row(SheetBankRec, r+3, "Adjusted Balance", b.AdjustedBalance)
	w.row(SheetBankRec, r+4, "Book Balance", b.BookBalance)
	w.row(SheetBankRec, r+5, "Difference", b.Difference)
	if b.Balanced {
		w.row(SheetBankRec, r+6, "Status", "Reconciled")
	} else {
		w.row(SheetBankRec, r+6, "Status", "NOT RECONCILED")
	}
	w.widths(SheetBankRec, 2, 22)
}

func (w *writer) profitAndLoss(snap *views.Snapshot) {
	w.sheet(SheetPL)
	p := snap.ProfitAndLoss
	r := w.title(SheetPL, "Profit & Loss Statement", snap)

	w.row(SheetPL, r, "", "This Month", "Year to Date")
	w.styleRow(SheetPL, r, w.headerStyle)
	w.row(SheetPL, r+1, "Revenue", p.ThisMonth.Revenue, p.YTD.Revenue)
	w.row(SheetPL, r+2, "Cost of Services", p.ThisMonth.CostOfServices, p.YTD.CostOfServices)
	w.row(SheetPL, r+3, "Gross Profit", p.ThisMonth.GrossProfit, p.YTD.GrossProfit)
	r += 5

	w.row(SheetPL, r, "Operating Expenses")
	w.styleRow(SheetPL, r, w.headerStyle)
	r++
	for _, line := range p.OperatingLines {
		w.row(SheetPL, r, line.Category, line.ThisMonth, line.YTD)
		r++
	}
	w.row(SheetPL, r, "Total Operating", p.ThisMonth.OperatingExpenses, p.YTD.OperatingExpenses)
	w.row(SheetPL, r+1, "Net Income", p.ThisMonth.NetIncome, p.YTD.NetIncome)
	w.row(SheetPL, r+2, "Net Margin", p.ThisMonth.NetMargin, p.YTD.NetMargin)
	w.widths(SheetPL, 3, 20)
}

func (w *writer) balanceSheet(snap *views.Snapshot) {
	w.sheet(SheetBalanceSheet)
	b := snap.BalanceSheet
	r := w.title(SheetBalanceSheet, "Balance Sheet", snap)

	w.row(SheetBalanceSheet, r, "Assets")
	w.styleRow(SheetBalanceSheet, r, w.headerStyle)
	w.row(SheetBalanceSheet, r+1, "Cash in Hand", b.CashInHand)
	w.row(SheetBalanceSheet, r+2, "Cash at Bank", b.CashAtBank)
	w.row(SheetBalanceSheet, r+3, "Accounts Receivable", b.AccountsReceivable)
	w.row(SheetBalanceSheet, r+4, "Total Current Assets", b.TotalCurrentAssets)
	w.row(SheetBalanceSheet, r+5, "Inventory", b.InventoryValue)
	w.row(SheetBalanceSheet, r+6, "Total Fixed Assets", b.TotalFixedAssets)
	w.row(SheetBalanceSheet, r+7, "Total Assets", b.TotalAssets)
	r += 9

	w.row(SheetBalanceSheet, r, "Liabilities")
	w.styleRow(SheetBalanceSheet, r, w.headerStyle)
	w.row(SheetBalanceSheet, r+1, "Accounts Payable", b.AccountsPayable)
	w.row(SheetBalanceSheet, r+2, "VAT Payable", b.VATPayable)
	w.row(SheetBalanceSheet, r+3, "Total Liabilities", b.TotalLiabilities)
	r += 5

	w.row(SheetBalanceSheet, r, "Equity")
	w.styleRow(SheetBalanceSheet, r, w.headerStyle)
	w.row(SheetBalanceSheet, r+1, "Opening Capital", b.OpeningCapital)
	w.row(SheetBalanceSheet, r+2, "Retained Earnings", b.RetainedEarnings)
	w.row(SheetBalanceSheet, r+3, "Total Equity", b.TotalEquity)
	w.row(SheetBalanceSheet, r+4, "Total Liabilities & Equity", b.TotalLiabilitiesAndEquity)
	r += 6

	w.row(SheetBalanceSheet, r, "Difference", b.Difference)
	if b.Balanced {
		w.row(SheetBalanceSheet, r+1, "Status", "Balanced")
	} else {
		w.row(SheetBalanceSheet, r+1, "Status", "OUT OF BALANCE")
	}
	w.widths(SheetBalanceSheet, 2, 24)
}

func (w *writer) taxSummary(snap *views.Snapshot) {
	w.sheet(SheetTax)
	t := snap.Tax
	r := w.title(SheetTax, "Tax Summary", snap)

	w.row(SheetTax, r, "Total Invoiced", t.TotalInvoiced)
	w.row(SheetTax, r+1, "Total Received", t.TotalReceived)
	w.row(SheetTax, r+2, "Outstanding Receivables", t.OutstandingReceivables)
	w.row(SheetTax, r+3, "VAT Collected", t.VATCollected)
	w.row(SheetTax, r+4, "VAT Paid", t.VATPaid)
	w.row(SheetTax, r+5, "Net VAT Payable", t.NetVATPayable)
	r += 7

	w.row(SheetTax, r, "Deductible Expenses")
	w.styleRow(SheetTax, r, w.headerStyle)
	r++
	for _, c := range t.DeductibleExpenses {
		w.row(SheetTax, r, c.Category, c.Amount)
		r++
	}
	w.row(SheetTax, r, "Total Expenses", t.TotalExpenses)
	w.row(SheetTax, r+1, "Net Profit Before Tax", t.NetProfitBeforeTax)
	w.row(SheetTax, r+2, "Profit Margin", t.ProfitMargin)
	w.widths(SheetTax, 2, 24)
}

func (w *writer) customers(snap *views.Snapshot) {
	w.sheet(SheetCustomers)
	r := w.title(SheetCustomers, "Customer Accounts", snap)

	w.row(SheetCustomers, r, "ID", "Name", "Invoiced", "Paid", "Balance", "Status")
	w.styleRow(SheetCustomers, r, w.headerStyle)
	r++
	for _, a := range snap.Customers {
		w.row(SheetCustomers, r, a.CustomerID, a.Name, a.TotalInvoiced, a.TotalPaid, a.Balance, string(a.Status))
		r++
	}
	w.widths(SheetCustomers, 6, 16)
}

func (w *writer) vendors(snap *views.Snapshot) {
	w.sheet(SheetVendors)
	r := w.title(SheetVendors, "Vendor Accounts", snap)

	w.row(SheetVendors, r, "ID", "Name", "Purchased", "Paid", "Owed")
	w.styleRow(SheetVendors, r, w.headerStyle)
	r++
	for _, a := range snap.Vendors {
		w.row(SheetVendors, r, a.VendorID, a.Name, a.TotalPurchased, a.TotalPaid, a.BalanceOwed)
		r++
	}
	w.widths(SheetVendors, 5, 16)
}

func (w *writer) inventory(snap *views.Snapshot) {
	w.sheet(SheetInventory)
	inv := snap.Inventory
	r := w.title(SheetInventory, "Inventory", snap)

	w.row(SheetInventory, r, "ID", "Description", "Unit Price", "In Store", "Rented Out", "In Transit", "Quantity", "Value")
	w.styleRow(SheetInventory, r, w.headerStyle)
	r++
	for _, ln := range inv.Lines {
		w.row(SheetInventory, r,
			ln.ItemID,
			ln.Description,
			ln.UnitPrice,
			ln.InStore,
			ln.RentedOut,
			ln.InTransit,
			ln.TotalQuantity,
			ln.TotalValue,
		)
		r++
	}
	w.row(SheetInventory, r, "Total", "", "", inv.InStore, inv.RentedOut, inv.InTransit, "", inv.TotalValue)
	w.styleRow(SheetInventory, r, w.headerStyle)
	w.widths(SheetInventory, 8, 16)
}
