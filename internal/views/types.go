package views

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flashillumination/flashbooks/internal/classify"
	"github.com/flashillumination/flashbooks/internal/ledger"
)

// Inputs is the consistent record-store snapshot one recompute pass
// reads. The engine collects it under the single-writer loop, so a pass
// never observes a half-applied mutation.
type Inputs struct {
	Settings  ledger.Settings
	Statement ledger.BankStatement
	Customers []ledger.Customer
	Vendors   []ledger.Vendor
	Invoices  []ledger.Invoice
	Expenses  []ledger.Expense
	Items     []ledger.InventoryItem

	// AsOf is the caller-supplied reference date for aging and KPI
	// computation. Never read from a system clock.
	AsOf time.Time
}

// Collect copies the store's current records into an Inputs value.
func Collect(st *ledger.Store, asOf time.Time) Inputs {
	return Inputs{
		Settings:  st.Settings(),
		Statement: st.Statement(),
		Customers: st.Customers(),
		Vendors:   st.Vendors(),
		Invoices:  st.Invoices(),
		Expenses:  st.Expenses(),
		Items:     st.Items(),
		AsOf:      asOf,
	}
}

// InvoiceRow is one invoice projected into the revenue summary.
type InvoiceRow struct {
	InvoiceID     string
	InvoiceDate   time.Time
	EventDate     time.Time
	CustomerID    string
	CustomerName  string
	Subtotal      decimal.Decimal
	VATAmount     decimal.Decimal
	Total         decimal.Decimal
	Received      decimal.Decimal
	Balance       decimal.Decimal
	PaymentStatus classify.PaymentStatus
}

// MonthRevenue is one calendar month's invoiced and received totals.
type MonthRevenue struct {
	Month    time.Month
	Invoiced decimal.Decimal
	Received decimal.Decimal
}

// RevenueSummary groups invoice revenue by day, month and year relative
// to the as-of date. Received figures key on the invoice date.
type RevenueSummary struct {
	Rows []InvoiceRow

	Today     decimal.Decimal
	ThisMonth decimal.Decimal
	YTD       decimal.Decimal

	// Monthly is the Jan through Dec breakdown for the as-of year.
	Monthly []MonthRevenue

	TotalInvoiced    decimal.Decimal
	TotalReceived    decimal.Decimal
	TotalOutstanding decimal.Decimal
}

// CustomerAccount is the per-customer derived totals and standing.
type CustomerAccount struct {
	CustomerID    string
	Name          string
	TotalInvoiced decimal.Decimal
	TotalPaid     decimal.Decimal
	Balance       decimal.Decimal
	Status        classify.AccountStatus
}

// VendorAccount is the per-vendor derived totals.
type VendorAccount struct {
	VendorID       string
	Name           string
	TotalPurchased decimal.Decimal
	TotalPaid      decimal.Decimal
	BalanceOwed    decimal.Decimal
}

// InventoryLine is one stock item with derived quantity and value.
type InventoryLine struct {
	ItemID        string
	Description   string
	UnitPrice     decimal.Decimal
	InStore       int64
	RentedOut     int64
	InTransit     int64
	TotalQuantity int64
	TotalValue    decimal.Decimal
}

// InventorySummary is the stock report.
type InventorySummary struct {
	Lines      []InventoryLine
	InStore    int64
	RentedOut  int64
	InTransit  int64
	TotalValue decimal.Decimal
}

// CashPosition splits cash movement into the hand and bank ledgers.
// Receipts and payments cover [fiscal year start, as-of].
type CashPosition struct {
	OpeningHand  decimal.Decimal
	HandReceipts decimal.Decimal
	HandPayments decimal.Decimal
	ClosingHand  decimal.Decimal

	OpeningBank  decimal.Decimal
	BankReceipts decimal.Decimal
	BankPayments decimal.Decimal
	ClosingBank  decimal.Decimal

	TotalCash decimal.Decimal
}

// DebtorRow is one unpaid invoice in the receivables aging report.
type DebtorRow struct {
	InvoiceID       string
	InvoiceDate     time.Time
	EventDate       time.Time
	DueDate         time.Time
	CustomerID      string
	CustomerName    string
	AmountOwed      decimal.Decimal
	DaysOutstanding int
	Bucket          classify.Bucket
}

// TradeDebtors is the accounts-receivable aging view. Fully paid
// invoices never appear here.
type TradeDebtors struct {
	Rows []DebtorRow

	TotalOutstanding decimal.Decimal
	Current          decimal.Decimal
	DueSoon          decimal.Decimal
	Overdue          decimal.Decimal
}

// CategoryTotal is one expense category's spend this month and year to
// date.
type CategoryTotal struct {
	Category  string
	ThisMonth decimal.Decimal
	YTD       decimal.Decimal
}

// BankReconciliation compares the adjusted statement balance against
// the book's bank ledger.
type BankReconciliation struct {
	StatementBalance    decimal.Decimal
	OutstandingDeposits decimal.Decimal
	OutstandingChecks   decimal.Decimal
	AdjustedBalance     decimal.Decimal
	BookBalance         decimal.Decimal
	Difference          decimal.Decimal
	Balanced            bool
}

// PLTotals is one P&L column (this month or year to date).
type PLTotals struct {
	Revenue           decimal.Decimal
	CostOfServices    decimal.Decimal
	GrossProfit       decimal.Decimal
	OperatingExpenses decimal.Decimal
	NetIncome         decimal.Decimal
	NetMargin         decimal.Decimal // 0 when revenue is 0
}

// PLLine is one operating-expense category on the P&L.
type PLLine struct {
	Category  string
	ThisMonth decimal.Decimal
	YTD       decimal.Decimal
}

// ProfitAndLoss is the income statement, computed for the as-of month
// and the fiscal year to date. Revenue is on a received basis.
type ProfitAndLoss struct {
	OperatingLines []PLLine
	ThisMonth      PLTotals
	YTD            PLTotals
}

// MonthFlow is one month of the calendar-year trend.
type MonthFlow struct {
	Month    time.Month
	Inflow   decimal.Decimal
	Outflow  decimal.Decimal
	Net      decimal.Decimal
}

// DashboardKPIs is the business-health overview.
type DashboardKPIs struct {
	MonthlyRevenue   decimal.Decimal
	MonthlyExpenses  decimal.Decimal
	MonthlyNetProfit decimal.Decimal
	MonthlyMargin    decimal.Decimal

	YTDRevenue   decimal.Decimal
	YTDExpenses  decimal.Decimal
	YTDNetProfit decimal.Decimal
	YTDMargin    decimal.Decimal

	CashInHand decimal.Decimal
	CashAtBank decimal.Decimal
	TotalCash  decimal.Decimal

	OutstandingInvoices decimal.Decimal
	StockValue          decimal.Decimal
	VATPayable          decimal.Decimal

	// DSO is days sales outstanding, 0 when YTD revenue is 0.
	DSO decimal.Decimal

	// QuickRatio is (cash + receivables) / current liabilities.
	// QuickRatioDefined is false when current liabilities are 0; the
	// ratio is then reported as 0 rather than raising.
	QuickRatio        decimal.Decimal
	QuickRatioDefined bool

	Trend []MonthFlow
}

// TaxSummary is the end-of-fiscal-year VAT and profit report.
type TaxSummary struct {
	TotalInvoiced          decimal.Decimal
	TotalReceived          decimal.Decimal
	OutstandingReceivables decimal.Decimal

	VATCollected  decimal.Decimal
	VATPaid       decimal.Decimal
	NetVATPayable decimal.Decimal

	DeductibleExpenses []CategoryAmount
	TotalExpenses      decimal.Decimal

	NetProfitBeforeTax decimal.Decimal
	ProfitMargin       decimal.Decimal // 0 when received revenue is 0
}

// CategoryAmount is one category's fiscal-year deductible total.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// BalanceSheet is the statement of financial position as of the
// reference date.
type BalanceSheet struct {
	CashInHand         decimal.Decimal
	CashAtBank         decimal.Decimal
	AccountsReceivable decimal.Decimal
	TotalCurrentAssets decimal.Decimal
	InventoryValue     decimal.Decimal
	TotalFixedAssets   decimal.Decimal
	TotalAssets        decimal.Decimal

	AccountsPayable  decimal.Decimal
	VATPayable       decimal.Decimal
	TotalLiabilities decimal.Decimal

	OpeningCapital   decimal.Decimal
	RetainedEarnings decimal.Decimal
	TotalEquity      decimal.Decimal

	TotalLiabilitiesAndEquity decimal.Decimal

	// Difference is assets - (liabilities + equity); Balanced is the
	// within-epsilon test on it.
	Difference decimal.Decimal
	Balanced   bool
}

// WarningCode categorizes reconciliation warnings.
type WarningCode string

const (
	// WarnBalanceMismatch: the balance sheet does not balance.
	WarnBalanceMismatch WarningCode = "BALANCE_MISMATCH"

	// WarnUnreconciled: the bank reconciliation difference is nonzero.
	WarnUnreconciled WarningCode = "UNRECONCILED"

	// WarnDanglingReference: a record references a missing counterpart.
	WarnDanglingReference WarningCode = "DANGLING_REFERENCE"
)

// Warning is a non-fatal cross-view finding. Warnings ride on the
// snapshot for the report layer to surface; they never abort a
// recompute and persist in every snapshot until their condition clears.
type Warning struct {
	Code       WarningCode
	Message    string
	Difference decimal.Decimal
}

// Snapshot is one complete, immutable recompute result. Callers always
// observe a whole snapshot: the previous one or the next one, never an
// interleaving.
type Snapshot struct {
	Revision int64
	AsOf     time.Time
	Settings ledger.Settings

	Revenue   RevenueSummary
	Customers []CustomerAccount
	Vendors   []VendorAccount
	Inventory InventorySummary

	Cash               CashPosition
	Debtors            TradeDebtors
	ExpensesByCategory []CategoryTotal

	BankRec       BankReconciliation
	ProfitAndLoss ProfitAndLoss
	Dashboard     DashboardKPIs

	Tax          TaxSummary
	BalanceSheet BalanceSheet

	Warnings []Warning
}
