package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// PaymentMethodCash is the one payment method that moves physical cash.
// Receipts and payments using it land in the "cash in hand" bucket;
// every other method settles through the bank.
const PaymentMethodCash = "Cash"

// Customer is a billable client. Customers referenced by invoices are
// never deleted, only marked Inactive; inactive customers keep their
// history but reject new invoices.
type Customer struct {
	ID               string
	Name             string
	ContactPerson    string
	Email            string
	Phone            string
	Address          string
	City             string
	PaymentTermsDays int
	CreditLimit      decimal.Decimal
	Inactive         bool
}

// Vendor is a supplier referenced by expenses.
type Vendor struct {
	ID               string
	Name             string
	ContactPerson    string
	Email            string
	Phone            string
	Address          string
	City             string
	PaymentTermsDays int
}

// LineItem is one billed line on an invoice.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Amount returns quantity x unit price.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Invoice is a sales invoice. VATRate is stamped from Settings when the
// invoice is created and never recomputed afterwards: changing the
// configured rate must not retroactively alter historical invoices.
type Invoice struct {
	ID          string
	InvoiceDate time.Time
	EventDate   time.Time
	CustomerID  string
	Lines       []LineItem

	// VATRate is nil only on a create payload; the store stamps the
	// current Settings rate before the record is admitted.
	VATRate *decimal.Decimal

	// ReceiptMethod is the payment method of AmountReceived (one of
	// Settings.PaymentMethods). Defaults to bank transfer.
	ReceiptMethod  string
	AmountReceived decimal.Decimal
}

// Subtotal returns the sum of all line amounts.
func (inv Invoice) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range inv.Lines {
		sum = sum.Add(li.Amount())
	}
	return sum
}

// VATAmount returns subtotal x the stamped VAT rate.
func (inv Invoice) VATAmount() decimal.Decimal {
	if inv.VATRate == nil {
		return decimal.Zero
	}
	return inv.Subtotal().Mul(*inv.VATRate)
}

// Total returns subtotal + VAT.
func (inv Invoice) Total() decimal.Decimal {
	return inv.Subtotal().Add(inv.VATAmount())
}

// Balance returns total - amount received. Always derived from the
// current lines and receipts, never cached.
func (inv Invoice) Balance() decimal.Decimal {
	return inv.Total().Sub(inv.AmountReceived)
}

// DueDate returns the invoice date shifted by the customer's payment
// terms. Informational: aging is anchored on the invoice date itself.
func (inv Invoice) DueDate(termsDays int) time.Time {
	return inv.InvoiceDate.AddDate(0, 0, termsDays)
}

// Expense is a recorded purchase or cost.
type Expense struct {
	ID          string
	Date        time.Time
	Category    string
	VendorID    string // optional; must resolve when set
	Description string
	Amount      decimal.Decimal

	// AmountPaid is how much of Amount has been settled. nil means
	// fully paid, matching the common small-business case.
	AmountPaid *decimal.Decimal

	PaymentMethod string
	Reference     string

	// VATInclusive marks a purchase whose amount embeds VAT; the
	// recoverable portion is amount x r/(1+r).
	VATInclusive bool
}

// Paid returns the settled portion of the expense.
func (e Expense) Paid() decimal.Decimal {
	if e.AmountPaid == nil {
		return e.Amount
	}
	return *e.AmountPaid
}

// Outstanding returns the unsettled portion owed to the vendor.
func (e Expense) Outstanding() decimal.Decimal {
	return e.Amount.Sub(e.Paid())
}

// InventoryItem is a stock line. Quantities are whole units split across
// the three locations the business tracks.
type InventoryItem struct {
	ID                string
	Description       string
	UnitPrice         decimal.Decimal
	QuantityInStore   int64
	QuantityRentedOut int64
	QuantityInTransit int64
}

// TotalQuantity returns the unit count across store, rentals and transit.
func (it InventoryItem) TotalQuantity() int64 {
	return it.QuantityInStore + it.QuantityRentedOut + it.QuantityInTransit
}

// TotalValue returns total quantity x unit price.
func (it InventoryItem) TotalValue() decimal.Decimal {
	return decimal.NewFromInt(it.TotalQuantity()).Mul(it.UnitPrice)
}

// StatementItem is one uncleared bank-statement line.
type StatementItem struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// BankStatement carries the externally supplied reconciliation inputs:
// the bank's closing balance plus deposits and checks the bank has not
// cleared yet. A singleton like Settings, updated through the mutation
// API.
type BankStatement struct {
	StatementBalance    decimal.Decimal
	OutstandingDeposits []StatementItem
	OutstandingChecks   []StatementItem
}

// TotalDeposits returns the sum of uncleared deposits.
func (b BankStatement) TotalDeposits() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range b.OutstandingDeposits {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// TotalChecks returns the sum of uncleared checks and payments.
func (b BankStatement) TotalChecks() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range b.OutstandingChecks {
		sum = sum.Add(it.Amount)
	}
	return sum
}

func (b BankStatement) clone() BankStatement {
	out := BankStatement{StatementBalance: b.StatementBalance}
	out.OutstandingDeposits = append([]StatementItem(nil), b.OutstandingDeposits...)
	out.OutstandingChecks = append([]StatementItem(nil), b.OutstandingChecks...)
	return out
}

func (inv Invoice) clone() Invoice {
	out := inv
	out.Lines = append([]LineItem(nil), inv.Lines...)
	if inv.VATRate != nil {
		rate := *inv.VATRate
		out.VATRate = &rate
	}
	return out
}

func (e Expense) clone() Expense {
	out := e
	if e.AmountPaid != nil {
		paid := *e.AmountPaid
		out.AmountPaid = &paid
	}
	return out
}
