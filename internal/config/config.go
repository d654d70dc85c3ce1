// Package config loads a books file: the YAML document holding company
// settings, records and the bank statement that the CLI restores a
// working set from.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/flashillumination/flashbooks/internal/ledger"
)

// Decimal wraps decimal.Decimal for YAML decoding. Amounts in books
// files are written as scalars ("1234.50") and parsed exactly; no
// float conversion happens on the way in.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalYAML(node *yaml.Node) error {
	v, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", node.Line, node.Value, err)
	}
	d.Decimal = v
	return nil
}

// Date wraps time.Time for YAML decoding in 2006-01-02 form.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	t, err := time.ParseInLocation("2006-01-02", node.Value, time.UTC)
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q (want YYYY-MM-DD)", node.Line, node.Value)
	}
	d.Time = t
	return nil
}

// Books is a parsed books file.
type Books struct {
	Company   Company    `yaml:"company"`
	Customers []Customer `yaml:"customers,omitempty"`
	Vendors   []Vendor   `yaml:"vendors,omitempty"`
	Invoices  []Invoice  `yaml:"invoices,omitempty"`
	Expenses  []Expense  `yaml:"expenses,omitempty"`
	Inventory []Item     `yaml:"inventory,omitempty"`
	Statement *Statement `yaml:"bank_statement,omitempty"`
}

// Company carries the settings block. Omitted fields fall back to the
// defaults, so a minimal books file needs only a name and a fiscal
// year start.
type Company struct {
	Name            string   `yaml:"name"`
	Tagline         string   `yaml:"tagline,omitempty"`
	Email           string   `yaml:"email,omitempty"`
	Phone           string   `yaml:"phone,omitempty"`
	Address         string   `yaml:"address,omitempty"`
	Website         string   `yaml:"website,omitempty"`
	VATRate         *Decimal `yaml:"vat_rate,omitempty"`
	FiscalYearStart Date     `yaml:"fiscal_year_start"`
	OpeningCashHand *Decimal `yaml:"opening_cash_hand,omitempty"`
	OpeningCashBank *Decimal `yaml:"opening_cash_bank,omitempty"`

	Categories             []string `yaml:"categories,omitempty"`
	PaymentMethods         []string `yaml:"payment_methods,omitempty"`
	CostOfServicesCategory string   `yaml:"cost_of_services_category,omitempty"`
}

type Customer struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Email            string   `yaml:"email,omitempty"`
	Phone            string   `yaml:"phone,omitempty"`
	Address          string   `yaml:"address,omitempty"`
	PaymentTermsDays int      `yaml:"payment_terms_days,omitempty"`
	CreditLimit      *Decimal `yaml:"credit_limit,omitempty"`
	Inactive         bool     `yaml:"inactive,omitempty"`
}

type Vendor struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email,omitempty"`
	Phone   string `yaml:"phone,omitempty"`
	Address string `yaml:"address,omitempty"`
}

type Line struct {
	Description string  `yaml:"description"`
	Quantity    Decimal `yaml:"quantity"`
	UnitPrice   Decimal `yaml:"unit_price"`
}

type Invoice struct {
	ID             string   `yaml:"id"`
	InvoiceDate    Date     `yaml:"invoice_date"`
	EventDate      *Date    `yaml:"event_date,omitempty"`
	CustomerID     string   `yaml:"customer_id"`
	Lines          []Line   `yaml:"lines"`
	VATRate        *Decimal `yaml:"vat_rate,omitempty"`
	ReceiptMethod  string   `yaml:"receipt_method,omitempty"`
	AmountReceived *Decimal `yaml:"amount_received,omitempty"`
}

type Expense struct {
	ID            string   `yaml:"id"`
	Date          Date     `yaml:"date"`
	Category      string   `yaml:"category"`
	VendorID      string   `yaml:"vendor_id,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	Amount        Decimal  `yaml:"amount"`
	AmountPaid    *Decimal `yaml:"amount_paid,omitempty"`
	PaymentMethod string   `yaml:"payment_method"`
	Reference     string   `yaml:"reference,omitempty"`
	VATInclusive  *bool    `yaml:"vat_inclusive,omitempty"` // default true
}

type Item struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	UnitPrice   Decimal `yaml:"unit_price"`
	InStore     int64   `yaml:"in_store,omitempty"`
	RentedOut   int64   `yaml:"rented_out,omitempty"`
	InTransit   int64   `yaml:"in_transit,omitempty"`
}

type StatementItem struct {
	Date        *Date   `yaml:"date,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Amount      Decimal `yaml:"amount"`
}

type Statement struct {
	StatementBalance    Decimal         `yaml:"statement_balance"`
	OutstandingDeposits []StatementItem `yaml:"outstanding_deposits,omitempty"`
	OutstandingChecks   []StatementItem `yaml:"outstanding_checks,omitempty"`
}

// Load reads and parses a books file. Unknown fields are rejected so a
// typo fails loudly instead of silently dropping records.
func Load(path string) (*Books, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read books file: %w", err)
	}
	return Parse(data)
}

// Parse parses books file bytes.
func Parse(data []byte) (*Books, error) {
	var b Books
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("parse books file: %w", err)
	}

	if b.Company.Name == "" {
		return nil, fmt.Errorf("invalid books file: company.name is required")
	}
	if b.Company.FiscalYearStart.IsZero() {
		return nil, fmt.Errorf("invalid books file: company.fiscal_year_start is required")
	}
	return &b, nil
}

// Settings converts the company block, filling defaults for omitted
// fields.
func (b *Books) Settings() ledger.Settings {
	s := ledger.DefaultSettings()
	s.CompanyName = b.Company.Name
	s.Tagline = b.Company.Tagline
	s.Email = b.Company.Email
	s.Phone = b.Company.Phone
	s.Address = b.Company.Address
	s.Website = b.Company.Website
	s.FiscalYearStart = b.Company.FiscalYearStart.Time

	if b.Company.VATRate != nil {
		s.VATRate = b.Company.VATRate.Decimal
	}
	if b.Company.OpeningCashHand != nil {
		s.OpeningCashHand = b.Company.OpeningCashHand.Decimal
	}
	if b.Company.OpeningCashBank != nil {
		s.OpeningCashBank = b.Company.OpeningCashBank.Decimal
	}
	if len(b.Company.Categories) > 0 {
		s.Categories = append([]string(nil), b.Company.Categories...)
	}
	if len(b.Company.PaymentMethods) > 0 {
		s.PaymentMethods = append([]string(nil), b.Company.PaymentMethods...)
	}
	if b.Company.CostOfServicesCategory != "" {
		s.CostOfServicesCategory = b.Company.CostOfServicesCategory
	}
	return s
}

// Mutations converts the record sections into the create mutations
// that restore them, in dependency order: counterparties first, then
// the documents that reference them, then the statement.
func (b *Books) Mutations() []ledger.Mutation {
	var out []ledger.Mutation

	for _, c := range b.Customers {
		cust := ledger.Customer{
			ID:               c.ID,
			Name:             c.Name,
			Email:            c.Email,
			Phone:            c.Phone,
			Address:          c.Address,
			PaymentTermsDays: c.PaymentTermsDays,
			Inactive:         c.Inactive,
		}
		if c.CreditLimit != nil {
			cust.CreditLimit = c.CreditLimit.Decimal
		}
		out = append(out, ledger.Mutation{
			Entity:   ledger.EntityCustomer,
			Op:       ledger.OpCreate,
			Customer: &cust,
		})
	}

	for _, v := range b.Vendors {
		out = append(out, ledger.Mutation{
			Entity: ledger.EntityVendor,
			Op:     ledger.OpCreate,
			Vendor: &ledger.Vendor{
				ID:      v.ID,
				Name:    v.Name,
				Email:   v.Email,
				Phone:   v.Phone,
				Address: v.Address,
			},
		})
	}

	for _, it := range b.Inventory {
		out = append(out, ledger.Mutation{
			Entity: ledger.EntityInventoryItem,
			Op:     ledger.OpCreate,
			Item: &ledger.InventoryItem{
				ID:                it.ID,
				Description:       it.Description,
				UnitPrice:         it.UnitPrice.Decimal,
				QuantityInStore:   it.InStore,
				QuantityRentedOut: it.RentedOut,
				QuantityInTransit: it.InTransit,
			},
		})
	}

	for _, inv := range b.Invoices {
		lines := make([]ledger.LineItem, 0, len(inv.Lines))
		for _, ln := range inv.Lines {
			lines = append(lines, ledger.LineItem{
				Description: ln.Description,
				Quantity:    ln.Quantity.Decimal,
				UnitPrice:   ln.UnitPrice.Decimal,
			})
		}
		rec := ledger.Invoice{
			ID:            inv.ID,
			InvoiceDate:   inv.InvoiceDate.Time,
			CustomerID:    inv.CustomerID,
			Lines:         lines,
			ReceiptMethod: inv.ReceiptMethod,
		}
		if inv.EventDate != nil {
			rec.EventDate = inv.EventDate.Time
		}
		if inv.VATRate != nil {
			r := inv.VATRate.Decimal
			rec.VATRate = &r
		}
		if inv.AmountReceived != nil {
			rec.AmountReceived = inv.AmountReceived.Decimal
		}
		out = append(out, ledger.Mutation{
			Entity:  ledger.EntityInvoice,
			Op:      ledger.OpCreate,
			Invoice: &rec,
		})
	}

	for _, e := range b.Expenses {
		rec := ledger.Expense{
			ID:            e.ID,
			Date:          e.Date.Time,
			Category:      e.Category,
			VendorID:      e.VendorID,
			Description:   e.Description,
			Amount:        e.Amount.Decimal,
			PaymentMethod: e.PaymentMethod,
			Reference:     e.Reference,
			VATInclusive:  e.VATInclusive == nil || *e.VATInclusive,
		}
		if e.AmountPaid != nil {
			p := e.AmountPaid.Decimal
			rec.AmountPaid = &p
		}
		out = append(out, ledger.Mutation{
			Entity:  ledger.EntityExpense,
			Op:      ledger.OpCreate,
			Expense: &rec,
		})
	}

	if b.Statement != nil {
		toItem := func(it StatementItem) ledger.StatementItem {
			rec := ledger.StatementItem{Description: it.Description, Amount: it.Amount.Decimal}
			if it.Date != nil {
				rec.Date = it.Date.Time
			}
			return rec
		}
		deposits := make([]ledger.StatementItem, 0, len(b.Statement.OutstandingDeposits))
		for _, d := range b.Statement.OutstandingDeposits {
			deposits = append(deposits, toItem(d))
		}
		checks := make([]ledger.StatementItem, 0, len(b.Statement.OutstandingChecks))
		for _, c := range b.Statement.OutstandingChecks {
			checks = append(checks, toItem(c))
		}
		out = append(out, ledger.Mutation{
			Entity: ledger.EntityBankStatement,
			Op:     ledger.OpUpdate,
			Statement: &ledger.BankStatement{
				StatementBalance:    b.Statement.StatementBalance.Decimal,
				OutstandingDeposits: deposits,
				OutstandingChecks:   checks,
			},
		})
	}

	return out
}

// Restore builds a record store from the books file, applying every
// record in dependency order. Any rejected record fails the whole
// restore; a books file either loads completely or not at all.
func (b *Books) Restore() (*ledger.Store, error) {
	st, err := ledger.NewStore(b.Settings())
	if err != nil {
		return nil, fmt.Errorf("restore books: %w", err)
	}
	for _, m := range b.Mutations() {
		res := st.Apply(m)
		if !res.OK() {
			return nil, fmt.Errorf("restore books: %s %s %s: %w",
				m.Op, m.Entity, m.RecordID(), res.Errors[0])
		}
	}
	return st, nil
}
