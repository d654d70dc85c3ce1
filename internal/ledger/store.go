package ledger

import "fmt"

// Store is the in-memory record store. All mutation goes through Apply
// and UpdateSettings; accessors hand out deep copies in insertion order
// so reads are stable and isolated.
//
// Not goroutine-safe: the engine's single-writer loop owns it.
type Store struct {
	settings  Settings
	statement BankStatement

	customers     map[string]*Customer
	customerOrder []string
	vendors       map[string]*Vendor
	vendorOrder   []string
	invoices      map[string]*Invoice
	invoiceOrder  []string
	expenses      map[string]*Expense
	expenseOrder  []string
	items         map[string]*InventoryItem
	itemOrder     []string
}

// NewStore creates a store with the given settings. The settings must
// pass structural validation; records are added through Apply.
func NewStore(s Settings) (*Store, error) {
	if errs := s.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid settings: %w", errs[0])
	}
	return &Store{
		settings:  s.Clone(),
		customers: make(map[string]*Customer),
		vendors:   make(map[string]*Vendor),
		invoices:  make(map[string]*Invoice),
		expenses:  make(map[string]*Expense),
		items:     make(map[string]*InventoryItem),
	}, nil
}

// Settings returns a copy of the current settings.
func (st *Store) Settings() Settings {
	return st.settings.Clone()
}

// Statement returns a copy of the current bank statement inputs.
func (st *Store) Statement() BankStatement {
	return st.statement.clone()
}

// Customers returns all customers in insertion order.
func (st *Store) Customers() []Customer {
	out := make([]Customer, 0, len(st.customerOrder))
	for _, id := range st.customerOrder {
		out = append(out, *st.customers[id])
	}
	return out
}

// Vendors returns all vendors in insertion order.
func (st *Store) Vendors() []Vendor {
	out := make([]Vendor, 0, len(st.vendorOrder))
	for _, id := range st.vendorOrder {
		out = append(out, *st.vendors[id])
	}
	return out
}

// Invoices returns deep copies of all invoices in insertion order.
func (st *Store) Invoices() []Invoice {
	out := make([]Invoice, 0, len(st.invoiceOrder))
	for _, id := range st.invoiceOrder {
		out = append(out, st.invoices[id].clone())
	}
	return out
}

// Expenses returns deep copies of all expenses in insertion order.
func (st *Store) Expenses() []Expense {
	out := make([]Expense, 0, len(st.expenseOrder))
	for _, id := range st.expenseOrder {
		out = append(out, st.expenses[id].clone())
	}
	return out
}

// Items returns all inventory items in insertion order.
func (st *Store) Items() []InventoryItem {
	out := make([]InventoryItem, 0, len(st.itemOrder))
	for _, id := range st.itemOrder {
		out = append(out, *st.items[id])
	}
	return out
}

// Customer looks up one customer by ID.
func (st *Store) Customer(id string) (Customer, bool) {
	c, ok := st.customers[id]
	if !ok {
		return Customer{}, false
	}
	return *c, true
}

// Invoice looks up one invoice by ID.
func (st *Store) Invoice(id string) (Invoice, bool) {
	inv, ok := st.invoices[id]
	if !ok {
		return Invoice{}, false
	}
	return inv.clone(), true
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func (st *Store) customerReferenced(id string) bool {
	for _, invID := range st.invoiceOrder {
		if st.invoices[invID].CustomerID == id {
			return true
		}
	}
	return false
}

func (st *Store) vendorReferenced(id string) bool {
	for _, expID := range st.expenseOrder {
		if st.expenses[expID].VendorID == id {
			return true
		}
	}
	return false
}

// UpdateSettings applies a partial settings update. The patched settings
// must pass structural validation, and the new enumerations must still
// cover every value stored records reference: categories and payment
// methods are append-only while in use.
func (st *Store) UpdateSettings(p SettingsPatch) MutationResult {
	next := st.settings.applyPatch(p)

	errs := next.Validate()
	for _, id := range st.expenseOrder {
		e := st.expenses[id]
		if !next.HasCategory(e.Category) {
			errs = append(errs, newError(CodeValueInUse, "categories",
				"category %q is still used by expense %s", e.Category, e.ID))
		}
		if !next.HasPaymentMethod(e.PaymentMethod) {
			errs = append(errs, newError(CodeValueInUse, "payment_methods",
				"payment method %q is still used by expense %s", e.PaymentMethod, e.ID))
		}
	}
	for _, id := range st.invoiceOrder {
		inv := st.invoices[id]
		if inv.ReceiptMethod != "" && !next.HasPaymentMethod(inv.ReceiptMethod) {
			errs = append(errs, newError(CodeValueInUse, "payment_methods",
				"payment method %q is still used by invoice %s", inv.ReceiptMethod, inv.ID))
		}
	}
	if len(errs) > 0 {
		return MutationResult{Errors: errs}
	}

	st.settings = next
	return MutationResult{}
}
