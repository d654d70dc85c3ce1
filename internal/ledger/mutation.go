package ledger

// EntityKind names a mutable record kind. Derived views are not listed
// here on purpose: they have no mutation surface at all.
type EntityKind string

const (
	EntityCustomer      EntityKind = "customer"
	EntityVendor        EntityKind = "vendor"
	EntityInvoice       EntityKind = "invoice"
	EntityExpense       EntityKind = "expense"
	EntityInventoryItem EntityKind = "inventory_item"
	EntityBankStatement EntityKind = "bank_statement"
)

// Op is a mutation operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Mutation is one requested change to the record store. Exactly one
// payload field matching Entity should be set; delete needs only the
// payload's ID.
type Mutation struct {
	Entity EntityKind
	Op     Op

	Customer  *Customer
	Vendor    *Vendor
	Invoice   *Invoice
	Expense   *Expense
	Item      *InventoryItem
	Statement *BankStatement
}

// RecordID returns the ID of the payload record, if any.
func (m Mutation) RecordID() string {
	switch {
	case m.Customer != nil:
		return m.Customer.ID
	case m.Vendor != nil:
		return m.Vendor.ID
	case m.Invoice != nil:
		return m.Invoice.ID
	case m.Expense != nil:
		return m.Expense.ID
	case m.Item != nil:
		return m.Item.ID
	}
	return ""
}

// MutationResult reports the outcome of one mutation: the affected
// record ID and the validation errors, if any. An empty Errors slice
// means the mutation was applied.
type MutationResult struct {
	ID     string
	Errors []*ValidationError
}

// OK reports whether the mutation was applied.
func (r MutationResult) OK() bool {
	return len(r.Errors) == 0
}

// Apply validates and applies one mutation. Validation errors reject the
// mutation whole and leave the store untouched.
func (st *Store) Apply(m Mutation) MutationResult {
	res := MutationResult{ID: m.RecordID()}

	switch m.Entity {
	case EntityCustomer:
		res.Errors = st.applyCustomer(m)
	case EntityVendor:
		res.Errors = st.applyVendor(m)
	case EntityInvoice:
		res.Errors = st.applyInvoice(m)
	case EntityExpense:
		res.Errors = st.applyExpense(m)
	case EntityInventoryItem:
		res.Errors = st.applyItem(m)
	case EntityBankStatement:
		res.Errors = st.applyStatement(m)
	default:
		res.Errors = []*ValidationError{
			newError(CodeUnknownEntity, "entity", "unknown entity kind %q", m.Entity),
		}
	}
	return res
}

func (st *Store) applyCustomer(m Mutation) []*ValidationError {
	if m.Op == OpDelete {
		if m.Customer == nil || m.Customer.ID == "" {
			return []*ValidationError{newError(CodeMissingID, "id", "customer ID is required")}
		}
		id := m.Customer.ID
		if _, ok := st.customers[id]; !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "customer %s not found", id)}
		}
		if st.customerReferenced(id) {
			return []*ValidationError{newError(CodeRecordInUse, "id",
				"customer %s is referenced by invoices; deactivate it instead", id)}
		}
		delete(st.customers, id)
		st.customerOrder = removeID(st.customerOrder, id)
		return nil
	}

	if m.Customer == nil {
		return []*ValidationError{newError(CodeInvalidValue, "customer", "customer payload is required")}
	}
	c := *m.Customer

	var errs []*ValidationError
	if c.ID == "" {
		errs = append(errs, newError(CodeMissingID, "id", "customer ID is required"))
	}
	if c.PaymentTermsDays < 0 {
		errs = append(errs, newError(CodeInvalidValue, "payment_terms_days", "payment terms must be >= 0"))
	}
	if c.CreditLimit.IsNegative() {
		errs = append(errs, newError(CodeInvalidValue, "credit_limit", "credit limit must be >= 0"))
	}

	switch m.Op {
	case OpCreate:
		if _, ok := st.customers[c.ID]; ok {
			errs = append(errs, newError(CodeDuplicateID, "id", "customer %s already exists", c.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.customers[c.ID] = &c
		st.customerOrder = append(st.customerOrder, c.ID)
	case OpUpdate:
		if _, ok := st.customers[c.ID]; !ok {
			errs = append(errs, newError(CodeNotFound, "id", "customer %s not found", c.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.customers[c.ID] = &c
	default:
		return []*ValidationError{newError(CodeUnsupportedOp, "op", "unsupported customer op %q", m.Op)}
	}
	return nil
}

func (st *Store) applyVendor(m Mutation) []*ValidationError {
	if m.Op == OpDelete {
		if m.Vendor == nil || m.Vendor.ID == "" {
			return []*ValidationError{newError(CodeMissingID, "id", "vendor ID is required")}
		}
		id := m.Vendor.ID
		if _, ok := st.vendors[id]; !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "vendor %s not found", id)}
		}
		if st.vendorReferenced(id) {
			return []*ValidationError{newError(CodeRecordInUse, "id",
				"vendor %s is referenced by expenses", id)}
		}
		delete(st.vendors, id)
		st.vendorOrder = removeID(st.vendorOrder, id)
		return nil
	}

	if m.Vendor == nil {
		return []*ValidationError{newError(CodeInvalidValue, "vendor", "vendor payload is required")}
	}
	v := *m.Vendor

	var errs []*ValidationError
	if v.ID == "" {
		errs = append(errs, newError(CodeMissingID, "id", "vendor ID is required"))
	}
	if v.PaymentTermsDays < 0 {
		errs = append(errs, newError(CodeInvalidValue, "payment_terms_days", "payment terms must be >= 0"))
	}

	switch m.Op {
	case OpCreate:
		if _, ok := st.vendors[v.ID]; ok {
			errs = append(errs, newError(CodeDuplicateID, "id", "vendor %s already exists", v.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.vendors[v.ID] = &v
		st.vendorOrder = append(st.vendorOrder, v.ID)
	case OpUpdate:
		if _, ok := st.vendors[v.ID]; !ok {
			errs = append(errs, newError(CodeNotFound, "id", "vendor %s not found", v.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.vendors[v.ID] = &v
	default:
		return []*ValidationError{newError(CodeUnsupportedOp, "op", "unsupported vendor op %q", m.Op)}
	}
	return nil
}

func (st *Store) validateInvoice(inv Invoice, create bool) []*ValidationError {
	var errs []*ValidationError
	if inv.ID == "" {
		errs = append(errs, newError(CodeMissingID, "id", "invoice ID is required"))
	}
	if inv.InvoiceDate.IsZero() {
		errs = append(errs, newError(CodeInvalidValue, "invoice_date", "invoice date is required"))
	}
	cust, ok := st.customers[inv.CustomerID]
	if !ok {
		errs = append(errs, newError(CodeUnresolvedRef, "customer_id",
			"customer %q does not exist", inv.CustomerID))
	} else if create && cust.Inactive {
		errs = append(errs, newError(CodeInactiveCustomer, "customer_id",
			"customer %s is deactivated; new invoices are rejected", inv.CustomerID))
	}
	if len(inv.Lines) == 0 {
		errs = append(errs, newError(CodeInvalidValue, "lines", "invoice requires at least one line item"))
	}
	for i, li := range inv.Lines {
		if !li.Quantity.IsPositive() {
			errs = append(errs, newError(CodeInvalidValue, "lines",
				"line %d: quantity must be > 0", i+1))
		}
		if li.UnitPrice.IsNegative() {
			errs = append(errs, newError(CodeInvalidValue, "lines",
				"line %d: unit price must be >= 0", i+1))
		}
	}
	if inv.AmountReceived.IsNegative() {
		errs = append(errs, newError(CodeInvalidValue, "amount_received", "amount received must be >= 0"))
	}
	if inv.ReceiptMethod != "" && !st.settings.HasPaymentMethod(inv.ReceiptMethod) {
		errs = append(errs, newError(CodeInvalidPaymentMethod, "receipt_method",
			"payment method %q is not configured", inv.ReceiptMethod))
	}
	if inv.VATRate != nil {
		if inv.VATRate.IsNegative() || inv.VATRate.GreaterThan(one) {
			errs = append(errs, newError(CodeInvalidRate, "vat_rate",
				"VAT rate %s outside [0, 1]", inv.VATRate))
		}
	}
	return errs
}

func (st *Store) applyInvoice(m Mutation) []*ValidationError {
	if m.Op == OpDelete {
		if m.Invoice == nil || m.Invoice.ID == "" {
			return []*ValidationError{newError(CodeMissingID, "id", "invoice ID is required")}
		}
		id := m.Invoice.ID
		if _, ok := st.invoices[id]; !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "invoice %s not found", id)}
		}
		delete(st.invoices, id)
		st.invoiceOrder = removeID(st.invoiceOrder, id)
		return nil
	}

	if m.Invoice == nil {
		return []*ValidationError{newError(CodeInvalidValue, "invoice", "invoice payload is required")}
	}
	inv := m.Invoice.clone()
	if inv.ReceiptMethod == "" {
		inv.ReceiptMethod = DefaultReceiptMethod
	}
	// An event can be billed ahead of or after the day it happens; when
	// the payload leaves the event date unset it is the invoice date.
	if inv.EventDate.IsZero() {
		inv.EventDate = inv.InvoiceDate
	}

	switch m.Op {
	case OpCreate:
		errs := st.validateInvoice(inv, true)
		if _, ok := st.invoices[inv.ID]; ok {
			errs = append(errs, newError(CodeDuplicateID, "id", "invoice %s already exists", inv.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		// Stamp the configured VAT rate at creation time. A payload
		// rate is honored only for dataset restoration; it is never
		// recomputed afterwards.
		if inv.VATRate == nil {
			rate := st.settings.VATRate
			inv.VATRate = &rate
		}
		st.invoices[inv.ID] = &inv
		st.invoiceOrder = append(st.invoiceOrder, inv.ID)
	case OpUpdate:
		prev, ok := st.invoices[inv.ID]
		if !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "invoice %s not found", inv.ID)}
		}
		// The stamped rate survives updates regardless of payload.
		rate := *prev.VATRate
		inv.VATRate = &rate
		if errs := st.validateInvoice(inv, false); len(errs) > 0 {
			return errs
		}
		st.invoices[inv.ID] = &inv
	default:
		return []*ValidationError{newError(CodeUnsupportedOp, "op", "unsupported invoice op %q", m.Op)}
	}
	return nil
}

func (st *Store) validateExpense(e Expense) []*ValidationError {
	var errs []*ValidationError
	if e.ID == "" {
		errs = append(errs, newError(CodeMissingID, "id", "expense ID is required"))
	}
	if e.Date.IsZero() {
		errs = append(errs, newError(CodeInvalidValue, "date", "expense date is required"))
	}
	if !st.settings.HasCategory(e.Category) {
		errs = append(errs, newError(CodeInvalidCategory, "category",
			"category %q is not configured", e.Category))
	}
	if !st.settings.HasPaymentMethod(e.PaymentMethod) {
		errs = append(errs, newError(CodeInvalidPaymentMethod, "payment_method",
			"payment method %q is not configured", e.PaymentMethod))
	}
	if e.VendorID != "" {
		if _, ok := st.vendors[e.VendorID]; !ok {
			errs = append(errs, newError(CodeUnresolvedRef, "vendor_id",
				"vendor %q does not exist", e.VendorID))
		}
	}
	if e.Amount.IsNegative() {
		errs = append(errs, newError(CodeInvalidValue, "amount", "amount must be >= 0"))
	}
	if e.AmountPaid != nil {
		if e.AmountPaid.IsNegative() {
			errs = append(errs, newError(CodeInvalidValue, "amount_paid", "amount paid must be >= 0"))
		} else if e.AmountPaid.GreaterThan(e.Amount) {
			errs = append(errs, newError(CodeInvalidValue, "amount_paid", "amount paid exceeds amount"))
		}
	}
	return errs
}

func (st *Store) applyExpense(m Mutation) []*ValidationError {
	if m.Op == OpDelete {
		if m.Expense == nil || m.Expense.ID == "" {
			return []*ValidationError{newError(CodeMissingID, "id", "expense ID is required")}
		}
		id := m.Expense.ID
		if _, ok := st.expenses[id]; !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "expense %s not found", id)}
		}
		delete(st.expenses, id)
		st.expenseOrder = removeID(st.expenseOrder, id)
		return nil
	}

	if m.Expense == nil {
		return []*ValidationError{newError(CodeInvalidValue, "expense", "expense payload is required")}
	}
	e := m.Expense.clone()

	switch m.Op {
	case OpCreate:
		errs := st.validateExpense(e)
		if _, ok := st.expenses[e.ID]; ok {
			errs = append(errs, newError(CodeDuplicateID, "id", "expense %s already exists", e.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.expenses[e.ID] = &e
		st.expenseOrder = append(st.expenseOrder, e.ID)
	case OpUpdate:
		if _, ok := st.expenses[e.ID]; !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "expense %s not found", e.ID)}
		}
		if errs := st.validateExpense(e); len(errs) > 0 {
			return errs
		}
		st.expenses[e.ID] = &e
	default:
		return []*ValidationError{newError(CodeUnsupportedOp, "op", "unsupported expense op %q", m.Op)}
	}
	return nil
}

func (st *Store) applyItem(m Mutation) []*ValidationError {
	if m.Op == OpDelete {
		if m.Item == nil || m.Item.ID == "" {
			return []*ValidationError{newError(CodeMissingID, "id", "inventory item ID is required")}
		}
		id := m.Item.ID
		if _, ok := st.items[id]; !ok {
			return []*ValidationError{newError(CodeNotFound, "id", "inventory item %s not found", id)}
		}
		delete(st.items, id)
		st.itemOrder = removeID(st.itemOrder, id)
		return nil
	}

	if m.Item == nil {
		return []*ValidationError{newError(CodeInvalidValue, "item", "inventory item payload is required")}
	}
	it := *m.Item

	var errs []*ValidationError
	if it.ID == "" {
		errs = append(errs, newError(CodeMissingID, "id", "inventory item ID is required"))
	}
	if it.UnitPrice.IsNegative() {
		errs = append(errs, newError(CodeInvalidValue, "unit_price", "unit price must be >= 0"))
	}
	if it.QuantityInStore < 0 || it.QuantityRentedOut < 0 || it.QuantityInTransit < 0 {
		errs = append(errs, newError(CodeInvalidValue, "quantity", "quantities must be >= 0"))
	}

	switch m.Op {
	case OpCreate:
		if _, ok := st.items[it.ID]; ok {
			errs = append(errs, newError(CodeDuplicateID, "id", "inventory item %s already exists", it.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.items[it.ID] = &it
		st.itemOrder = append(st.itemOrder, it.ID)
	case OpUpdate:
		if _, ok := st.items[it.ID]; !ok {
			errs = append(errs, newError(CodeNotFound, "id", "inventory item %s not found", it.ID))
		}
		if len(errs) > 0 {
			return errs
		}
		st.items[it.ID] = &it
	default:
		return []*ValidationError{newError(CodeUnsupportedOp, "op", "unsupported inventory op %q", m.Op)}
	}
	return nil
}

func (st *Store) applyStatement(m Mutation) []*ValidationError {
	// The statement is a singleton: update is the only operation.
	if m.Op != OpUpdate {
		return []*ValidationError{newError(CodeUnsupportedOp, "op",
			"bank statement supports update only, got %q", m.Op)}
	}
	if m.Statement == nil {
		return []*ValidationError{newError(CodeInvalidValue, "statement", "statement payload is required")}
	}
	b := m.Statement.clone()

	var errs []*ValidationError
	for i, it := range b.OutstandingDeposits {
		if it.Amount.IsNegative() {
			errs = append(errs, newError(CodeInvalidValue, "outstanding_deposits",
				"deposit %d: amount must be >= 0", i+1))
		}
	}
	for i, it := range b.OutstandingChecks {
		if it.Amount.IsNegative() {
			errs = append(errs, newError(CodeInvalidValue, "outstanding_checks",
				"check %d: amount must be >= 0", i+1))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	st.statement = b
	return nil
}
