package views

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical serializes a snapshot as canonical JSON: compact,
// keys in sorted order, strings NFC normalized, no HTML escaping, and
// all monetary values rendered as decimal strings. Two recomputes over
// the same records produce byte-identical output, so the encoding is
// what golden tests and idempotence checks compare.
//
// Revision and settings are excluded: they are bookkeeping about the
// snapshot, not derived from the records.
func MarshalCanonical(snap *Snapshot) ([]byte, error) {
	return marshalCanonical(snap.canonicalMap())
}

func canonDate(t time.Time) string { return t.Format("2006-01-02") }
func canonDec(d decimal.Decimal) string { return d.String() }

func (s *Snapshot) canonicalMap() map[string]any {
	return map[string]any{
		"as_of":                s.AsOf.Format("2006-01-02"),
		"revenue":              s.Revenue.canonicalMap(),
		"customers":            customersCanonical(s.Customers),
		"vendors":              vendorsCanonical(s.Vendors),
		"inventory":            s.Inventory.canonicalMap(),
		"cash":                 s.Cash.canonicalMap(),
		"debtors":              s.Debtors.canonicalMap(),
		"expenses_by_category": categoryTotalsCanonical(s.ExpensesByCategory),
		"bank_reconciliation":  s.BankRec.canonicalMap(),
		"profit_and_loss":      s.ProfitAndLoss.canonicalMap(),
		"dashboard":            s.Dashboard.canonicalMap(),
		"tax":                  s.Tax.canonicalMap(),
		"balance_sheet":        s.BalanceSheet.canonicalMap(),
		"warnings":             warningsCanonical(s.Warnings),
	}
}

func (r RevenueSummary) canonicalMap() map[string]any {
	rows := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = map[string]any{
			"invoice_id":     row.InvoiceID,
			"invoice_date":   canonDate(row.InvoiceDate),
			"event_date":     canonDate(row.EventDate),
			"customer_id":    row.CustomerID,
			"customer_name":  row.CustomerName,
			"subtotal":       canonDec(row.Subtotal),
			"vat_amount":     canonDec(row.VATAmount),
			"total":          canonDec(row.Total),
			"received":       canonDec(row.Received),
			"balance":        canonDec(row.Balance),
			"payment_status": string(row.PaymentStatus),
		}
	}
	monthly := make([]any, len(r.Monthly))
	for i, m := range r.Monthly {
		monthly[i] = map[string]any{
			"month":    int(m.Month),
			"invoiced": canonDec(m.Invoiced),
			"received": canonDec(m.Received),
		}
	}
	return map[string]any{
		"rows":              rows,
		"today":             canonDec(r.Today),
		"this_month":        canonDec(r.ThisMonth),
		"ytd":               canonDec(r.YTD),
		"monthly":           monthly,
		"total_invoiced":    canonDec(r.TotalInvoiced),
		"total_received":    canonDec(r.TotalReceived),
		"total_outstanding": canonDec(r.TotalOutstanding),
	}
}

func customersCanonical(accounts []CustomerAccount) []any {
	out := make([]any, len(accounts))
	for i, a := range accounts {
		out[i] = map[string]any{
			"customer_id":    a.CustomerID,
			"name":           a.Name,
			"total_invoiced": canonDec(a.TotalInvoiced),
			"total_paid":     canonDec(a.TotalPaid),
			"balance":        canonDec(a.Balance),
			"status":         string(a.Status),
		}
	}
	return out
}

func vendorsCanonical(accounts []VendorAccount) []any {
	out := make([]any, len(accounts))
	for i, a := range accounts {
		out[i] = map[string]any{
			"vendor_id":       a.VendorID,
			"name":            a.Name,
			"total_purchased": canonDec(a.TotalPurchased),
			"total_paid":      canonDec(a.TotalPaid),
			"balance_owed":    canonDec(a.BalanceOwed),
		}
	}
	return out
}

func (s InventorySummary) canonicalMap() map[string]any {
	lines := make([]any, len(s.Lines))
	for i, ln := range s.Lines {
		lines[i] = map[string]any{
			"item_id":        ln.ItemID,
			"description":    ln.Description,
			"unit_price":     canonDec(ln.UnitPrice),
			"in_store":       ln.InStore,
			"rented_out":     ln.RentedOut,
			"in_transit":     ln.InTransit,
			"total_quantity": ln.TotalQuantity,
			"total_value":    canonDec(ln.TotalValue),
		}
	}
	return map[string]any{
		"lines":       lines,
		"in_store":    s.InStore,
		"rented_out":  s.RentedOut,
		"in_transit":  s.InTransit,
		"total_value": canonDec(s.TotalValue),
	}
}

func (c CashPosition) canonicalMap() map[string]any {
	return map[string]any{
		"opening_hand":  canonDec(c.OpeningHand),
		"hand_receipts": canonDec(c.HandReceipts),
		"hand_payments": canonDec(c.HandPayments),
		"closing_hand":  canonDec(c.ClosingHand),
		"opening_bank":  canonDec(c.OpeningBank),
		"bank_receipts": canonDec(c.BankReceipts),
		"bank_payments": canonDec(c.BankPayments),
		"closing_bank":  canonDec(c.ClosingBank),
		"total_cash":    canonDec(c.TotalCash),
	}
}

func (d TradeDebtors) canonicalMap() map[string]any {
	rows := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = map[string]any{
			"invoice_id":       row.InvoiceID,
			"invoice_date":     canonDate(row.InvoiceDate),
			"event_date":       canonDate(row.EventDate),
			"due_date":         canonDate(row.DueDate),
			"customer_id":      row.CustomerID,
			"customer_name":    row.CustomerName,
			"amount_owed":      canonDec(row.AmountOwed),
			"days_outstanding": row.DaysOutstanding,
			"bucket":           string(row.Bucket),
		}
	}
	return map[string]any{
		"rows":              rows,
		"total_outstanding": canonDec(d.TotalOutstanding),
		"current":           canonDec(d.Current),
		"due_soon":          canonDec(d.DueSoon),
		"overdue":           canonDec(d.Overdue),
	}
}

func categoryTotalsCanonical(totals []CategoryTotal) []any {
	out := make([]any, len(totals))
	for i, t := range totals {
		out[i] = map[string]any{
			"category":   t.Category,
			"this_month": canonDec(t.ThisMonth),
			"ytd":        canonDec(t.YTD),
		}
	}
	return out
}

func (b BankReconciliation) canonicalMap() map[string]any {
	return map[string]any{
		"statement_balance":    canonDec(b.StatementBalance),
		"outstanding_deposits": canonDec(b.OutstandingDeposits),
		"outstanding_checks":   canonDec(b.OutstandingChecks),
		"adjusted_balance":     canonDec(b.AdjustedBalance),
		"book_balance":         canonDec(b.BookBalance),
		"difference":           canonDec(b.Difference),
		"balanced":             b.Balanced,
	}
}

func (t PLTotals) canonicalMap() map[string]any {
	return map[string]any{
		"revenue":            canonDec(t.Revenue),
		"cost_of_services":   canonDec(t.CostOfServices),
		"gross_profit":       canonDec(t.GrossProfit),
		"operating_expenses": canonDec(t.OperatingExpenses),
		"net_income":         canonDec(t.NetIncome),
		"net_margin":         canonDec(t.NetMargin),
	}
}

func (p ProfitAndLoss) canonicalMap() map[string]any {
	lines := make([]any, len(p.OperatingLines))
	for i, ln := range p.OperatingLines {
		lines[i] = map[string]any{
			"category":   ln.Category,
			"this_month": canonDec(ln.ThisMonth),
			"ytd":        canonDec(ln.YTD),
		}
	}
	return map[string]any{
		"operating_lines": lines,
		"this_month":      p.ThisMonth.canonicalMap(),
		"ytd":             p.YTD.canonicalMap(),
	}
}

func (d DashboardKPIs) canonicalMap() map[string]any {
	trend := make([]any, len(d.Trend))
	for i, m := range d.Trend {
		trend[i] = map[string]any{
			"month":   int(m.Month),
			"inflow":  canonDec(m.Inflow),
			"outflow": canonDec(m.Outflow),
			"net":     canonDec(m.Net),
		}
	}
	return map[string]any{
		"monthly_revenue":      canonDec(d.MonthlyRevenue),
		"monthly_expenses":     canonDec(d.MonthlyExpenses),
		"monthly_net_profit":   canonDec(d.MonthlyNetProfit),
		"monthly_margin":       canonDec(d.MonthlyMargin),
		"ytd_revenue":          canonDec(d.YTDRevenue),
		"ytd_expenses":         canonDec(d.YTDExpenses),
		"ytd_net_profit":       canonDec(d.YTDNetProfit),
		"ytd_margin":           canonDec(d.YTDMargin),
		"cash_in_hand":         canonDec(d.CashInHand),
		"cash_at_bank":         canonDec(d.CashAtBank),
		"total_cash":           canonDec(d.TotalCash),
		"outstanding_invoices": canonDec(d.OutstandingInvoices),
		"stock_value":          canonDec(d.StockValue),
		"vat_payable":          canonDec(d.VATPayable),
		"dso":                  canonDec(d.DSO),
		"quick_ratio":          canonDec(d.QuickRatio),
		"quick_ratio_defined":  d.QuickRatioDefined,
		"trend":                trend,
	}
}

func (t TaxSummary) canonicalMap() map[string]any {
	deductible := make([]any, len(t.DeductibleExpenses))
	for i, c := range t.DeductibleExpenses {
		deductible[i] = map[string]any{
			"category": c.Category,
			"amount":   canonDec(c.Amount),
		}
	}
	return map[string]any{
		"total_invoiced":          canonDec(t.TotalInvoiced),
		"total_received":          canonDec(t.TotalReceived),
		"outstanding_receivables": canonDec(t.OutstandingReceivables),
		"vat_collected":           canonDec(t.VATCollected),
		"vat_paid":                canonDec(t.VATPaid),
		"net_vat_payable":         canonDec(t.NetVATPayable),
		"deductible_expenses":     deductible,
		"total_expenses":          canonDec(t.TotalExpenses),
		"net_profit_before_tax":   canonDec(t.NetProfitBeforeTax),
		"profit_margin":           canonDec(t.ProfitMargin),
	}
}

func (b BalanceSheet) canonicalMap() map[string]any {
	return map[string]any{
		"cash_in_hand":                 canonDec(b.CashInHand),
		"cash_at_bank":                 canonDec(b.CashAtBank),
		"accounts_receivable":          canonDec(b.AccountsReceivable),
		"total_current_assets":         canonDec(b.TotalCurrentAssets),
		"inventory_value":              canonDec(b.InventoryValue),
		"total_fixed_assets":           canonDec(b.TotalFixedAssets),
		"total_assets":                 canonDec(b.TotalAssets),
		"accounts_payable":             canonDec(b.AccountsPayable),
		"vat_payable":                  canonDec(b.VATPayable),
		"total_liabilities":            canonDec(b.TotalLiabilities),
		"opening_capital":              canonDec(b.OpeningCapital),
		"retained_earnings":            canonDec(b.RetainedEarnings),
		"total_equity":                 canonDec(b.TotalEquity),
		"total_liabilities_and_equity": canonDec(b.TotalLiabilitiesAndEquity),
		"difference":                   canonDec(b.Difference),
		"balanced":                     b.Balanced,
	}
}

func warningsCanonical(warnings []Warning) []any {
	out := make([]any, len(warnings))
	for i, w := range warnings {
		out[i] = map[string]any{
			"code":       string(w.Code),
			"message":    w.Message,
			"difference": canonDec(w.Difference),
		}
	}
	return out
}

// marshalCanonical renders the converted map as canonical JSON. Only
// the types the conversion above produces are supported; anything else
// is a programming error.
func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("value for key %q: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString NFC-normalizes at the serialization boundary
// and disables HTML escaping so the bytes are stable across encoders.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	result := buf.Bytes()
	if n := len(result); n > 0 && result[n-1] == '\n' {
		result = result[:n-1]
	}
	return result, nil
}
