package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the process-wide bookkeeping configuration. It is a
// singleton: initialized once when the store is created and changed only
// through Store.UpdateSettings. Derived views read it snapshot-consistent
// within one recompute pass.
type Settings struct {
	CompanyName string
	Tagline     string
	Email       string
	Phone       string
	Address     string
	Website     string

	// VATRate is the fraction applied to new invoices, 0 <= rate <= 1.
	// Existing invoices keep the rate stamped at their creation.
	VATRate decimal.Decimal

	FiscalYearStart time.Time
	OpeningCashHand decimal.Decimal
	OpeningCashBank decimal.Decimal

	// Categories and PaymentMethods are the enumerations expense
	// records validate against. Ordered, append-only in normal
	// operation: a value still referenced by records cannot be dropped.
	Categories     []string
	PaymentMethods []string

	// CostOfServicesCategory names the expense category reported as
	// cost of services on the profit & loss statement; everything else
	// is an operating expense.
	CostOfServicesCategory string
}

// DefaultCategories is the stock category list new books start from.
var DefaultCategories = []string{
	"Equipment Purchase",
	"Equipment Maintenance",
	"Transport/Fuel",
	"Salaries/Wages",
	"Rent",
	"Utilities",
	"Insurance",
	"Marketing",
	"Office Supplies",
	"Professional Fees",
	"Bank Charges",
	"Other",
}

// DefaultPaymentMethods is the stock payment method list.
var DefaultPaymentMethods = []string{
	PaymentMethodCash,
	"Bank Transfer",
	"Cheque",
	"Mobile Money",
	"Card",
}

// DefaultReceiptMethod is applied when an invoice does not name one.
const DefaultReceiptMethod = "Bank Transfer"

// DefaultSettings returns settings with the stock enumerations filled
// in. CompanyName, VATRate and FiscalYearStart still need to be set by
// the caller; Validate enforces the latter two.
func DefaultSettings() Settings {
	return Settings{
		Categories:             append([]string(nil), DefaultCategories...),
		PaymentMethods:         append([]string(nil), DefaultPaymentMethods...),
		CostOfServicesCategory: "Equipment Purchase",
	}
}

// HasCategory reports whether c is a configured expense category.
func (s Settings) HasCategory(c string) bool {
	for _, v := range s.Categories {
		if v == c {
			return true
		}
	}
	return false
}

// HasPaymentMethod reports whether m is a configured payment method.
func (s Settings) HasPaymentMethod(m string) bool {
	for _, v := range s.PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	out := s
	out.Categories = append([]string(nil), s.Categories...)
	out.PaymentMethods = append([]string(nil), s.PaymentMethods...)
	return out
}

// Validate checks structural settings rules. Reference rules (a category
// still in use, etc.) are checked by Store.UpdateSettings against the
// live record set.
func (s Settings) Validate() []*ValidationError {
	var errs []*ValidationError
	if s.VATRate.IsNegative() || s.VATRate.GreaterThan(one) {
		errs = append(errs, newError(CodeInvalidRate, "vat_rate", "VAT rate %s outside [0, 1]", s.VATRate))
	}
	if s.FiscalYearStart.IsZero() {
		errs = append(errs, newError(CodeInvalidValue, "fiscal_year_start", "fiscal year start is required"))
	}
	if len(s.Categories) == 0 {
		errs = append(errs, newError(CodeInvalidValue, "categories", "at least one expense category is required"))
	}
	if len(s.PaymentMethods) == 0 {
		errs = append(errs, newError(CodeInvalidValue, "payment_methods", "at least one payment method is required"))
	}
	if s.CostOfServicesCategory != "" && !s.HasCategory(s.CostOfServicesCategory) {
		errs = append(errs, newError(CodeInvalidCategory, "cost_of_services_category",
			"cost-of-services category %q is not a configured category", s.CostOfServicesCategory))
	}
	return errs
}

// SettingsPatch is a partial settings update. Nil fields are left
// unchanged; slice fields replace the whole list when non-nil.
type SettingsPatch struct {
	CompanyName            *string
	Tagline                *string
	Email                  *string
	Phone                  *string
	Address                *string
	Website                *string
	VATRate                *decimal.Decimal
	FiscalYearStart        *time.Time
	OpeningCashHand        *decimal.Decimal
	OpeningCashBank        *decimal.Decimal
	Categories             []string
	PaymentMethods         []string
	CostOfServicesCategory *string
}

func (s Settings) applyPatch(p SettingsPatch) Settings {
	out := s.Clone()
	if p.CompanyName != nil {
		out.CompanyName = *p.CompanyName
	}
	if p.Tagline != nil {
		out.Tagline = *p.Tagline
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Address != nil {
		out.Address = *p.Address
	}
	if p.Website != nil {
		out.Website = *p.Website
	}
	if p.VATRate != nil {
		out.VATRate = *p.VATRate
	}
	if p.FiscalYearStart != nil {
		out.FiscalYearStart = *p.FiscalYearStart
	}
	if p.OpeningCashHand != nil {
		out.OpeningCashHand = *p.OpeningCashHand
	}
	if p.OpeningCashBank != nil {
		out.OpeningCashBank = *p.OpeningCashBank
	}
	if p.Categories != nil {
		out.Categories = append([]string(nil), p.Categories...)
	}
	if p.PaymentMethods != nil {
		out.PaymentMethods = append([]string(nil), p.PaymentMethods...)
	}
	if p.CostOfServicesCategory != nil {
		out.CostOfServicesCategory = *p.CostOfServicesCategory
	}
	return out
}
