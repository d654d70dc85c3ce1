// Package reconcile cross-checks a freshly built snapshot against the
// records it was derived from. Findings are warnings, never errors: a
// set of books that does not balance is still a valid set of books,
// the owner just needs to know about it.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flashillumination/flashbooks/internal/aggregate"
	"github.com/flashillumination/flashbooks/internal/ledger"
	"github.com/flashillumination/flashbooks/internal/views"
)

// Check runs every validation over the snapshot and returns the
// warnings to attach to it. It runs after the last tier of a recompute
// and reads only the pass's own inputs, so it never races a mutation.
func Check(in views.Inputs, snap *views.Snapshot) []views.Warning {
	var out []views.Warning

	if !snap.BalanceSheet.Balanced {
		out = append(out, views.Warning{
			Code: views.WarnBalanceMismatch,
			Message: fmt.Sprintf("balance sheet off by %s: assets %s vs liabilities and equity %s",
				snap.BalanceSheet.Difference,
				snap.BalanceSheet.TotalAssets,
				snap.BalanceSheet.TotalLiabilitiesAndEquity),
			Difference: snap.BalanceSheet.Difference,
		})
	}

	if !snap.BankRec.Balanced {
		out = append(out, views.Warning{
			Code: views.WarnUnreconciled,
			Message: fmt.Sprintf("bank statement off by %s: adjusted balance %s vs book balance %s",
				snap.BankRec.Difference,
				snap.BankRec.AdjustedBalance,
				snap.BankRec.BookBalance),
			Difference: snap.BankRec.Difference,
		})
	}

	out = append(out, danglingRefs(in)...)
	return out
}

// danglingRefs reports records whose counterpart is missing. The store
// rejects unresolved references on the way in, so these only appear
// when a dataset was restored from an external source.
func danglingRefs(in views.Inputs) []views.Warning {
	var out []views.Warning

	customerID := func(c ledger.Customer) string { return c.ID }
	vendorID := func(v ledger.Vendor) string { return v.ID }

	for _, inv := range in.Invoices {
		if _, ok := aggregate.Lookup(in.Customers, customerID, inv.CustomerID); !ok {
			out = append(out, views.Warning{
				Code:       views.WarnDanglingReference,
				Message:    fmt.Sprintf("invoice %s references missing customer %s", inv.ID, inv.CustomerID),
				Difference: decimal.Zero,
			})
		}
	}
	for _, e := range in.Expenses {
		if e.VendorID == "" {
			continue
		}
		if _, ok := aggregate.Lookup(in.Vendors, vendorID, e.VendorID); !ok {
			out = append(out, views.Warning{
				Code:       views.WarnDanglingReference,
				Message:    fmt.Sprintf("expense %s references missing vendor %s", e.ID, e.VendorID),
				Difference: decimal.Zero,
			})
		}
	}
	return out
}
