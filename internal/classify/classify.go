// Package classify maps records plus a reference date to categorical
// statuses: invoice aging buckets, payment states, customer credit
// standing, and the bank-reconciliation balanced test.
//
// All functions are pure. The as-of date is always supplied by the
// caller - nothing in here reads a system clock - so classification is
// deterministic and testable.
package classify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Epsilon absorbs decimal rounding when comparing derived balances.
// "Balanced" means within epsilon of zero, never exactly zero.
var Epsilon = decimal.New(5, -3) // 0.005, half a cent

// Bucket is an accounts-receivable aging bucket.
type Bucket string

const (
	BucketCurrent Bucket = "Current"  // 0-30 days outstanding
	BucketDueSoon Bucket = "Due Soon" // 31-60 days
	BucketOverdue Bucket = "Overdue"  // over 60 days
)

// PaymentStatus is the settlement state of an invoice.
type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "Unpaid"
	StatusPartiallyPaid PaymentStatus = "Partially Paid"
	StatusPaid          PaymentStatus = "Paid"
)

// AccountStatus is a customer's derived standing.
type AccountStatus string

const (
	AccountPaid          AccountStatus = "Paid"
	AccountActive        AccountStatus = "Active"
	AccountCreditWarning AccountStatus = "Credit Warning"
)

// DaysOutstanding returns whole days from invoiceDate to asOf, clamped
// at zero: a future-dated invoice counts as zero days outstanding.
func DaysOutstanding(invoiceDate, asOf time.Time) int {
	days := int(asOf.Sub(invoiceDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AgingBucket classifies a days-outstanding count.
func AgingBucket(days int) Bucket {
	switch {
	case days > 60:
		return BucketOverdue
	case days > 30:
		return BucketDueSoon
	default:
		return BucketCurrent
	}
}

// InvoicePaymentStatus classifies an invoice's settlement state from its
// total and the amount received. Paid iff the balance is zero or the
// invoice is overpaid; partially paid iff some but not all of the total
// has arrived.
func InvoicePaymentStatus(total, amountReceived decimal.Decimal) PaymentStatus {
	balance := total.Sub(amountReceived)
	switch {
	case balance.Sign() <= 0:
		return StatusPaid
	case amountReceived.Sign() > 0:
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// CustomerStatus classifies a customer's standing from the open balance
// and the configured credit limit. Credit Warning overrides the others:
// it fires exactly when a limit is set and the balance exceeds 80% of
// it.
func CustomerStatus(balance, creditLimit decimal.Decimal) AccountStatus {
	if creditLimit.Sign() > 0 {
		threshold := creditLimit.Mul(decimal.New(8, -1)) // 0.8
		if balance.GreaterThan(threshold) {
			return AccountCreditWarning
		}
	}
	if balance.Sign() <= 0 {
		return AccountPaid
	}
	return AccountActive
}

// ReconciliationDifference returns adjusted bank balance minus book
// balance, where adjusted = statement + uncleared deposits - uncleared
// checks.
func ReconciliationDifference(statementBalance, outstandingDeposits, outstandingChecks, bookBalance decimal.Decimal) decimal.Decimal {
	adjusted := statementBalance.Add(outstandingDeposits).Sub(outstandingChecks)
	return adjusted.Sub(bookBalance)
}

// Balanced reports whether a difference is within Epsilon of zero.
func Balanced(difference decimal.Decimal) bool {
	return difference.Abs().LessThan(Epsilon)
}
