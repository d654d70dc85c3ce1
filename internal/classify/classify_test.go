package classify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDaysOutstanding(t *testing.T) {
	assert.Equal(t, 45, DaysOutstanding(d(2025, time.May, 1), d(2025, time.June, 15)))
	assert.Equal(t, 0, DaysOutstanding(d(2025, time.June, 15), d(2025, time.June, 15)))
	assert.Equal(t, 0, DaysOutstanding(d(2025, time.July, 1), d(2025, time.June, 15)),
		"future invoices clamp to zero")
}

func TestAgingBucket(t *testing.T) {
	assert.Equal(t, BucketCurrent, AgingBucket(0))
	assert.Equal(t, BucketCurrent, AgingBucket(30))
	assert.Equal(t, BucketDueSoon, AgingBucket(31))
	assert.Equal(t, BucketDueSoon, AgingBucket(45))
	assert.Equal(t, BucketDueSoon, AgingBucket(60))
	assert.Equal(t, BucketOverdue, AgingBucket(61))
	assert.Equal(t, BucketOverdue, AgingBucket(65))
}

func TestInvoicePaymentStatus(t *testing.T) {
	total := dec("1150")

	assert.Equal(t, StatusPaid, InvoicePaymentStatus(total, dec("1150")))
	assert.Equal(t, StatusPaid, InvoicePaymentStatus(total, dec("1200")), "overpayment still reads Paid")
	assert.Equal(t, StatusPartiallyPaid, InvoicePaymentStatus(total, dec("500")))
	assert.Equal(t, StatusUnpaid, InvoicePaymentStatus(total, decimal.Zero))
}

func TestCustomerStatus(t *testing.T) {
	limit := dec("10000")

	assert.Equal(t, AccountPaid, CustomerStatus(decimal.Zero, limit))
	assert.Equal(t, AccountPaid, CustomerStatus(dec("-50"), limit), "credit balance reads Paid")
	assert.Equal(t, AccountActive, CustomerStatus(dec("8000"), limit), "exactly 80% is not a warning")
	assert.Equal(t, AccountCreditWarning, CustomerStatus(dec("8000.01"), limit))

	// No limit configured: never a credit warning.
	assert.Equal(t, AccountActive, CustomerStatus(dec("999999"), decimal.Zero))
}

func TestReconciliationDifference(t *testing.T) {
	diff := ReconciliationDifference(dec("5000"), dec("200"), dec("150"), dec("5050"))
	assert.True(t, diff.IsZero(), "5000 + 200 - 150 reconciles against book 5050, got %s", diff)

	diff = ReconciliationDifference(dec("5000"), dec("200"), dec("150"), dec("5000"))
	assert.True(t, diff.Equal(dec("50")))
}

func TestBalanced_Epsilon(t *testing.T) {
	assert.True(t, Balanced(decimal.Zero))
	assert.True(t, Balanced(dec("0.004")))
	assert.True(t, Balanced(dec("-0.004")))
	assert.False(t, Balanced(dec("0.005")))
	assert.False(t, Balanced(dec("-0.005")))
	assert.False(t, Balanced(dec("1")))
}
