package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_DerivedAmounts(t *testing.T) {
	rate := decimal.New(15, -2)
	inv := Invoice{
		ID:          "INV-1",
		InvoiceDate: date(2025, time.March, 1),
		Lines: []LineItem{
			{Description: "Rig", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(400)},
			{Description: "Crew", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(200)},
		},
		VATRate:        &rate,
		AmountReceived: decimal.NewFromInt(500),
	}

	assert.True(t, inv.Subtotal().Equal(decimal.NewFromInt(1000)))
	assert.True(t, inv.VATAmount().Equal(decimal.NewFromInt(150)))
	assert.True(t, inv.Total().Equal(decimal.NewFromInt(1150)))
	assert.True(t, inv.Balance().Equal(decimal.NewFromInt(650)))
}

func TestInvoice_OverpaymentYieldsNegativeBalance(t *testing.T) {
	rate := decimal.Zero
	inv := Invoice{
		Lines:          []LineItem{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)}},
		VATRate:        &rate,
		AmountReceived: decimal.NewFromInt(120),
	}
	assert.True(t, inv.Balance().Equal(decimal.NewFromInt(-20)))
}

func TestInvoice_DueDate(t *testing.T) {
	inv := Invoice{InvoiceDate: date(2025, time.March, 1)}
	assert.Equal(t, date(2025, time.March, 31), inv.DueDate(30))
	assert.Equal(t, date(2025, time.March, 1), inv.DueDate(0))
}

func TestExpense_PaidAndOutstanding(t *testing.T) {
	e := Expense{Amount: decimal.NewFromInt(575)}
	assert.True(t, e.Paid().Equal(decimal.NewFromInt(575)), "nil AmountPaid means settled in full")
	assert.True(t, e.Outstanding().IsZero())

	paid := decimal.NewFromInt(275)
	e.AmountPaid = &paid
	assert.True(t, e.Paid().Equal(decimal.NewFromInt(275)))
	assert.True(t, e.Outstanding().Equal(decimal.NewFromInt(300)))
}

func TestInventoryItem_Totals(t *testing.T) {
	it := InventoryItem{
		UnitPrice:         decimal.NewFromInt(500),
		QuantityInStore:   4,
		QuantityRentedOut: 2,
		QuantityInTransit: 1,
	}
	assert.Equal(t, int64(7), it.TotalQuantity())
	assert.True(t, it.TotalValue().Equal(decimal.NewFromInt(3500)))
}

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	s.FiscalYearStart = date(2025, time.January, 1)
	assert.Empty(t, s.Validate())

	s.VATRate = decimal.NewFromInt(2)
	errs := s.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, CodeInvalidRate, errs[0].Code)

	s = DefaultSettings()
	errs = s.Validate()
	require.NotEmpty(t, errs, "fiscal year start is required")

	s = DefaultSettings()
	s.FiscalYearStart = date(2025, time.January, 1)
	s.CostOfServicesCategory = "Nonexistent"
	errs = s.Validate()
	require.NotEmpty(t, errs)
}

func TestValidationError_Formatting(t *testing.T) {
	err := newError(CodeInvalidValue, "amount", "amount must be >= 0")
	assert.Equal(t, "INVALID_VALUE: amount must be >= 0 (field=amount)", err.Error())
	assert.True(t, IsValidation(err))
}
