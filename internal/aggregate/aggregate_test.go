package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type rec struct {
	id     string
	date   time.Time
	group  string
	amount decimal.Decimal
}

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

var sample = []rec{
	{id: "a", date: d(2025, time.March, 1), group: "x", amount: dec("10.50")},
	{id: "b", date: d(2025, time.March, 15), group: "y", amount: dec("4.25")},
	{id: "c", date: d(2025, time.April, 1), group: "x", amount: dec("5")},
	{id: "d", date: time.Time{}, group: "x", amount: dec("100")},
}

func amount(r rec) decimal.Decimal { return r.amount }
func day(r rec) time.Time          { return r.date }

func TestSumWhere(t *testing.T) {
	got := SumWhere(sample, func(r rec) bool { return r.group == "x" }, amount)
	assert.True(t, got.Equal(dec("115.5")), "got %s", got)
}

func TestSumWhere_EmptyInputIsZero(t *testing.T) {
	got := SumWhere(nil, func(rec) bool { return true }, amount)
	assert.True(t, got.IsZero())
}

func TestSumByDateRange_InclusiveBounds(t *testing.T) {
	got := SumByDateRange(sample, day, amount, d(2025, time.March, 1), d(2025, time.March, 15))
	assert.True(t, got.Equal(dec("14.75")), "both endpoints count, got %s", got)
}

func TestSumByDateRange_ZeroDatesNeverMatch(t *testing.T) {
	got := SumByDateRange(sample, day, amount, d(2020, time.January, 1), d(2030, time.January, 1))
	assert.True(t, got.Equal(dec("19.75")), "the zero-dated record is excluded, got %s", got)
}

func TestSumByCategory(t *testing.T) {
	got := SumByCategory(sample, func(r rec) string { return r.group }, amount, "y")
	assert.True(t, got.Equal(dec("4.25")))

	got = SumByCategory(sample, func(r rec) string { return r.group }, amount, "absent")
	assert.True(t, got.IsZero())
}

func TestCountWhere(t *testing.T) {
	assert.Equal(t, 3, CountWhere(sample, func(r rec) bool { return r.group == "x" }))
	assert.Equal(t, 0, CountWhere(nil, func(rec) bool { return true }))
}

func TestLookup(t *testing.T) {
	r, ok := Lookup(sample, func(r rec) string { return r.id }, "c")
	assert.True(t, ok)
	assert.Equal(t, "c", r.id)

	_, ok = Lookup(sample, func(r rec) string { return r.id }, "zzz")
	assert.False(t, ok, "a dangling key is simply no match")
}
