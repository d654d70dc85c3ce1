// Package aggregate provides the pure conditional-sum and lookup
// primitives the derived views are built from.
//
// Every function is total over empty input: summing nothing returns
// zero, looking up a missing key reports not-found. Nothing here
// panics or returns an error - a dangling reference is simply "no
// match", and surfacing it is the reconciliation validator's job.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"
)

// SumWhere sums amount over the records matching pred.
func SumWhere[T any](records []T, pred func(T) bool, amount func(T) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if pred(r) {
			sum = sum.Add(amount(r))
		}
	}
	return sum
}

// SumByDateRange sums amount over records whose date falls in
// [from, to], both ends inclusive. Records with a zero date never match.
func SumByDateRange[T any](records []T, date func(T) time.Time, amount func(T) decimal.Decimal, from, to time.Time) decimal.Decimal {
	return SumWhere(records, func(r T) bool {
		d := date(r)
		if d.IsZero() {
			return false
		}
		return !d.Before(from) && !d.After(to)
	}, amount)
}

// SumByCategory sums amount over records whose category equals cat.
func SumByCategory[T any](records []T, category func(T) string, amount func(T) decimal.Decimal, cat string) decimal.Decimal {
	return SumWhere(records, func(r T) bool { return category(r) == cat }, amount)
}

// CountWhere counts the records matching pred.
func CountWhere[T any](records []T, pred func(T) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

// Lookup returns the first record whose key equals k. The second return
// is false when no record matches.
func Lookup[T any](records []T, key func(T) string, k string) (T, bool) {
	for _, r := range records {
		if key(r) == k {
			return r, true
		}
	}
	var zero T
	return zero, false
}
