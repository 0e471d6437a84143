package ledger

import (
	"math"

	"finanzy/internal/core"
)

// Summary holds the header totals in cents.
type Summary struct {
	TotalIncome    int64
	TotalExpense   int64
	AvailableMoney int64
}

// Summarize totals the whole collection. It ignores any active filter.
// Totals saturate at the int64 bounds instead of wrapping.
func Summarize(all []core.Transaction) Summary {
	var s Summary
	for _, tx := range all {
		switch tx.Type {
		case core.Income:
			s.TotalIncome = addCents(s.TotalIncome, tx.Amount.Cents)
		case core.Expense:
			s.TotalExpense = addCents(s.TotalExpense, tx.Amount.Cents)
		}
	}
	s.AvailableMoney = addCents(s.TotalIncome, -s.TotalExpense)
	return s
}

// addCents adds a and b, clamping to the int64 range on overflow.
func addCents(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}
