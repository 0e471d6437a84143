// Package ledger implements the read pipeline over a list of transactions:
// filtering by search text and selectors, date ordering with pagination, and
// the income/expense totals shown in the header.
package ledger

import (
	"strings"

	"finanzy/internal/core"
)

// Criteria selects transactions. Zero-valued fields are absent and do not
// restrict the result.
type Criteria struct {
	Search   string
	Type     core.TransactionType
	Period   core.Period
	Category string
}

// IsZero reports whether no criterion is active.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Search) == "" && c.Type == "" && c.Period == "" && c.Category == ""
}

// Filter returns the transactions matching every active criterion, in input
// order. The input slice is not modified.
func Filter(all []core.Transaction, c Criteria) []core.Transaction {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if search != "" && !strings.Contains(strings.ToLower(tx.Title), search) {
			continue
		}
		if c.Type != "" && tx.Type != c.Type {
			continue
		}
		if c.Period != "" && tx.Period != c.Period {
			continue
		}
		if c.Category != "" && tx.Category != c.Category {
			continue
		}
		out = append(out, tx)
	}
	return out
}
