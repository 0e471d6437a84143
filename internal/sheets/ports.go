// Package sheets defines the outbound port used to mirror the transaction
// collection into a spreadsheet.
package sheets

import (
	"context"

	"finanzy/internal/core"
)

// Header is the first row written by ReplaceAll.
var Header = []string{"ID", "Data", "Título", "Valor", "Tipo", "Categoria", "Período"}

// TransactionSheet keeps one row per transaction, keyed by the id in the
// first column.
type TransactionSheet interface {
	// Upsert rewrites the row holding tx.ID or appends a new one.
	Upsert(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	// Remove clears the row holding id. A missing row is not an error.
	Remove(ctx context.Context, id string) error
	// ReplaceAll overwrites the whole sheet with a header and txs.
	ReplaceAll(ctx context.Context, txs []core.Transaction) error
}

// Row renders tx in column order matching Header.
func Row(tx core.Transaction) []any {
	amount, _ := tx.Amount.Decimal().Float64()
	return []any{tx.ID, tx.Date.String(), tx.Title, amount, string(tx.Type), tx.Category, string(tx.Period)}
}
