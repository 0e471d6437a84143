package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"finanzy/internal/core"
	"finanzy/internal/sheets"
)

var _ sheets.TransactionSheet = (*Sheet)(nil)

// Sheet is an in-process stand-in for the spreadsheet, used when no Google
// credentials are configured and in tests.
type Sheet struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Sheet { return &Sheet{} }

func (s *Sheet) Upsert(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(tx.ID); i >= 0 {
		s.rows[i] = tx
		return ref(i), nil
	}
	s.rows = append(s.rows, tx)
	return ref(len(s.rows) - 1), nil
}

func (s *Sheet) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.rows = slices.Delete(s.rows, i, i+1)
	}
	return nil
}

func (s *Sheet) ReplaceAll(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.Clone(txs)
	return nil
}

// Rows returns a copy of the current rows.
func (s *Sheet) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

func (s *Sheet) indexOf(id string) int {
	return slices.IndexFunc(s.rows, func(tx core.Transaction) bool { return tx.ID == id })
}

// ref mirrors the A1 reference of the Google adapter; row 1 is the header.
func ref(i int) string {
	return fmt.Sprintf("mem!A%d", i+2)
}
