package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"finanzy/internal/core"
)

// MemoryRepository keeps transactions in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func NewMemoryRepository(seed ...core.Transaction) *MemoryRepository {
	return &MemoryRepository{items: slices.Clone(seed)}
}

func (r *MemoryRepository) List(_ context.Context) ([]core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.items)
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.items[i], nil
	}
	return core.Transaction{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
}

func (r *MemoryRepository) Insert(_ context.Context, tx core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(tx.ID) >= 0 {
		return fmt.Errorf("insert %s: %w", tx.ID, ErrDuplicateID)
	}
	r.items = append(r.items, tx)
	return nil
}

func (r *MemoryRepository) Replace(_ context.Context, tx core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(tx.ID)
	if i < 0 {
		return fmt.Errorf("replace %s: %w", tx.ID, ErrNotFound)
	}
	r.items[i] = tx
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	r.items = slices.Delete(r.items, i, i+1)
	return nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) indexOf(id string) int {
	return slices.IndexFunc(r.items, func(tx core.Transaction) bool { return tx.ID == id })
}

var _ Repository = (*MemoryRepository)(nil)
