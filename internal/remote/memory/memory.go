// Package memory is an in-process remote.Collection, optionally seeded from
// a json-server db.json file.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/google/uuid"

	"finanzy/internal/core"
	"finanzy/internal/remote"
)

type Collection struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New(seed ...core.Transaction) *Collection {
	return &Collection{items: slices.Clone(seed)}
}

// seedFile mirrors the db.json layout served by json-server.
type seedFile struct {
	Transactions []core.Transaction `json:"transactions"`
}

// NewFromFile seeds the collection from path. A missing file yields an
// empty collection.
func NewFromFile(path string) (*Collection, error) {
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var db seedFile
	if err := json.Unmarshal(b, &db); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(db.Transactions...), nil
}

func (c *Collection) List(_ context.Context) ([]core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items), nil
}

func (c *Collection) Create(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if c.indexOf(tx.ID) >= 0 {
		return core.Transaction{}, fmt.Errorf("create %s: %w", tx.ID, remote.ErrConflict)
	}
	c.items = append(c.items, tx)
	return tx, nil
}

func (c *Collection) Update(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(tx.ID)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("update %s: %w", tx.ID, remote.ErrNotFound)
	}
	c.items[i] = tx
	return tx, nil
}

func (c *Collection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, remote.ErrNotFound)
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

func (c *Collection) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(tx core.Transaction) bool { return tx.ID == id })
}

var _ remote.Collection = (*Collection)(nil)
