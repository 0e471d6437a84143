// Package storage persists the transaction collection served by the API.
package storage

import (
	"context"
	"errors"

	"finanzy/internal/core"
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrDuplicateID = errors.New("transaction id already exists")
)

// Repository stores transactions keyed by id. List returns them in
// insertion order.
type Repository interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Insert(ctx context.Context, tx core.Transaction) error
	Replace(ctx context.Context, tx core.Transaction) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
