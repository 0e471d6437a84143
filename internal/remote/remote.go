// Package remote defines the port to the transaction collection the UI
// synchronises with, plus the errors its adapters report.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"finanzy/internal/core"
)

var (
	ErrNotFound = errors.New("transaction not found")
	ErrConflict = errors.New("transaction already exists")
)

// Collection is the remote CRUD resource holding the canonical list.
// Create and Update return the record as stored by the remote side.
type Collection interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// StatusError reports a non-2xx answer from the remote collection.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// Unwrap maps well-known status codes to the package sentinels.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return nil
	}
}
