package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"finanzy/internal/amqp"
	"finanzy/internal/core"
	"finanzy/internal/log"
	"finanzy/internal/storage"
)

// Publisher announces collection changes. *amqp.Client implements it.
type Publisher interface {
	PublishChange(ctx context.Context, ev amqp.TransactionEvent) error
	Close() error
}

// TransactionService writes to the repository first and then publishes a
// change event. Publishing is best effort: a failure is logged and the
// write still succeeds.
type TransactionService struct {
	repo      storage.Repository
	publisher Publisher
	logger    *log.Logger
}

// NewTransactionService wires the service; publisher may be nil.
func NewTransactionService(repo storage.Repository, publisher Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{repo: repo, publisher: publisher, logger: logger.WithComponent(log.ComponentAPI)}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.List(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// Create stores tx, assigning an id when the client did not propose one.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.repo.Insert(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.NewChangeEvent(amqp.ActionCreated, tx))
	return tx, nil
}

// Update replaces the stored record with the same id.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.repo.Replace(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewChangeEvent(amqp.ActionUpdated, tx))
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewDeleteEvent(id))
	return nil
}

// Ready reports whether the repository answers.
func (s *TransactionService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *TransactionService) publish(ctx context.Context, ev amqp.TransactionEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping change event", log.FieldTransactionID, ev.ID)
		return
	}
	if err := s.publisher.PublishChange(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldError, err,
			log.FieldAction, string(ev.Action),
			log.FieldTransactionID, ev.ID)
	}
}

// Close closes both the repository and the publisher.
func (s *TransactionService) Close() error {
	var errs []error
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close transaction service: %w", err)
	}
	return nil
}
