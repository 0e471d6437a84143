package services

import (
	"context"
	"errors"
	"testing"

	"finanzy/internal/amqp"
	"finanzy/internal/core"
	"finanzy/internal/storage"
)

type fakePublisher struct {
	events   []amqp.TransactionEvent
	err      error
	closeErr error
}

func (p *fakePublisher) PublishChange(_ context.Context, ev amqp.TransactionEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error { return p.closeErr }

func pizza() core.Transaction {
	return core.Transaction{ID: "2", Title: "Pizza", Amount: core.Money{Cents: 5000}, Type: core.Expense, Category: "Alimentação", Date: core.NewDate(2025, 6, 10), Period: core.PeriodLastWeek}
}

func TestCreatePublishesAfterSave(t *testing.T) {
	repo := storage.NewMemoryRepository()
	pub := &fakePublisher{}
	svc := NewTransactionService(repo, pub, nil)

	tx := pizza()
	tx.ID = ""
	saved, err := svc.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected an assigned id")
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionCreated || pub.events[0].ID != saved.ID {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
	if _, err := repo.Get(context.Background(), saved.ID); err != nil {
		t.Fatalf("not stored: %v", err)
	}
}

func TestCreateKeepsProposedID(t *testing.T) {
	svc := NewTransactionService(storage.NewMemoryRepository(), nil, nil)
	saved, err := svc.Create(context.Background(), pizza())
	if err != nil || saved.ID != "2" {
		t.Fatalf("expected proposed id, got %+v (err=%v)", saved, err)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(storage.NewMemoryRepository(), pub, nil)
	if _, err := svc.Create(context.Background(), pizza()); err != nil {
		t.Fatalf("create should succeed, got %v", err)
	}
	if err := svc.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("delete should succeed, got %v", err)
	}
	if len(pub.events) != 2 || pub.events[1].Action != amqp.ActionDeleted {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestInvalidTransactionIsNotStoredOrPublished(t *testing.T) {
	repo := storage.NewMemoryRepository()
	pub := &fakePublisher{}
	svc := NewTransactionService(repo, pub, nil)
	bad := pizza()
	bad.Category = "Salário"
	if _, err := svc.Create(context.Background(), bad); !errors.Is(err, core.ErrCategoryMismatch) {
		t.Fatalf("expected ErrCategoryMismatch, got %v", err)
	}
	list, _ := repo.List(context.Background())
	if len(list) != 0 || len(pub.events) != 0 {
		t.Fatalf("nothing should be stored or published")
	}
}

func TestUpdateAndDeleteUnknown(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(storage.NewMemoryRepository(), pub, nil)
	if _, err := svc.Update(context.Background(), pizza()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed writes must not publish")
	}
}

func TestClose(t *testing.T) {
	t.Run("nil publisher", func(t *testing.T) {
		svc := NewTransactionService(storage.NewMemoryRepository(), nil, nil)
		if err := svc.Close(); err != nil {
			t.Fatalf("Close should not fail: %v", err)
		}
	})
	t.Run("publisher error surfaces", func(t *testing.T) {
		svc := NewTransactionService(storage.NewMemoryRepository(), &fakePublisher{closeErr: errors.New("boom")}, nil)
		if err := svc.Close(); err == nil {
			t.Fatalf("expected close error")
		}
	})
}
