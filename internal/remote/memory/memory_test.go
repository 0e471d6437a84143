package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finanzy/internal/core"
	"finanzy/internal/remote"
)

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	seed := `{"transactions":[{"id":"1","title":"Salário","amount":300,"type":"Entrada","category":"Salário","date":"2025-01-05","period":"Último Mês"}]}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, _ := c.List(context.Background())
	if len(got) != 1 || got[0].Amount.Cents != 30000 || got[0].Type != core.Income {
		t.Fatalf("unexpected seed: %+v", got)
	}
}

func TestNewFromMissingFile(t *testing.T) {
	c, err := NewFromFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	got, _ := c.List(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected empty collection")
	}
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	c := New()

	created, err := c.Create(ctx, core.Transaction{Title: "Pizza"})
	if err != nil || created.ID == "" {
		t.Fatalf("create: %+v (err=%v)", created, err)
	}
	if _, err := c.Create(ctx, created); !errors.Is(err, remote.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	created.Title = "Pizza grande"
	if _, err := c.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := c.List(ctx)
	if list[0].Title != "Pizza grande" {
		t.Fatalf("update not applied")
	}

	list[0].Title = "mutated"
	again, _ := c.List(ctx)
	if again[0].Title != "Pizza grande" {
		t.Fatalf("List must return a copy")
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(ctx, created.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := c.Update(ctx, created); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
