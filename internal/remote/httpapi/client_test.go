package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finanzy/internal/core"
	"finanzy/internal/remote"
)

func sampleTx() core.Transaction {
	return core.Transaction{
		ID:       "abc",
		Title:    "Pizza",
		Amount:   core.Money{Cents: 5000},
		Type:     core.Expense,
		Category: "Alimentação",
		Date:     core.NewDate(2025, 1, 10),
		Period:   core.PeriodLastWeek,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("localhost:3500", 0); err == nil {
		t.Fatalf("expected error for missing scheme")
	}
}

func TestList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/transactions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":"abc","title":"Pizza","amount":50,"type":"Saída","category":"Alimentação","date":"2025-01-10","period":"Última Semana"}]`)
	})
	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0] != sampleTx() {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestListEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	got, err := c.List(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v (err=%v)", got, err)
	}
}

func TestCreateSendsJSONAndReturnsCanonical(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var in core.Transaction
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		in.ID = "server-id"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})
	got, err := c.Create(context.Background(), sampleTx())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "server-id" || got.Title != "Pizza" || got.Amount.Cents != 5000 {
		t.Fatalf("unexpected canonical record: %+v", got)
	}
}

func TestUpdateUsesPatchOnItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/transactions/abc" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		_, _ = w.Write(b)
	})
	tx := sampleTx()
	tx.Title = "Pizza grande"
	got, err := c.Update(context.Background(), tx)
	if err != nil || got.Title != "Pizza grande" {
		t.Fatalf("update: %+v (err=%v)", got, err)
	}
}

func TestDelete(t *testing.T) {
	var called bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodDelete && r.URL.Path == "/transactions/abc"
		_, _ = io.WriteString(w, `{}`)
	})
	if err := c.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !called {
		t.Fatalf("expected DELETE /transactions/abc")
	}
}

func TestNon2xxIsStatusError(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, remote.ErrNotFound},
		{http.StatusConflict, remote.ErrConflict},
		{http.StatusInternalServerError, nil},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", tc.status)
		})
		err := c.Delete(context.Background(), "abc")
		var se *remote.StatusError
		if !errors.As(err, &se) || se.StatusCode != tc.status {
			t.Fatalf("status %d: expected StatusError, got %v", tc.status, err)
		}
		if !strings.Contains(se.Error(), "boom") {
			t.Fatalf("expected body in error, got %q", se.Error())
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v", tc.status, tc.want)
		}
	}
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
