package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finanzy/internal/core"
	"finanzy/internal/services"
	"finanzy/internal/storage"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func salary() core.Transaction {
	return core.Transaction{ID: "1", Title: "Salário", Amount: core.Money{Cents: 300000}, Type: core.Income, Category: "Salário", Date: core.NewDate(2025, 6, 1), Period: core.PeriodLastMonth}
}

func newTestServer(t *testing.T, seed ...core.Transaction) (*httptest.Server, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository(seed...)
	h, err := NewHandler(services.NewTransactionService(repo, nil, nil), nil, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestListTransactions(t *testing.T) {
	srv, _ := newTestServer(t, salary())
	resp, err := http.Get(srv.URL + "/transactions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var txs []core.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(txs) != 1 || txs[0].Amount.Cents != 300000 {
		t.Fatalf("unexpected list: %d %+v", resp.StatusCode, txs)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, repo := newTestServer(t)
	resp, body := do(t, http.MethodPost, srv.URL+"/transactions",
		`{"title":" Pizza ","amount":49.9,"type":"Saída","category":"Alimentação","date":"2025-06-10"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("expected a generated id, got %v", body)
	}
	stored, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("not stored: %v", err)
	}
	if stored.Title != "Pizza" || stored.Amount.Cents != 4990 || stored.Period != core.PeriodLastWeek {
		t.Fatalf("unexpected record: %+v", stored)
	}
}

func TestCreateKeepsGivenPeriod(t *testing.T) {
	srv, repo := newTestServer(t)
	resp, _ := do(t, http.MethodPost, srv.URL+"/transactions",
		`{"id":"x","title":"Bônus","amount":100,"type":"Entrada","category":"Bonificações","date":"2025-06-15","period":"Último Ano"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	stored, _ := repo.Get(context.Background(), "x")
	if stored.Period != core.PeriodLastYear {
		t.Fatalf("period must be kept, got %q", stored.Period)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{"title":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"missing title", `{"amount":1,"type":"Saída","category":"Lazer","date":"2025-06-01"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"title":"x","amount":-1,"type":"Saída","category":"Lazer","date":"2025-06-01"}`, http.StatusUnprocessableEntity},
		{"unknown type", `{"title":"x","amount":1,"type":"Transfer","category":"Lazer","date":"2025-06-01"}`, http.StatusUnprocessableEntity},
		{"category mismatch", `{"title":"x","amount":1,"type":"Entrada","category":"Lazer","date":"2025-06-01"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"title":"x","amount":1,"type":"Saída","category":"Lazer","date":"01/06/2025"}`, http.StatusUnprocessableEntity},
		{"bad period", `{"title":"x","amount":1,"type":"Saída","category":"Lazer","date":"2025-06-01","period":"Ontem"}`, http.StatusUnprocessableEntity},
	}
	srv, _ := newTestServer(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/transactions", tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d (%v)", tc.want, resp.StatusCode, body)
			}
			if msg, _ := body["error"].(string); msg == "" {
				t.Fatalf("expected an error message, got %v", body)
			}
		})
	}
}

func TestCreateDuplicateID(t *testing.T) {
	srv, _ := newTestServer(t, salary())
	resp, _ := do(t, http.MethodPost, srv.URL+"/transactions",
		`{"id":"1","title":"x","amount":1,"type":"Entrada","category":"Salário","date":"2025-06-01"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestGetTransaction(t *testing.T) {
	srv, _ := newTestServer(t, salary())
	resp, body := do(t, http.MethodGet, srv.URL+"/transactions/1", "")
	if resp.StatusCode != http.StatusOK || body["title"] != "Salário" {
		t.Fatalf("unexpected response: %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, http.MethodGet, srv.URL+"/transactions/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPatchTransaction(t *testing.T) {
	srv, repo := newTestServer(t, salary())
	resp, body := do(t, http.MethodPatch, srv.URL+"/transactions/1", `{"amount":3500.5,"date":"2025-06-14"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	stored, _ := repo.Get(context.Background(), "1")
	if stored.Amount.Cents != 350050 || stored.Date != core.NewDate(2025, 6, 14) {
		t.Fatalf("patch not applied: %+v", stored)
	}
	if stored.Period != core.PeriodLastMonth || stored.Title != "Salário" {
		t.Fatalf("untouched fields changed: %+v", stored)
	}
}

func TestPatchRevalidatesMergedRecord(t *testing.T) {
	srv, _ := newTestServer(t, salary())
	resp, _ := do(t, http.MethodPatch, srv.URL+"/transactions/1", `{"type":"Saída"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Salário is not an expense category, got %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodPatch, srv.URL+"/transactions/nope", `{"title":"x"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPutReplacesRecord(t *testing.T) {
	srv, repo := newTestServer(t, salary())
	resp, body := do(t, http.MethodPut, srv.URL+"/transactions/1",
		`{"id":"ignored","title":"Aluguel","amount":1200,"type":"Saída","category":"Aluguel","date":"2025-06-05","period":"Último Mês"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	stored, err := repo.Get(context.Background(), "1")
	if err != nil || stored.Title != "Aluguel" || stored.Type != core.Expense {
		t.Fatalf("unexpected record: %+v (err=%v)", stored, err)
	}
	if _, err := repo.Get(context.Background(), "ignored"); err == nil {
		t.Fatalf("path id must win over body id")
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, repo := newTestServer(t, salary())
	resp, body := do(t, http.MethodDelete, srv.URL+"/transactions/1", "")
	if resp.StatusCode != http.StatusOK || len(body) != 0 {
		t.Fatalf("expected 200 {}, got %d %v", resp.StatusCode, body)
	}
	if txs, _ := repo.List(context.Background()); len(txs) != 0 {
		t.Fatalf("expected empty repo, got %+v", txs)
	}
	resp, _ = do(t, http.MethodDelete, srv.URL+"/transactions/1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
