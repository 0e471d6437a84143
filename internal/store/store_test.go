package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"finanzy/internal/core"
	"finanzy/internal/ledger"
	"finanzy/internal/remote"
	"finanzy/internal/remote/memory"
)

var errRemoteDown = errors.New("remote down")

// failingCollection wraps a working collection and fails selected calls.
type failingCollection struct {
	*memory.Collection
	failCreate, failUpdate, failDelete, failList bool
}

func (f *failingCollection) List(ctx context.Context) ([]core.Transaction, error) {
	if f.failList {
		return nil, errRemoteDown
	}
	return f.Collection.List(ctx)
}

func (f *failingCollection) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if f.failCreate {
		return core.Transaction{}, errRemoteDown
	}
	return f.Collection.Create(ctx, tx)
}

func (f *failingCollection) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if f.failUpdate {
		return core.Transaction{}, errRemoteDown
	}
	return f.Collection.Update(ctx, tx)
}

func (f *failingCollection) Delete(ctx context.Context, id string) error {
	if f.failDelete {
		return errRemoteDown
	}
	return f.Collection.Delete(ctx, id)
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (o *recordingObserver) ObserveMutation(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		op += ":error"
	}
	o.ops = append(o.ops, op)
}

func fixedClock() time.Time { return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC) }

func salary() core.Transaction {
	return core.Transaction{ID: "1", Title: "Salário", Amount: core.Money{Cents: 30000}, Type: core.Income, Category: "Salário", Date: core.NewDate(2025, 6, 1), Period: core.PeriodLastMonth}
}

func pizza() core.Transaction {
	return core.Transaction{ID: "2", Title: "Pizza", Amount: core.Money{Cents: 5000}, Type: core.Expense, Category: "Alimentação", Date: core.NewDate(2025, 6, 10), Period: core.PeriodLastWeek}
}

func newLoadedStore(t *testing.T, fc *failingCollection, opts ...Option) *Store {
	t.Helper()
	s := New(fc, append([]Option{WithClock(fixedClock)}, opts...)...)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestLoad(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(salary(), pizza())}
	s := newLoadedStore(t, fc)
	if !s.Loaded() || len(s.Snapshot()) != 2 {
		t.Fatalf("expected 2 loaded transactions")
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(salary())}
	s := newLoadedStore(t, fc)
	fc.failList = true
	if err := s.Load(context.Background()); !errors.Is(err, errRemoteDown) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if len(s.Snapshot()) != 1 {
		t.Fatalf("failed load must not clear the collection")
	}
}

func TestCreateTodayIsClassifiedHoje(t *testing.T) {
	fc := &failingCollection{Collection: memory.New()}
	s := newLoadedStore(t, fc)

	tx, err := core.NewTransaction(core.Draft{Title: "Café", Amount: "7,50", Type: "Saída", Category: "Alimentação", Date: "2025-06-15"}, s.Today())
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	saved, err := s.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.Period != core.PeriodToday {
		t.Fatalf("expected Hoje, got %q", saved.Period)
	}
	remoteItems, _ := fc.List(context.Background())
	if len(remoteItems) != 1 || !reflect.DeepEqual(s.Snapshot(), remoteItems) {
		t.Fatalf("local and remote diverged: %v vs %v", s.Snapshot(), remoteItems)
	}
}

func TestMutationFailuresLeaveLocalStateUnchanged(t *testing.T) {
	cases := []struct {
		name string
		arm  func(*failingCollection)
		run  func(*Store) error
	}{
		{"create", func(f *failingCollection) { f.failCreate = true }, func(s *Store) error {
			_, err := s.Create(context.Background(), pizza())
			return err
		}},
		{"update", func(f *failingCollection) { f.failUpdate = true }, func(s *Store) error {
			tx := salary()
			tx.Title = "Salário corrigido"
			_, err := s.Update(context.Background(), tx)
			return err
		}},
		{"delete", func(f *failingCollection) { f.failDelete = true }, func(s *Store) error {
			return s.Delete(context.Background(), "1")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &failingCollection{Collection: memory.New(salary())}
			obs := &recordingObserver{}
			s := newLoadedStore(t, fc, WithObserver(obs))
			before := s.Snapshot()

			tc.arm(fc)
			if err := tc.run(s); !errors.Is(err, errRemoteDown) {
				t.Fatalf("expected remote error, got %v", err)
			}
			if !reflect.DeepEqual(s.Snapshot(), before) {
				t.Fatalf("local state changed after failure: %v", s.Snapshot())
			}
			if last := obs.ops[len(obs.ops)-1]; last != tc.name+":error" {
				t.Fatalf("expected failure to be observed, got %v", obs.ops)
			}
		})
	}
}

func TestCreateRejectsInvalidWithoutRemoteCall(t *testing.T) {
	fc := &failingCollection{Collection: memory.New()}
	obs := &recordingObserver{}
	s := newLoadedStore(t, fc, WithObserver(obs))
	bad := pizza()
	bad.Type = ""
	if _, err := s.Create(context.Background(), bad); !errors.Is(err, core.ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
	if len(obs.ops) != 1 { // only the load
		t.Fatalf("remote should not be called, got %v", obs.ops)
	}
}

func TestUpdateKeepsPeriodSnapshot(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(salary())}
	s := newLoadedStore(t, fc)
	orig, _ := s.Get("1")
	edited, err := core.ApplyDraft(orig, core.Draft{Title: "Salário", Amount: "3000", Type: "Entrada", Category: "Salário", Date: "2025-06-15"}, s.Today())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	saved, err := s.Update(context.Background(), edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Period != core.PeriodLastMonth {
		t.Fatalf("period must not be recomputed, got %q", saved.Period)
	}
	got, _ := s.Get("1")
	if got.Amount.Cents != 300000 || got.Date != core.NewDate(2025, 6, 15) {
		t.Fatalf("update not applied locally: %+v", got)
	}
}

func TestUpdateUnknownIDSurfacesRemoteFailure(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(pizza())}
	obs := &recordingObserver{}
	s := newLoadedStore(t, fc, WithObserver(obs))
	before := s.Snapshot()

	if _, err := s.Update(context.Background(), salary()); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if want := []string{"load", "update:error"}; !reflect.DeepEqual(obs.ops, want) {
		t.Fatalf("the remote collection should decide, got ops %v", obs.ops)
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatalf("local collection changed: %+v", s.Snapshot())
	}
}

func TestDelete(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(salary(), pizza())}
	s := newLoadedStore(t, fc)
	if err := s.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get("1"); ok {
		t.Fatalf("transaction still present")
	}
	if err := s.Delete(context.Background(), "1"); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSummaryIgnoresFilters(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(salary(), pizza())}
	s := newLoadedStore(t, fc)

	page := s.View(ledger.Criteria{Type: core.Expense, Category: "Salário"}, 10, 1)
	if len(page.Items) != 0 {
		t.Fatalf("expected empty view, got %v", page.Items)
	}
	want := ledger.Summary{TotalIncome: 30000, TotalExpense: 5000, AvailableMoney: 25000}
	if got := s.Summary(); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestViewSortsAndPaginates(t *testing.T) {
	fc := &failingCollection{Collection: memory.New(salary(), pizza())}
	s := newLoadedStore(t, fc)
	page := s.View(ledger.Criteria{}, 1, 1)
	if page.TotalPages != 2 || page.Items[0].ID != "2" {
		t.Fatalf("expected newest first on 2 pages, got %+v", page)
	}
}

func TestConcurrentMutationsAreSerialised(t *testing.T) {
	fc := &failingCollection{Collection: memory.New()}
	s := newLoadedStore(t, fc)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := core.NewTransaction(core.Draft{Title: "x", Amount: "1", Type: "Saída", Category: "Lazer", Date: "2025-06-01"}, s.Today())
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := s.Create(context.Background(), tx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	remoteItems, _ := fc.List(context.Background())
	if len(s.Snapshot()) != 20 || !reflect.DeepEqual(s.Snapshot(), remoteItems) {
		t.Fatalf("local and remote diverged")
	}
}
