package core

import (
	"errors"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	today := NewDate(2025, 6, 15)
	cases := []struct {
		daysAgo int
		want    Period
	}{
		{0, PeriodToday},
		{1, PeriodLastWeek},
		{7, PeriodLastWeek},
		{8, PeriodLastMonth},
		{30, PeriodLastMonth},
		{31, PeriodLastBimester},
		{60, PeriodLastBimester},
		{61, PeriodLastQuarter},
		{90, PeriodLastQuarter},
		{91, PeriodLastFourMonths},
		{120, PeriodLastFourMonths},
		{121, PeriodLastSemester},
		{180, PeriodLastSemester},
		{181, PeriodLastYear},
		{365, PeriodLastYear},
		{366, PeriodOverAYear},
		{400, PeriodOverAYear},
	}
	for _, tc := range cases {
		date := Date{Time: today.AddDate(0, 0, -tc.daysAgo)}
		if got := Classify(date, today); got != tc.want {
			t.Fatalf("%d days ago: got %q, want %q", tc.daysAgo, got, tc.want)
		}
	}
}

func TestClassifyFutureIsToday(t *testing.T) {
	today := NewDate(2025, 6, 15)
	if got := Classify(NewDate(2025, 6, 20), today); got != PeriodToday {
		t.Fatalf("future date: got %q", got)
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	late := time.Date(2025, 3, 10, 23, 59, 0, 0, loc)
	today := Today(late)
	if today != NewDate(2025, 3, 10) {
		t.Fatalf("Today should keep the local calendar day, got %v", today)
	}
	if got := Classify(NewDate(2025, 3, 3), today); got != PeriodLastWeek {
		t.Fatalf("got %q", got)
	}
}

func TestClassifyAcrossDSTBoundary(t *testing.T) {
	// 2024-03-10 is a US DST switch; calendar days must stay whole.
	if got := NewDate(2024, 3, 9).DaysUntil(NewDate(2024, 3, 11)); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range Periods() {
		got, err := ParsePeriod(string(p))
		if err != nil || got != p {
			t.Fatalf("ParsePeriod(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := ParsePeriod("Ontem"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if len(Periods()) != 9 {
		t.Fatalf("expected 9 periods")
	}
}

func TestNewTransaction(t *testing.T) {
	today := NewDate(2025, 6, 15)
	tx, err := NewTransaction(Draft{
		Title:    "  Mercado do mês ",
		Amount:   "1.234,56",
		Type:     "Saída",
		Category: "Mercado",
		Date:     "2025-06-15",
	}, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID == "" {
		t.Fatalf("expected an id")
	}
	if tx.Period != PeriodToday {
		t.Fatalf("expected Hoje, got %q", tx.Period)
	}
	if tx.Title != "Mercado do mês" || tx.Amount.Cents != 123456 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestNewTransactionRejects(t *testing.T) {
	today := NewDate(2025, 6, 15)
	base := Draft{Title: "x", Amount: "10", Type: "Entrada", Category: "Salário", Date: "2025-06-01"}
	cases := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"no title", func(d *Draft) { d.Title = "" }, ErrEmptyTitle},
		{"bad amount", func(d *Draft) { d.Amount = "dez" }, ErrInvalidAmount},
		{"no type", func(d *Draft) { d.Type = "" }, ErrMissingType},
		{"no category", func(d *Draft) { d.Category = "" }, ErrMissingCategory},
		{"mismatched category", func(d *Draft) { d.Category = "Lazer" }, ErrCategoryMismatch},
		{"no date", func(d *Draft) { d.Date = "" }, ErrMissingDate},
		{"before 2020", func(d *Draft) { d.Date = "2019-12-31" }, ErrDateOutOfRange},
		{"future", func(d *Draft) { d.Date = "2025-06-16" }, ErrDateOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.mutate(&d)
			if _, err := NewTransaction(d, today); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyDraftKeepsPeriod(t *testing.T) {
	today := NewDate(2025, 6, 15)
	base := validTransaction()
	updated, err := ApplyDraft(base, Draft{Title: "Bônus", Amount: "500", Type: "Entrada", Category: "Bonificações", Date: "2025-06-15"}, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != base.ID || updated.Period != base.Period {
		t.Fatalf("id and period must be kept, got %+v", updated)
	}
	if updated.Date != today || updated.Amount.Cents != 50000 {
		t.Fatalf("fields not applied: %+v", updated)
	}
}
