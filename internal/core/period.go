package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Period is the relative-age bucket of a transaction, computed once when the
// transaction is created.
type Period string

const (
	PeriodToday          Period = "Hoje"
	PeriodLastWeek       Period = "Última Semana"
	PeriodLastMonth      Period = "Último Mês"
	PeriodLastBimester   Period = "Último Bimestre"
	PeriodLastQuarter    Period = "Último Trimestre"
	PeriodLastFourMonths Period = "Último Quadrimestre"
	PeriodLastSemester   Period = "Último Semestre"
	PeriodLastYear       Period = "Último Ano"
	PeriodOverAYear      Period = "Mais de um ano"
)

// periodBounds maps the inclusive upper bound in days to its bucket.
// Order matters: the first matching bound wins.
var periodBounds = []struct {
	maxDays int
	period  Period
}{
	{0, PeriodToday},
	{7, PeriodLastWeek},
	{30, PeriodLastMonth},
	{60, PeriodLastBimester},
	{90, PeriodLastQuarter},
	{120, PeriodLastFourMonths},
	{180, PeriodLastSemester},
	{365, PeriodLastYear},
}

// Periods lists every bucket in display order.
func Periods() []Period {
	out := make([]Period, 0, len(periodBounds)+1)
	for _, b := range periodBounds {
		out = append(out, b.period)
	}
	return append(out, PeriodOverAYear)
}

func (p Period) IsSet() bool { return p != "" }

// ParsePeriod validates a period label.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// Classify buckets date relative to today by whole calendar days. Dates in
// the future are treated as today.
func Classify(date, today Date) Period {
	diff := date.DaysUntil(today)
	if diff < 0 {
		diff = 0
	}
	for _, b := range periodBounds {
		if diff <= b.maxDays {
			return b.period
		}
	}
	return PeriodOverAYear
}

func (p Period) String() string { return string(p) }

func (p Period) MarshalJSON() ([]byte, error) {
	if p == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

func (p *Period) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*p = ""
		return nil
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
