package core

import (
	"strings"

	"github.com/google/uuid"
)

// Draft is the raw content of the entry form before validation.
type Draft struct {
	Title    string
	Amount   string
	Type     string
	Category string
	Date     string
}

// NewTransaction validates a draft and turns it into a transaction with a
// fresh id. The period is classified against today once and never
// recomputed afterwards.
func NewTransaction(d Draft, today Date) (Transaction, error) {
	tx, err := d.apply(Transaction{}, today)
	if err != nil {
		return Transaction{}, err
	}
	tx.ID = uuid.NewString()
	tx.Period = Classify(tx.Date, today)
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// ApplyDraft overwrites the editable fields of base with the draft. ID and
// Period are kept as they were.
func ApplyDraft(base Transaction, d Draft, today Date) (Transaction, error) {
	tx, err := d.apply(base, today)
	if err != nil {
		return Transaction{}, err
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func (d Draft) apply(tx Transaction, today Date) (Transaction, error) {
	tx.Title = strings.TrimSpace(d.Title)
	if tx.Title == "" {
		return Transaction{}, ErrEmptyTitle
	}
	cents, err := ParseDecimalToCents(d.Amount)
	if err != nil {
		return Transaction{}, err
	}
	tx.Amount = Money{Cents: cents}

	t, err := ParseTransactionType(d.Type)
	if err != nil {
		return Transaction{}, err
	}
	if !t.IsSet() {
		return Transaction{}, ErrMissingType
	}
	tx.Type = t

	tx.Category = strings.TrimSpace(d.Category)
	if tx.Category == "" {
		return Transaction{}, ErrMissingCategory
	}

	if strings.TrimSpace(d.Date) == "" {
		return Transaction{}, ErrMissingDate
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, ErrMissingDate
	}
	if err := date.ValidateEntry(today); err != nil {
		return Transaction{}, err
	}
	tx.Date = date
	return tx, nil
}
