package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	Income  TransactionType = "Entrada"
	Expense TransactionType = "Saída"
)

const maxTitleLength = 200

type (
	// TransactionType tells whether money entered or left. The zero value
	// means "not chosen yet" and encodes as JSON null.
	TransactionType string

	Transaction struct {
		ID       string          `json:"id"`
		Title    string          `json:"title"`
		Amount   Money           `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
		Date     Date            `json:"date"`
		Period   Period          `json:"period"`
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = errors.New("title too long (max 200 characters)")
	ErrMissingType      = errors.New("transaction type not selected")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrMissingCategory  = errors.New("category not selected")
	ErrCategoryMismatch = errors.New("category does not belong to transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingDate      = errors.New("missing date")
	ErrDateOutOfRange   = errors.New("date out of range")
	ErrMissingPeriod    = errors.New("missing period")
	ErrInvalidPeriod    = errors.New("invalid period")
)

// ParseTransactionType accepts "Entrada" or "Saída". Empty input yields the
// unset type without error.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.TrimSpace(s)); t {
	case "", Income, Expense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

func (t TransactionType) IsSet() bool { return t != "" }

func (t TransactionType) String() string { return string(t) }

func (t TransactionType) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *TransactionType) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTransactionType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Validate checks the invariants every persisted transaction must satisfy.
func (tx Transaction) Validate() error {
	title := strings.TrimSpace(tx.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if !tx.Type.IsSet() {
		return ErrMissingType
	}
	if _, err := ParseTransactionType(string(tx.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrMissingCategory
	}
	if !IsValidCategory(tx.Type, tx.Category) {
		return fmt.Errorf("%w: %q is not a %s category", ErrCategoryMismatch, tx.Category, tx.Type)
	}
	if tx.Date.IsZero() {
		return ErrMissingDate
	}
	if tx.Period == "" {
		return ErrMissingPeriod
	}
	if _, err := ParsePeriod(string(tx.Period)); err != nil {
		return err
	}
	return nil
}

// Signed returns the amount with the sign implied by the type: positive
// for income, negative for expense.
func (tx Transaction) Signed() int64 {
	if tx.Type == Expense {
		return -tx.Amount.Cents
	}
	return tx.Amount.Cents
}
