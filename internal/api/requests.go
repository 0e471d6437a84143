package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finanzy/internal/core"
)

type createRequest struct {
	ID       string   `json:"id" validate:"omitempty,max=64"`
	Title    string   `json:"title" validate:"required,max=200"`
	Amount   *float64 `json:"amount" validate:"required,gte=0"`
	Type     string   `json:"type" validate:"required,oneof=Entrada Saída"`
	Category string   `json:"category" validate:"required"`
	Date     string   `json:"date" validate:"required,datetime=2006-01-02"`
	Period   string   `json:"period" validate:"omitempty,period"`
}

func (r *createRequest) normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Date = strings.TrimSpace(r.Date)
}

// transaction builds the record to store. A missing period is classified
// against today; a missing id gets a fresh uuid.
func (r createRequest) transaction(today core.Date) (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, core.ErrMissingDate
	}
	cents, err := amountCents(*r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	period := core.Period(r.Period)
	if !period.IsSet() {
		period = core.Classify(date, today)
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return core.Transaction{
		ID:       id,
		Title:    r.Title,
		Amount:   core.Money{Cents: cents},
		Type:     core.TransactionType(r.Type),
		Category: r.Category,
		Date:     date,
		Period:   period,
	}, nil
}

type patchRequest struct {
	Title    *string  `json:"title" validate:"omitempty,max=200"`
	Amount   *float64 `json:"amount" validate:"omitempty,gte=0"`
	Type     *string  `json:"type" validate:"omitempty,oneof=Entrada Saída"`
	Category *string  `json:"category"`
	Date     *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Period   *string  `json:"period" validate:"omitempty,period"`
}

// apply merges the patched fields onto base. The id never changes.
func (r patchRequest) apply(base core.Transaction) (core.Transaction, error) {
	tx := base
	if r.Title != nil {
		tx.Title = strings.TrimSpace(*r.Title)
	}
	if r.Amount != nil {
		cents, err := amountCents(*r.Amount)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Amount = core.Money{Cents: cents}
	}
	if r.Type != nil {
		tx.Type = core.TransactionType(*r.Type)
	}
	if r.Category != nil {
		tx.Category = strings.TrimSpace(*r.Category)
	}
	if r.Date != nil {
		date, err := core.ParseDate(*r.Date)
		if err != nil {
			return core.Transaction{}, core.ErrMissingDate
		}
		tx.Date = date
	}
	if r.Period != nil {
		tx.Period = core.Period(*r.Period)
	}
	return tx, nil
}

func amountCents(f float64) (int64, error) {
	d := decimal.NewFromFloat(f)
	if d.IsNegative() {
		return 0, core.ErrInvalidAmount
	}
	return d.Shift(2).Round(0).IntPart(), nil
}
