// Package core holds the domain model of the tracker: transactions, their
// types and categories, calendar dates, money amounts and period buckets.
//
// This file contains the money helpers: parsing amounts typed in the form,
// the JSON number encoding used on the wire, and BRL formatting.
package core

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in centavos. The sign of a transaction is
// carried by its type, never by the amount.
type Money struct {
	Cents int64
}

// PrivateMask replaces every amount while privacy mode is on.
const PrivateMask = "R$ *****"

// MaxAmountCents is the largest single amount accepted: R$ 1 trilhão.
const MaxAmountCents int64 = 100_000_000_000_000

var maxCents = decimal.New(MaxAmountCents, 0)

func (m Money) Validate() error {
	if m.Cents < 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// ParseDecimalToCents converts an amount typed in the entry form to cents.
//
// The form only lets through digits, dots and commas. Comma is the decimal
// separator; when a comma is present any dot before it is a thousands
// separator. A lone dot is read as a decimal point. Values are rounded
// half-up to the centavo.
//
// Examples:
//
//	ParseDecimalToCents("12,5")     -> 1250, nil
//	ParseDecimalToCents("1.234,56") -> 123456, nil
//	ParseDecimalToCents("12.50")    -> 1250, nil
//	ParseDecimalToCents("1.2.3")    -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return 0, ErrInvalidAmount
		}
	}

	var normalized string
	switch commas := strings.Count(s, ","); {
	case commas > 1:
		return 0, ErrInvalidAmount
	case commas == 1:
		i := strings.IndexByte(s, ',')
		intPart, fracPart := s[:i], s[i+1:]
		if strings.Contains(fracPart, ".") {
			return 0, ErrInvalidAmount
		}
		normalized = strings.ReplaceAll(intPart, ".", "") + "." + fracPart
	default:
		if strings.Count(s, ".") > 1 {
			return 0, ErrInvalidAmount
		}
		normalized = s
	}
	normalized = strings.TrimSuffix(normalized, ".")
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}
	if normalized == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return toCents(d)
}

func toCents(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// MarshalJSON writes the amount as a plain JSON number in reais (12.5).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string in reais.
func (m *Money) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		m.Cents = 0
		return nil
	}
	raw := string(bytes.Trim(b, `"`))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return ErrInvalidAmount
	}
	cents, err := toCents(d)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// FormatBRL renders cents as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	frac := cents % 100
	return sign + "R$ " + b.String() + "," + strconv.FormatInt(frac/10, 10) + strconv.FormatInt(frac%10, 10)
}

// FormatPrivate is FormatBRL unless hide is set, in which case the amount is masked.
func FormatPrivate(cents int64, hide bool) string {
	if hide {
		return PrivateMask
	}
	return FormatBRL(cents)
}

// String renders the amount in BRL.
func (m Money) String() string {
	return FormatBRL(m.Cents)
}
