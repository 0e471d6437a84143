package http

import (
	"html/template"
	"strings"

	"finanzy/internal/core"
)

const maxFormBytes = 1 << 20

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// templateFuncs are available to every page and partial.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"brl": func(m core.Money, private bool) string {
			return core.FormatPrivate(m.Cents, private)
		},
		"cents": func(cents int64, private bool) string {
			return core.FormatPrivate(cents, private)
		},
		// formAmount is how an amount is shown back in the edit form (1234,56).
		"formAmount": func(m core.Money) string {
			return strings.Replace(m.Decimal().StringFixed(2), ".", ",", 1)
		},
		"isIncome": func(t core.TransactionType) bool { return t == core.Income },
		"inc":      func(n int) int { return n + 1 },
	}
}
