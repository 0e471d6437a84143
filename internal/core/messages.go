package core

import "errors"

var userMessages = []struct {
	err error
	msg string
}{
	{ErrEmptyTitle, "Informe um título"},
	{ErrTitleTooLong, "O título deve ter no máximo 200 caracteres"},
	{ErrMissingType, "Selecione o tipo da transação"},
	{ErrInvalidType, "Tipo de transação inválido"},
	{ErrMissingCategory, "Selecione uma categoria"},
	{ErrCategoryMismatch, "A categoria não pertence ao tipo selecionado"},
	{ErrInvalidAmount, "Valor inválido"},
	{ErrMissingDate, "Informe uma data válida"},
	{ErrDateOutOfRange, "A data deve estar entre 01/01/2020 e hoje"},
	{ErrMissingPeriod, "Período não informado"},
	{ErrInvalidPeriod, "Período inválido"},
}

// UserMessage returns the Portuguese message shown for a validation error,
// or "" when err is not one of the package's sentinel errors.
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return ""
}

// IsValidationError reports whether err is a domain validation failure.
func IsValidationError(err error) bool {
	return UserMessage(err) != ""
}
