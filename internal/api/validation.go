package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptbr_translations "github.com/go-playground/validator/v10/translations/pt_BR"

	"finanzy/internal/core"
)

// bodyValidator checks request bodies and renders failures in Portuguese.
type bodyValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newBodyValidator() (*bodyValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		_, err := core.ParsePeriod(fl.Field().String())
		return err == nil
	}); err != nil {
		return nil, fmt.Errorf("register period validation: %w", err)
	}
	v.RegisterStructValidation(validateCreateCategory, createRequest{})
	v.RegisterStructValidation(validatePatchCategory, patchRequest{})

	locale := pt_BR.New()
	trans, _ := ut.New(locale, locale).GetTranslator("pt_BR")
	if err := ptbr_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}
	for tag, text := range map[string]string{
		"datetime": "{0} deve ser uma data no formato AAAA-MM-DD",
		"period":   "{0} deve ser um período válido",
		"category": "{0} não pertence ao tipo informado",
	} {
		if err := v.RegisterTranslation(tag, trans, addTranslation(tag, text), translate(tag)); err != nil {
			return nil, fmt.Errorf("register %s translation: %w", tag, err)
		}
	}

	return &bodyValidator{validate: v, trans: trans}, nil
}

func addTranslation(tag, text string) validator.RegisterTranslationsFunc {
	return func(t ut.Translator) error {
		return t.Add(tag, text, true)
	}
}

func translate(tag string) validator.TranslationFunc {
	return func(t ut.Translator, fe validator.FieldError) string {
		msg, err := t.T(tag, fe.Field())
		if err != nil {
			return fe.Error()
		}
		return msg
	}
}

// validateCreateCategory checks the category against the type's vocabulary
// once both are present.
func validateCreateCategory(sl validator.StructLevel) {
	req := sl.Current().Interface().(createRequest)
	t := core.TransactionType(req.Type)
	if t.IsSet() && req.Category != "" && !core.IsValidCategory(t, req.Category) {
		sl.ReportError(req.Category, "category", "Category", "category", "")
	}
}

// validatePatchCategory only runs when both fields are patched together;
// the merged record is checked again afterwards.
func validatePatchCategory(sl validator.StructLevel) {
	req := sl.Current().Interface().(patchRequest)
	if req.Type == nil || req.Category == nil {
		return
	}
	t := core.TransactionType(*req.Type)
	if t.IsSet() && !core.IsValidCategory(t, *req.Category) {
		sl.ReportError(*req.Category, "category", "Category", "category", "")
	}
}

// Check validates body and joins the translated messages.
func (b *bodyValidator) Check(body any) error {
	err := b.validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(b.trans))
	}
	return &ValidationError{Message: strings.Join(msgs, ", ")}
}

// ValidationError is a request body that failed validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
