package http

import (
	"fmt"
	"net/http"

	"finanzy/internal/core"
	"finanzy/internal/log"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	draft := DraftFromForm(func(key string) string { return sanitizeInput(r.PostForm.Get(key)) })

	tx, err := core.NewTransaction(draft, s.store.Today())
	if err != nil {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Rejected transaction form",
			log.FieldError, err,
			log.FieldOperation, log.OpValidate)
		UnprocessableEntityError(core.UserMessage(err)).Write(w)
		return
	}

	saved, err := s.store.Create(r.Context(), tx)
	if err != nil {
		mutationError(err).Write(w)
		return
	}

	msg := fmt.Sprintf("Transação registrada: %s (%s)", saved.Title, core.FormatBRL(saved.Amount.Cents))
	NewHTMXResponse().
		TriggerTransactionCreated(saved.ID).
		TriggerFormReset().
		TriggerSuccessNotification(msg).
		BodyHTML("").
		Write(w)
}

// handleEditTransaction renders the edit modal prefilled with the record.
func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		NotFoundError("Transação não encontrada").Write(w)
		return
	}
	s.render(w, r, "edit", struct {
		Tx         core.Transaction
		Types      []core.TransactionType
		Categories []string
		Today      string
		Earliest   string
	}{
		Tx:         tx,
		Types:      []core.TransactionType{core.Income, core.Expense},
		Categories: core.CategoriesFor(tx.Type),
		Today:      s.store.Today().String(),
		Earliest:   core.EarliestDate.String(),
	})
}

// handleUpdateTransaction applies the edit form to the stored record. The
// period stays the one classified at creation.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	base, ok := s.store.Get(id)
	if !ok {
		NotFoundError("Transação não encontrada").Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}

	tx, err := core.ApplyDraft(base, DraftFromForm(p.Get), s.store.Today())
	if err != nil {
		UnprocessableEntityError(core.UserMessage(err)).Write(w)
		return
	}

	saved, err := s.store.Update(r.Context(), tx)
	if err != nil {
		mutationError(err).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerTransactionUpdated(saved.ID).
		TriggerModalClose().
		TriggerSuccessNotification("Transação atualizada").
		BodyHTML("").
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		mutationError(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerSuccessNotification("Transação excluída").
		BodyHTML("").
		Write(w)
}
