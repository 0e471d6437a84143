// Package api serves the transaction collection as a JSON resource at
// /transactions, the contract the web UI's remote client speaks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"finanzy/internal/core"
	"finanzy/internal/log"
	"finanzy/internal/storage"
)

const maxBodyBytes = 1 << 20

// Service is the slice of services.TransactionService the handlers need.
type Service interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Ready(ctx context.Context) error
}

type Handler struct {
	svc      Service
	validate *bodyValidator
	logger   *log.Logger
	now      func() time.Time
}

type Option func(*Handler)

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(svc Service, logger *log.Logger, opts ...Option) (*Handler, error) {
	v, err := newBodyValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	h := &Handler{svc: svc, validate: v, logger: logger.WithComponent(log.ComponentAPI), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the collection routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /transactions", h.list)
	mux.HandleFunc("POST /transactions", h.create)
	mux.HandleFunc("GET /transactions/{id}", h.get)
	mux.HandleFunc("PATCH /transactions/{id}", h.patch)
	mux.HandleFunc("PUT /transactions/{id}", h.put)
	mux.HandleFunc("DELETE /transactions/{id}", h.delete)
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /readyz", h.ready)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.normalize()
	if err := h.validate.Check(req); err != nil {
		h.fail(w, r, "create", err)
		return
	}
	tx, err := req.transaction(core.Today(h.now()))
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	saved, err := h.svc.Create(r.Context(), tx)
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().WithTransaction(saved).ToSlice()...)
	writeJSON(w, http.StatusCreated, saved)
}

// put replaces the whole record; the id in the path wins over the body.
func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.normalize()
	req.ID = id
	if err := h.validate.Check(req); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	tx, err := req.transaction(core.Today(h.now()))
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	h.save(w, r, tx)
}

// patch merges the fields present in the body onto the stored record.
func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	var req patchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.validate.Check(req); err != nil {
		h.fail(w, r, "update", err)
		return
	}
	tx, err := req.apply(current)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	h.save(w, r, tx)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, tx core.Transaction) {
	saved, err := h.svc.Update(r.Context(), tx)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", log.FieldTransactionID, id)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	msg := "corpo da requisição inválido"
	if errors.Is(err, io.EOF) {
		msg = "corpo da requisição vazio"
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "corpo da requisição muito grande")
		return false
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Invalid request body", log.FieldError, err)
	writeError(w, http.StatusBadRequest, msg)
	return false
}

// fail maps err to a status code and writes {"error": ...}.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Message)
	case core.IsValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, core.UserMessage(err))
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "transação não encontrada")
	case errors.Is(err, storage.ErrDuplicateID):
		writeError(w, http.StatusConflict, "já existe uma transação com este id")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), fmt.Sprintf("Failed to %s transaction", op),
			log.FieldOperation, op,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		writeError(w, http.StatusInternalServerError, "erro interno")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
