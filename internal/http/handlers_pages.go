package http

import (
	"net/http"

	"finanzy/internal/core"
	"finanzy/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.ensureLoaded(r.Context()); err != nil {
		// The page still renders; the list shows the failure.
		log.FromContext(r.Context()).WarnContext(r.Context(), "Transactions not loaded", log.FieldError, err)
	}
	s.render(w, r, "index.html", s.view(s.listQuery(r)))
}

// handleTransactionList renders the filter bar, the current page of the
// history and the pagination controls.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureLoaded(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Transactions not loaded", log.FieldError, err)
	}
	q := s.listQuery(r)
	v := s.view(q)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Rendering transaction list",
		log.FieldCount, v.Page.Total,
		log.FieldPage, v.Page.Page,
		log.FieldPageSize, v.Page.PageSize)
	s.render(w, r, "transactions", v)
}

// handleSummary renders the three totals cards over the whole collection.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "summary", s.view(s.listQuery(r)))
}

// handleCategories renders the category options for ?type=. An unknown or
// missing type yields only the placeholder option.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	t, err := core.ParseTransactionType(r.URL.Query().Get("type"))
	var cats []string
	if err == nil && t.IsSet() {
		cats = core.CategoriesFor(t)
	}
	s.render(w, r, "categories", struct {
		Categories []string
		Selected   string
	}{Categories: cats, Selected: sanitizeInput(r.URL.Query().Get("selected"))})
}
