// Package http serves the web UI: full pages and HTMX partials rendered
// from the embedded templates over the transaction store.
package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finanzy/internal/core"
	"finanzy/internal/ledger"
	"finanzy/internal/log"
	"finanzy/internal/metrics"
	"finanzy/internal/middleware/ratelimit"
	"finanzy/internal/middleware/security"
	"finanzy/internal/middleware/trace"
	"finanzy/internal/remote"
	"finanzy/internal/store"
	appweb "finanzy/web"
)

type Server struct {
	http.Server
	templates *template.Template
	store     *store.Store
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	logger    *log.Logger
	pageSize  int

	shutdownOnce sync.Once
}

// Options tunes NewServer. The zero value is usable.
type Options struct {
	Logger             *log.Logger
	Metrics            *metrics.Metrics
	PageSize           int
	RateLimitPerMinute int
	TrustedProxies     []string
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, st *store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	cfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		cfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		store:    st,
		metrics:  opts.Metrics,
		limiter:  ratelimit.NewLimiter(cfg),
		detector: security.NewDetector(),
		logger:   logger,
		pageSize: ledger.DefaultPageSize,
	}
	if ledger.IsValidPageSize(opts.PageSize) {
		s.pageSize = opts.PageSize
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/transactions", s.handleTransactionList)
	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /ui/categories", s.handleCategories)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions/{id}/edit", s.handleEditTransaction)
	mux.HandleFunc("POST /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("PATCH /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /transactions/{id}/delete", s.handleDeleteTransaction)

	mux.HandleFunc("GET /export.xlsx", s.handleExport)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ClientIP, s.onRateLimited)(handler)
	handler = s.flagSuspicious(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = trace.NewMiddleware(logger, s.detector.ClientIP, s.metrics).Middleware(handler)

	s.Server = http.Server{Addr: addr, Handler: handler}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.ObserveRateLimited()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").
		Header("Retry-After", "60").
		TriggerErrorNotification("Muitas requisições. Tente novamente em instantes.").
		Write(w)
}

// flagSuspicious logs and counts probe-looking requests; they are still served.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.Suspicious(r) {
			s.metrics.ObserveSuspicious()
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, s.detector.ClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady needs parsed templates and a loaded collection.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.ensureLoaded(ctx); err != nil {
		http.Error(w, "remote collection unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ensureLoaded retries the initial load until it has succeeded once.
func (s *Server) ensureLoaded(ctx context.Context) error {
	if s.store.Loaded() {
		return nil
	}
	return s.store.Load(ctx)
}

// render executes a template into w, logging failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			log.FieldTemplate, name,
			log.FieldOperation, log.OpRender)
	}
}

// mutationError maps a store failure to the response shown by the form.
func mutationError(err error) *HTMXResponseBuilder {
	switch {
	case core.IsValidationError(err):
		return UnprocessableEntityError(core.UserMessage(err))
	case errors.Is(err, remote.ErrNotFound):
		return NotFoundError("Transação não encontrada")
	case errors.Is(err, remote.ErrConflict):
		return ErrorResponse(http.StatusConflict, "Já existe uma transação com este id")
	default:
		return BadGatewayError("Não foi possível salvar. Tente novamente.").
			TriggerErrorNotification("Falha ao comunicar com o servidor")
	}
}

// pageView is the data shared by the full page and its partials.
type pageView struct {
	Query      ListQuery
	Page       ledger.Page
	Summary    ledger.Summary
	Loaded     bool
	Types      []core.TransactionType
	Periods    []core.Period
	Categories []string
	PageSizes  []int
	Today      string
	Earliest   string
}

// listQuery parses the history state of r, applying the configured page
// size when the request names none.
func (s *Server) listQuery(r *http.Request) ListQuery {
	query := r.URL.Query()
	q := ParseListQuery(query)
	if !query.Has("size") {
		q.Size = s.pageSize
	}
	return q
}

func (s *Server) view(q ListQuery) pageView {
	return pageView{
		Query:      q,
		Page:       s.store.View(q.Criteria, q.Size, q.Page),
		Summary:    s.store.Summary(),
		Loaded:     s.store.Loaded(),
		Types:      []core.TransactionType{core.Income, core.Expense},
		Periods:    core.Periods(),
		Categories: core.CategoriesFor(q.Criteria.Type),
		PageSizes:  ledger.PageSizeOptions,
		Today:      s.store.Today().String(),
		Earliest:   core.EarliestDate.String(),
	}
}
