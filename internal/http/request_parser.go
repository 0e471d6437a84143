package http

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finanzy/internal/core"
	"finanzy/internal/ledger"
)

// ListQuery is the state of the history view carried in the query string:
// filter criteria, page, page size, the open menu and privacy mode.
type ListQuery struct {
	Criteria ledger.Criteria
	Page     int
	Size     int
	Menu     Menu
	Private  bool
}

// ParseListQuery reads q, type, period, category, page, size, menu and
// private. Unknown type and period values are treated as absent. The
// category is kept as given, even when it does not belong to the selected
// type, so that the filter can match nothing.
func ParseListQuery(query url.Values) ListQuery {
	q := ListQuery{
		Page: 1,
		Size: ledger.DefaultPageSize,
		Menu: ParseMenu(query.Get("menu")),
	}
	q.Criteria.Search = sanitizeInput(query.Get("q"))

	if t, err := core.ParseTransactionType(strings.TrimSpace(query.Get("type"))); err == nil {
		q.Criteria.Type = t
	}
	if p, err := core.ParsePeriod(strings.TrimSpace(query.Get("period"))); err == nil {
		q.Criteria.Period = p
	}
	q.Criteria.Category = sanitizeInput(query.Get("category"))

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			q.Page = p
		}
	}
	if v := strings.TrimSpace(query.Get("size")); v != "" {
		if s, err := strconv.Atoi(v); err == nil && ledger.IsValidPageSize(s) {
			q.Size = s
		}
	}
	switch strings.TrimSpace(query.Get("private")) {
	case "1", "true", "on":
		q.Private = true
	}
	return q
}

// Values encodes q back into query parameters. Empty criteria, the first
// page and a closed menu are omitted; the page size is always kept.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Criteria.Search != "" {
		v.Set("q", q.Criteria.Search)
	}
	if q.Criteria.Type.IsSet() {
		v.Set("type", string(q.Criteria.Type))
	}
	if q.Criteria.Period.IsSet() {
		v.Set("period", string(q.Criteria.Period))
	}
	if q.Criteria.Category != "" {
		v.Set("category", q.Criteria.Category)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	v.Set("size", strconv.Itoa(q.Size))
	if q.Menu != MenuNone {
		v.Set("menu", string(q.Menu))
	}
	if q.Private {
		v.Set("private", "1")
	}
	return v
}

// With returns the encoded query with key overridden. Changing a filter or
// the page size goes back to the first page and closes the menu.
func (q ListQuery) With(key string, value any) template.URL {
	v := q.Values()
	s := strings.TrimSpace(toString(value))
	switch key {
	case "q", "type", "period", "category", "size":
		v.Del("page")
		v.Del("menu")
	}
	if key == "type" {
		v.Del("category")
	}
	if s == "" {
		v.Del(key)
	} else {
		v.Set(key, s)
	}
	return template.URL(v.Encode())
}

// TogglePrivate is the encoded query with privacy mode flipped.
func (q ListQuery) TogglePrivate() template.URL {
	q.Private = !q.Private
	q.Menu = MenuNone
	return q.Encode()
}

// Encode is the query string of q as is. Values are already escaped.
func (q ListQuery) Encode() template.URL {
	return template.URL(q.Values().Encode())
}

// DraftFromForm collects the entry form fields.
func DraftFromForm(get func(string) string) core.Draft {
	return core.Draft{
		Title:    get("title"),
		Amount:   get("amount"),
		Type:     get("type"),
		Category: get("category"),
		Date:     get("date"),
	}
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(toString(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case Menu:
		return string(val)
	case core.TransactionType:
		return string(val)
	case core.Period:
		return string(val)
	default:
		return ""
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de requisição inválido")
	}
	return nil
}
