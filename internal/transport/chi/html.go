package chi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

const excerptRunes = 280

var indexTemplate = template.Must(
	template.New("index.html.tmpl").
		Funcs(template.FuncMap{"excerpt": excerpt}).
		ParseFS(templateFS, "templates/index.html.tmpl"),
)

type pageData struct {
	Jurisdictions []string
	Selected      string
	Query         string
	Examples      []Example
	Result        *pageResult
}

type pageResult struct {
	OK       bool
	Response string
	Matches  domain.MatchResult
	Kind     domain.ErrorKind
	Message  string
}

// Index handles GET /. The query and jurisdiction parameters prefill the form.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.render(w, http.StatusOK, s.page(q.Get("jurisdiction"), q.Get("query")))
}

// Ask handles POST / from the HTML form.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	query, jurisdiction := r.PostForm.Get("query"), r.PostForm.Get("jurisdiction")

	out := s.retrieval.HandleQuery(r.Context(), query, jurisdiction)

	data := s.page(jurisdiction, query)
	data.Result = &pageResult{OK: out.OK(), Response: out.Response, Matches: out.Matches}
	if !out.OK() {
		data.Result.Kind = out.Kind()
		data.Result.Message = out.Failure.Message
	}
	s.render(w, http.StatusOK, data)
}

func (s *Server) page(selected, query string) pageData {
	names := s.retrieval.Jurisdictions()
	if selected == "" && len(names) > 0 {
		selected = names[0]
	}
	return pageData{
		Jurisdictions: names,
		Selected:      selected,
		Query:         query,
		Examples:      s.examples,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("Render page failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	r := []rune(s)
	return string(r[:excerptRunes]) + "…"
}
