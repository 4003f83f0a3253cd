package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	logpkg "github.com/kailas-cloud/lexai/internal/logger"
	healthuc "github.com/kailas-cloud/lexai/internal/usecase/health"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 64 << 10

// statusClientClosedRequest is the de facto status for a request the client abandoned.
const statusClientClosedRequest = 499

// Error codes returned in ErrorResponse.Code besides the failure kinds.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeInternal     = "internal_error"
)

// kindStatus maps failure kinds to HTTP statuses. Kinds not listed are 500.
var kindStatus = map[domain.ErrorKind]int{
	domain.KindInvalidJurisdiction: http.StatusBadRequest,
	domain.KindInvalidQuery:        http.StatusBadRequest,
	domain.KindNotFound:            http.StatusServiceUnavailable,
	domain.KindSchema:              http.StatusInternalServerError,
	domain.KindDataIntegrity:       http.StatusInternalServerError,
	domain.KindDimensionMismatch:   http.StatusInternalServerError,
	domain.KindProviderAuth:        http.StatusBadGateway,
	domain.KindProvider:            http.StatusBadGateway,
	domain.KindProviderTimeout:     http.StatusGatewayTimeout,
	domain.KindCanceled:            statusClientClosedRequest,
	domain.KindDeadlineExceeded:    http.StatusGatewayTimeout,
}

// Querier answers questions for a fixed set of jurisdictions.
type Querier interface {
	HandleQuery(ctx context.Context, query, jurisdiction string) domain.Outcome
	Jurisdictions() []string
}

// Server serves the JSON API, the HTML front end, health and metrics.
type Server struct {
	retrieval Querier
	health    *healthuc.Service
	examples  []Example
	logger    *zap.Logger
}

// Example is a sample question shown on the HTML form.
type Example struct {
	Jurisdiction string
	Query        string
}

// NewServer creates an HTTP server. health may be nil.
func NewServer(retrieval Querier, health *healthuc.Service, examples []Example, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		retrieval: retrieval,
		health:    health,
		examples:  examples,
		logger:    logger,
	}
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	Query        string `json:"query"`
	Jurisdiction string `json:"jurisdiction"`
}

// MatchResponse is one reference in a QueryResponse.
type MatchResponse struct {
	Rank     int     `json:"rank"`
	Index    int     `json:"index"`
	Distance float64 `json:"distance"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Content  string  `json:"content"`
}

// QueryResponse is the body returned by POST /v1/query.
type QueryResponse struct {
	Status   string          `json:"status"`
	Response string          `json:"response,omitempty"`
	Matches  []MatchResponse `json:"matches,omitempty"`
	Error    *ErrorResponse  `json:"error,omitempty"`
}

// ErrorResponse describes a failure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JurisdictionsResponse is the body of GET /v1/jurisdictions.
type JurisdictionsResponse struct {
	Jurisdictions []string `json:"jurisdictions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Query handles POST /v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out := s.retrieval.HandleQuery(r.Context(), req.Query, req.Jurisdiction)
	s.writeJSON(w, r, outcomeStatus(out), outcomeToResponse(out))
}

// ListJurisdictions handles GET /v1/jurisdictions.
func (s *Server) ListJurisdictions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, JurisdictionsResponse{Jurisdictions: s.retrieval.Jurisdictions()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}
	if s.health != nil {
		report = s.health.Check(r.Context())
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	s.writeJSON(w, r, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func outcomeStatus(out domain.Outcome) int {
	if out.OK() {
		return http.StatusOK
	}
	if st, ok := kindStatus[out.Kind()]; ok {
		return st
	}
	return http.StatusInternalServerError
}

func outcomeToResponse(out domain.Outcome) QueryResponse {
	resp := QueryResponse{Status: string(out.Status)}
	if !out.OK() {
		resp.Error = &ErrorResponse{Code: string(out.Kind()), Message: out.Failure.Message}
		return resp
	}
	resp.Response = out.Response
	resp.Matches = make([]MatchResponse, len(out.Matches))
	for i, m := range out.Matches {
		resp.Matches[i] = MatchResponse{
			Rank:     m.Rank,
			Index:    m.Index,
			Distance: m.Distance,
			URL:      m.Record.URL,
			Title:    m.Record.Title,
			Subtitle: m.Record.Subtitle,
			Content:  strings.TrimSpace(m.Record.Content),
		}
	}
	return resp
}

// encodeFailureBody replaces a response body that could not be encoded.
var encodeFailureBody = []byte(`{"code":"` + codeInternal + `","message":"response could not be encoded"}` + "\n")

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 instead of a truncated body. The encode or write error is returned.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(encodeFailureBody)
		return fmt.Errorf("encode %T: %w", v, err)
	}
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// writeJSON writes v and logs a failed encode or write with the request logger.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Error("Failed to write response",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}

// writeError writes a fixed-shape error body; it cannot fail to encode.
func writeError(w http.ResponseWriter, status int, code, message string) {
	_ = writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

