package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/domain"
	domlist "github.com/kailas-cloud/gridex/internal/domain/listing"
	gen "github.com/kailas-cloud/gridex/internal/transport/generated"
	healthuc "github.com/kailas-cloud/gridex/internal/usecase/health"
	"github.com/kailas-cloud/gridex/internal/version"
)

// Lister answers listing requests.
type Lister interface {
	List(ctx context.Context, resource string, raw domlist.Raw) (domlist.Response, error)
	Invalidate(ctx context.Context, resource string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	listing       Lister
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(listing Lister, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		listing: listing,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		invalidFilterHandler,
		sentinelHandler(domain.ErrInvalidFilterFormat, http.StatusBadRequest, gen.ErrorResponseCodeInvalidFilterFormat),
		sentinelHandler(domain.ErrInvalidParams, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrResourceNotFound, http.StatusNotFound, gen.ErrorResponseCodeResourceNotFound),
		sentinelHandler(domain.ErrBackendFailure, http.StatusServiceUnavailable, gen.ErrorResponseCodeBackendUnavailable),
	}
	return s
}

// ListRows handles GET /v1/resources/{resource}/rows.
func (s *Server) ListRows(w http.ResponseWriter, r *http.Request, resource gen.ResourceName, params gen.ListRowsParams) {
	annotate(r.Context(), zap.String("resource", resource))

	resp, err := s.listing.List(r.Context(), resource, rawFromGen(params))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	annotate(r.Context(), zap.String("view", string(resp.View)))
	writeJSON(w, http.StatusOK, resp)
}

// InvalidateCache handles POST /v1/resources/{resource}/cache:invalidate.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request, resource gen.ResourceName) {
	annotate(r.Context(), zap.String("resource", resource))

	if err := s.listing.Invalidate(r.Context(), resource); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status:  gen.HealthResponseStatus(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func rawFromGen(p gen.ListRowsParams) domlist.Raw {
	raw := domlist.Raw{
		Search:            deref(p.Search),
		Filters:           deref(p.Filters),
		Sort:              deref(p.Sort),
		GroupSpec:         deref(p.GroupSpec),
		GroupSummary:      deref(p.GroupSummary),
		TotalSummary:      deref(p.TotalSummary),
		RequireGroupCount: deref(p.RequireGroupCount),
		RequireTotalCount: deref(p.RequireTotalCount),
		Page:              p.Page,
		PageSize:          p.PageSize,
		Skip:              p.Skip,
		Take:              p.Take,
	}
	if p.Columns != nil {
		raw.Columns = *p.Columns
	}
	if p.SortDirection != nil {
		raw.SortDirection = string(*p.SortDirection)
	}
	return raw
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidFilterFormat,
		domain.ErrInvalidParams,
		domain.ErrResourceNotFound,
		domain.ErrBackendFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidFilterHandler echoes the parse failure back to the caller.
func invalidFilterHandler(w http.ResponseWriter, err error, _ string) bool {
	var ee *domain.EngineError
	if !errors.As(err, &ee) || ee.Kind != domain.KindInvalidFilterFormat {
		return false
	}
	writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeInvalidFilterFormat, ee.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
}
