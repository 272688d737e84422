// Package chi serves the entity query API over HTTP.
package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/entity"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
	healthuc "github.com/survivor-labs/survivor-indexer/internal/usecase/health"
	queryuc "github.com/survivor-labs/survivor-indexer/internal/usecase/query"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// runner executes a query for one entity type and returns its items.
type runner func(ctx context.Context, svc *queryuc.Service, req queryuc.Request) (any, request.Window, error)

func runAs[T any, PT entity.Type[T]]() runner {
	return func(ctx context.Context, svc *queryuc.Service, req queryuc.Request) (any, request.Window, error) {
		page, err := queryuc.Run[T, PT](ctx, svc, req)
		return page.Items, page.Window, err
	}
}

var runners = map[entity.Name]runner{
	entity.Adventurers: runAs[entity.Adventurer](),
	entity.Scores:      runAs[entity.Score](),
	entity.Discoveries: runAs[entity.Discovery](),
	entity.Beasts:      runAs[entity.Beast](),
	entity.Battles:     runAs[entity.Battle](),
	entity.Items:       runAs[entity.Item](),
}

// Server handles entity queries for every configured network.
type Server struct {
	networks      map[string]*queryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. networks maps a network name to its
// query service.
func NewServer(networks map[string]*queryuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		networks: networks,
		health:   health,
		logger:   logger,
	}
	// Order matters: materialization failures also wrap decode sentinels.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDataIntegrity, http.StatusInternalServerError, ErrorCodeDataIntegrity),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
		sentinelHandler(domain.ErrUnknownNetwork, http.StatusNotFound, ErrorCodeNetworkNotFound),
		sentinelHandler(domain.ErrInvalidScalarEncoding, http.StatusBadRequest, ErrorCodeInvalidScalar),
		sentinelHandler(domain.ErrUnknownSymbolicName, http.StatusBadRequest, ErrorCodeUnknownSymbol),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/v1/{network}/{entity}", s.Query)
	r.Get("/v1/{network}/{entity}", s.Browse)
}

// Query handles POST /v1/{network}/{entity}.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	svc, schema, run, ok := s.resolve(w, r)
	if !ok {
		return
	}

	var body QueryRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
			return
		}
	}

	whereIn, err := decodeWhere(schema, body.Where)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	orderIn, err := decodeOrder(schema, body.OrderBy)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.run(w, r, svc, run, queryuc.Request{
		Where:   whereIn,
		OrderBy: orderIn,
		Limit:   body.Limit,
		Skip:    body.Skip,
	})
}

// Browse handles GET /v1/{network}/{entity}?limit=&skip= with no filter.
func (s *Server) Browse(w http.ResponseWriter, r *http.Request) {
	svc, _, run, ok := s.resolve(w, r)
	if !ok {
		return
	}

	var req queryuc.Request
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &req.Limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid limit parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "skip", r.URL.Query(), &req.Skip); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid skip parameter")
		return
	}

	s.run(w, r, svc, run, req)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, svc *queryuc.Service, run runner, req queryuc.Request) {
	items, win, err := run(r.Context(), svc, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Items: items, Limit: win.Limit, Skip: win.Skip})
}

// resolve looks up the network service and entity named by the path.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*queryuc.Service, *entity.Schema, runner, bool) {
	network := gochi.URLParam(r, "network")
	svc, ok := s.networks[network]
	if !ok {
		s.handleDomainError(w, fmt.Errorf("%w: %q", domain.ErrUnknownNetwork, network))
		return nil, nil, nil, false
	}

	name := entity.Name(gochi.URLParam(r, "entity"))
	run, ok := runners[name]
	schema, hasSchema := entity.SchemaOf(name)
	if !ok || !hasSchema {
		writeError(w, http.StatusNotFound, ErrorCodeEntityNotFound, fmt.Sprintf("unknown entity %q", name))
		return nil, nil, nil, false
	}
	return svc, schema, run, true
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client message without exposing internals.
// Caller errors echo the offending input; server errors only name the sentinel.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrUnknownNetwork) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrDataIntegrity,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
