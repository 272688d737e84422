// Package query turns caller filter, sort and pagination input into
// materialized entities for one network.
package query

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/entity"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/order"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/predicate"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/where"
	logpkg "github.com/survivor-labs/survivor-indexer/internal/logger"
)

// DefaultSort orders by the block a record version became valid, newest first.
var DefaultSort = order.Key{Path: predicate.ValidFromPath, Direction: order.Descending}

// Service answers entity queries for a single network.
type Service struct {
	network   string
	codec     *codec.Codec
	compiler  *where.Compiler
	exec      Executor
	limits    request.Limits
	anomalies *prometheus.CounterVec
	logger    *zap.Logger
}

// New creates a query service with default limits.
func New(network string, c *codec.Codec, exec Executor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		network:  network,
		codec:    c,
		compiler: where.NewCompiler(c),
		exec:     exec,
		limits:   request.DefaultLimits(),
		logger:   logger,
	}
}

// WithLimits overrides the page size bounds.
func (s *Service) WithLimits(l request.Limits) *Service {
	s.limits = l
	return s
}

// WithAnomalyCounter sets the counter incremented for records that fail to
// materialize. Expected labels: network, entity.
func (s *Service) WithAnomalyCounter(c *prometheus.CounterVec) *Service {
	s.anomalies = c
	return s
}

// Network returns the network name the service reads from.
func (s *Service) Network() string { return s.network }

// Limits returns the page size bounds in effect.
func (s *Service) Limits() request.Limits { return s.limits }

// Request carries the caller input of one query.
type Request struct {
	Where   *where.Input
	OrderBy *order.Input
	Limit   *int
	Skip    *int
}

// Page is one window of materialized entities.
type Page[T any] struct {
	Items  []T
	Window request.Window
}

// Run checks the request against the schema of T, compiles it, executes it
// and materializes every record as T.
// Errors wrap domain.ErrInvalidRequest, domain.ErrStoreUnavailable or
// domain.ErrDataIntegrity.
func Run[T any, PT entity.Type[T]](ctx context.Context, s *Service, req Request) (Page[T], error) {
	name := entity.EntityOf[T, PT]()
	log := logpkg.FromContext(ctx, s.logger).With(zap.String("network", s.network), zap.String("entity", string(name)))

	schema, ok := entity.SchemaOf(name)
	if !ok {
		return Page[T]{}, fmt.Errorf("%w: no schema for %s", domain.ErrInvalidRequest, name)
	}
	in, err := conformWhere(schema, req.Where)
	if err != nil {
		log.Warn("rejected filter", zap.Error(err))
		return Page[T]{}, err
	}
	sortIn, err := conformOrder(schema, req.OrderBy)
	if err != nil {
		log.Warn("rejected sort", zap.Error(err))
		return Page[T]{}, err
	}

	p, err := s.compiler.Compile(in)
	if err != nil {
		log.Warn("rejected filter", zap.Error(err))
		return Page[T]{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	key := order.Resolve(sortIn, DefaultSort)
	w, err := s.limits.NewWindow(req.Limit, req.Skip)
	if err != nil {
		log.Warn("rejected window", zap.Error(err))
		return Page[T]{}, err
	}

	recs, err := s.exec.Execute(ctx, string(name), p, key, w)
	if err != nil {
		log.Error("store query failed", zap.Error(err))
		return Page[T]{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := entity.Materialize[T, PT](s.codec, rec)
		if err != nil {
			log.Error("stored record failed to materialize", zap.Error(err))
			if s.anomalies != nil {
				s.anomalies.WithLabelValues(s.network, string(name)).Inc()
			}
			return Page[T]{}, fmt.Errorf("%w: %w", domain.ErrDataIntegrity, err)
		}
		items = append(items, v)
	}
	return Page[T]{Items: items, Window: w}, nil
}
