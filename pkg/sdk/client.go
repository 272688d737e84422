package survivor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/survivor-labs/survivor-indexer/internal/db"
	dbPostgres "github.com/survivor-labs/survivor-indexer/internal/db/postgres"
	dbRedis "github.com/survivor-labs/survivor-indexer/internal/db/redis"
	"github.com/survivor-labs/survivor-indexer/internal/domain/codec"
	"github.com/survivor-labs/survivor-indexer/internal/domain/entity"
	"github.com/survivor-labs/survivor-indexer/internal/domain/query/request"
	"github.com/survivor-labs/survivor-indexer/internal/domain/vocab"
	"github.com/survivor-labs/survivor-indexer/internal/repository/querycache"
	"github.com/survivor-labs/survivor-indexer/internal/repository/snapshot"
	healthuc "github.com/survivor-labs/survivor-indexer/internal/usecase/health"
	queryuc "github.com/survivor-labs/survivor-indexer/internal/usecase/query"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultNetwork          = "mainnet"
)

// cacheStore is the Redis backend of the optional query cache.
type cacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close()
}

// Client is the survivor SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	cache     cacheStore
	querySvc  *queryuc.Service
	healthSvc healthChecker
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("survivor: database dsn required (use WithPostgres)")
	}

	store, err := dbPostgres.NewStore(ctx, dbPostgres.Config{DSN: cfg.dsn, MaxConns: cfg.maxConns})
	if err != nil {
		return nil, fmt.Errorf("survivor: create postgres store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("survivor: database not ready: %w", err)
	}

	var cache cacheStore
	if len(cfg.cacheAddrs) > 0 && cfg.cacheTTL > 0 {
		rs, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("survivor: create cache store: %w", err)
		}
		cache = rs
	}

	c, err := wireClient(store, cache, cfg)
	if err != nil {
		store.Close()
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cache cacheStore, cfg *clientConfig) (*Client, error) {
	reg, err := loadVocabulary(cfg.vocabularyPath)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	network := cfg.network
	if network == "" {
		network = defaultNetwork
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("network", network))

	var finder db.Finder = store
	var cachePinger healthuc.Pinger
	if cache != nil {
		finder = querycache.New(store, cache, network, cfg.cacheTTL, nil, logger)
		cachePinger = cache
	}

	svc := queryuc.New(network, codec.New(reg), snapshot.New(finder, network, snapshot.Metrics{}), logger)
	if cfg.defaultLimit > 0 || cfg.maxLimit > 0 {
		limits := request.DefaultLimits()
		if cfg.defaultLimit > 0 {
			limits.Default = cfg.defaultLimit
		}
		if cfg.maxLimit > 0 {
			limits.Max = cfg.maxLimit
		}
		if limits.Default > limits.Max {
			return nil, fmt.Errorf("survivor: default limit %d exceeds max limit %d", limits.Default, limits.Max)
		}
		svc = svc.WithLimits(limits)
	}

	return &Client{
		store:     store,
		cache:     cache,
		querySvc:  svc,
		healthSvc: healthuc.New(map[string]healthuc.Pinger{network: store}, cachePinger),
		obs:       obs,
	}, nil
}

func loadVocabulary(path string) (*vocab.Registry, error) {
	if path == "" {
		reg, err := vocab.Default()
		if err != nil {
			return nil, fmt.Errorf("survivor: built-in vocabulary: %w", err)
		}
		return reg, nil
	}
	reg, err := vocab.Load(path)
	if err != nil {
		return nil, fmt.Errorf("survivor: %w", err)
	}
	return reg, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.cache != nil {
		c.cache.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, -1, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Adventurers returns one page of current adventurer versions.
func (c *Client) Adventurers(ctx context.Context, q Query) ([]Adventurer, error) {
	return find[entity.Adventurer](ctx, c, q)
}

// Scores returns one page of current score versions.
func (c *Client) Scores(ctx context.Context, q Query) ([]Score, error) {
	return find[entity.Score](ctx, c, q)
}

// Discoveries returns one page of current discovery versions.
func (c *Client) Discoveries(ctx context.Context, q Query) ([]Discovery, error) {
	return find[entity.Discovery](ctx, c, q)
}

// Beasts returns one page of current beast versions.
func (c *Client) Beasts(ctx context.Context, q Query) ([]Beast, error) {
	return find[entity.Beast](ctx, c, q)
}

// Battles returns one page of current battle versions.
func (c *Client) Battles(ctx context.Context, q Query) ([]Battle, error) {
	return find[entity.Battle](ctx, c, q)
}

// Items returns one page of current item versions.
func (c *Client) Items(ctx context.Context, q Query) ([]Item, error) {
	return find[entity.Item](ctx, c, q)
}

func find[T any, PT entity.Type[T]](ctx context.Context, c *Client, q Query) (items []T, err error) {
	start := time.Now()
	defer func() { c.obs.observe(string(entity.EntityOf[T, PT]()), start, len(items), err) }()

	page, err := queryuc.Run[T, PT](ctx, c.querySvc, queryuc.Request{
		Where:   q.Where,
		OrderBy: q.OrderBy,
		Limit:   q.Limit,
		Skip:    q.Skip,
	})
	if err != nil {
		return nil, fmt.Errorf("survivor: %w", err)
	}
	return page.Items, nil
}
