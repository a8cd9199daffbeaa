package gridex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/db/sqlstore"
	"github.com/kailas-cloud/gridex/internal/domain"
	domlist "github.com/kailas-cloud/gridex/internal/domain/listing"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/repository/resource"
	aggregateuc "github.com/kailas-cloud/gridex/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/gridex/internal/usecase/health"
	listinguc "github.com/kailas-cloud/gridex/internal/usecase/listing"
	provisionuc "github.com/kailas-cloud/gridex/internal/usecase/provision"
	searchuc "github.com/kailas-cloud/gridex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by fakes in tests.
type listingUseCase interface {
	List(ctx context.Context, resource string, raw domlist.Raw) (domlist.Response, error)
}

type registryUseCase interface {
	Get(ctx context.Context, name string) (schema.Resource, error)
	List(ctx context.Context) []schema.Resource
}

// Client is the gridex SDK entry point.
type Client struct {
	store     *sqlstore.Store
	listing   listingUseCase
	registry  registryUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client, connects to the database and, with
// WithEnsureIndexes, provisions the indexes resources ask for.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("gridex: database not ready: %w", err)
	}
	caps, err := store.DetectCapabilities(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("gridex: detect capabilities: %w", err)
	}

	if cfg.ensureIndexes {
		provLogger := cfg.logger
		if provLogger == nil {
			provLogger = zap.NewNop()
		}
		if err := provisionuc.New(store, caps, provLogger).Ensure(ctx, registry.List(ctx)); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("gridex: ensure indexes: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	listingSvc := listinguc.New(registry, searchuc.New(store, caps), aggregateuc.New(store), store).
		WithPagination(cfg.defaultPageSize, cfg.maxPageSize)

	return &Client{
		store:     store,
		listing:   listingSvc,
		registry:  registry,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}, nil
}

func buildRegistry(cfg *clientConfig) (*resource.Registry, error) {
	var declared []schema.Resource
	if cfg.resourcesFile != "" {
		fromFile, err := resource.Load(cfg.resourcesFile)
		if err != nil {
			return nil, fmt.Errorf("gridex: %w", err)
		}
		declared = append(declared, fromFile.List(context.Background())...)
	}
	for _, r := range cfg.resources {
		res, err := toSchemaResource(r)
		if err != nil {
			return nil, fmt.Errorf("gridex: %w", err)
		}
		declared = append(declared, res)
	}
	if len(declared) == 0 {
		return nil, errors.New("gridex: no resources declared (use WithResource or WithResourcesFile)")
	}
	registry, err := resource.New(declared...)
	if err != nil {
		return nil, fmt.Errorf("gridex: %w", err)
	}
	return registry, nil
}

func createStore(cfg *clientConfig) (*sqlstore.Store, error) {
	if cfg.db != nil {
		s, err := sqlstore.Wrap(cfg.db, cfg.driver)
		if err != nil {
			return nil, fmt.Errorf("gridex: wrap database: %w", err)
		}
		return s, nil
	}
	if cfg.driver == "" {
		return nil, errors.New("gridex: database required (use WithPostgres, WithSQLite, WithMySQL or WithDB)")
	}
	s, err := sqlstore.NewStore(sqlstore.Config{Driver: cfg.driver, DSN: cfg.dsn})
	if err != nil {
		return nil, fmt.Errorf("gridex: create %s store: %w", cfg.driver, err)
	}
	return s, nil
}

// Close releases all resources.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// List answers one listing request against a declared resource. Use
// ContextWithTenant to scope it to a tenant.
func (c *Client) List(ctx context.Context, resourceName string, p Params) (_ *Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", resourceName, start, err) }()

	raw, err := toRaw(p)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resourceName, err)
	}
	resp, err := c.listing.List(ctx, resourceName, raw)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resourceName, err)
	}
	return fromResponse(resp), nil
}

// Resource returns the declaration of a resource.
func (c *Client) Resource(ctx context.Context, name string) (Resource, error) {
	res, err := c.registry.Get(ctx, name)
	if err != nil {
		return Resource{}, fmt.Errorf("get resource: %w", err)
	}
	return fromSchemaResource(res), nil
}

// Resources returns all declared resources in declaration order.
func (c *Client) Resources(ctx context.Context) []Resource {
	list := c.registry.List(ctx)
	out := make([]Resource, len(list))
	for i, r := range list {
		out[i] = fromSchemaResource(r)
	}
	return out
}

// ContextWithTenant scopes listings made with the returned context to the
// tenant with the given UUID. Resources without a tenant column ignore it.
func ContextWithTenant(ctx context.Context, tenantID string) (context.Context, error) {
	t, err := domain.ParseTenant(tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return domain.ContextWithTenant(ctx, t), nil
}
