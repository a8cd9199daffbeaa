package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/filter"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	domlist "github.com/kailas-cloud/gridex/internal/domain/listing"
	"github.com/kailas-cloud/gridex/internal/domain/ordering"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/request"
	"github.com/kailas-cloud/gridex/internal/logger"
	"github.com/kailas-cloud/gridex/internal/metrics"
	"github.com/kailas-cloud/gridex/internal/usecase/aggregate"
)

// Service is the listing orchestrator. Each request runs parse, schema
// lookup and filter evaluation, then exactly one of the grouped, search or
// flat branches.
type Service struct {
	schemas    SchemaProvider
	searcher   Searcher
	aggregator Aggregator
	rows       RowReader
	cache      Cache
	limits     domlist.Limits
}

// New creates a listing service.
func New(schemas SchemaProvider, searcher Searcher, aggregator Aggregator, rows RowReader) *Service {
	return &Service{
		schemas:    schemas,
		searcher:   searcher,
		aggregator: aggregator,
		rows:       rows,
		limits:     domlist.DefaultLimits(),
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.limits.DefaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.limits.MaxPageSize = maxPageSize
	}
	return s
}

// WithCache enables the response cache.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// List answers one listing request. Format errors are returned before any
// backend query runs.
func (s *Service) List(ctx context.Context, resource string, raw domlist.Raw) (resp domlist.Response, err error) {
	label := "unknown"
	view := domlist.ViewFlat
	defer func() { recordRequest(label, view, err) }()

	start := time.Now()
	p, err := domlist.Parse(raw, s.limits)
	observe("parse", start)
	if err != nil {
		return domlist.Response{}, err
	}
	switch {
	case p.IsGrouped():
		view = domlist.ViewGrouped
	case request.Normalize(p.Search) != "":
		view = domlist.ViewSearch
	}

	res, err := s.schemas.Get(ctx, resource)
	if err != nil {
		return domlist.Response{}, fmt.Errorf("get resource: %w", err)
	}
	label = res.Name()

	tenant := domain.TenantFromContext(ctx)
	key := s.cacheKey(ctx, res, tenant, p)
	if key != "" {
		if cached, ok := s.cache.Get(ctx, res.Name(), tenant.String(), key); ok {
			return cached, nil
		}
	}

	start = time.Now()
	filterPred, dropped, err := filter.Evaluate(p.Filters, res)
	observe("filter", start)
	recordDropped(ctx, res, "filter", dropped)
	if err != nil {
		return domlist.Response{}, err
	}
	where := predicate.AndOf(baseFilter(res, tenant), filterPred)

	switch view {
	case domlist.ViewGrouped:
		resp, err = s.grouped(ctx, res, p, where)
	case domlist.ViewSearch:
		resp, err = s.search(ctx, res, p, where)
	default:
		resp, err = s.flat(ctx, res, p, where)
	}
	if err != nil {
		return domlist.Response{}, err
	}
	view = resp.View

	if key != "" {
		s.cache.Put(ctx, res.Name(), tenant.String(), key, resp)
	}
	return resp, nil
}

// Invalidate drops every cached page of resource for the caller's tenant.
func (s *Service) Invalidate(ctx context.Context, resource string) error {
	res, err := s.schemas.Get(ctx, resource)
	if err != nil {
		return fmt.Errorf("get resource: %w", err)
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, res.Name(), domain.TenantFromContext(ctx).String()); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

// grouped falls back to the flat view when no group selector binds.
func (s *Service) grouped(
	ctx context.Context, res schema.Resource, p domlist.Params, where predicate.Predicate,
) (domlist.Response, error) {
	levels, dropped := group.Bind(p.Group, res)
	recordDropped(ctx, res, "group", dropped)
	if len(levels) == 0 {
		return s.flat(ctx, res, p, where)
	}
	sums, dropped := group.BindSummaries(p.GroupSummary, res)
	recordDropped(ctx, res, "summary", dropped)

	q := aggregate.Query{
		Table:     res.Table(),
		Where:     where,
		Levels:    levels,
		Summaries: sums,
		Offset:    p.Page.Offset(),
		Limit:     p.Page.Limit(),
	}
	if err := checkpoint(ctx, "aggregate"); err != nil {
		return domlist.Response{}, err
	}
	start := time.Now()
	out, err := s.aggregator.Build(ctx, q)
	observe("aggregate", start)
	if err != nil {
		return domlist.Response{}, err
	}

	start = time.Now()
	tree, err := group.Format(out.Rows, out.Levels)
	observe("format", start)
	if err != nil {
		return domlist.Response{}, fmt.Errorf("format groups: %w", err)
	}
	resp := domlist.Response{View: domlist.ViewGrouped, Groups: tree}

	if p.RequireGroupCount {
		if err := checkpoint(ctx, "count_groups"); err != nil {
			return domlist.Response{}, err
		}
		n, err := s.aggregator.CountGroups(ctx, q)
		if err != nil {
			return domlist.Response{}, err
		}
		resp.GroupCount = domlist.Int64(n)
	}
	if p.RequireTotalCount {
		n, err := s.count(ctx, res, where)
		if err != nil {
			return domlist.Response{}, err
		}
		resp.TotalCount = domlist.Int64(n)
	}
	return resp, nil
}

// search returns rows in rank order. The capped result is only sliced when
// the caller asked for a page.
func (s *Service) search(
	ctx context.Context, res schema.Resource, p domlist.Params, where predicate.Predicate,
) (domlist.Response, error) {
	cols, dropped := res.ResolveSearchColumns(p.Columns)
	recordDropped(ctx, res, "column", dropped)

	req, err := request.New(p.Search, cols, where, res.SearchConfig())
	if err != nil {
		return domlist.Response{}, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	if err := checkpoint(ctx, "search"); err != nil {
		return domlist.Response{}, err
	}
	start := time.Now()
	ranked, err := s.searcher.Search(ctx, res, &req)
	observe("search", start)
	if err != nil {
		return domlist.Response{}, err
	}

	rows := ranked.Rows()
	resp := domlist.Response{View: domlist.ViewSearch}
	if p.RequireTotalCount {
		resp.TotalCount = domlist.Int64(int64(len(rows)))
	}
	if p.Page.IsExplicit() {
		rows = domlist.Slice(rows, p.Page)
	}
	resp.Rows = fieldRows(res, rows)

	sums, dropped := group.BindSummaries(p.TotalSummary, res)
	recordDropped(ctx, res, "summary", dropped)
	if len(sums) == 0 {
		return resp, nil
	}
	if ranked.Len() == 0 {
		resp.Summary = aggregate.EmptySummary(sums)
		return resp, nil
	}
	if err := checkpoint(ctx, "totals"); err != nil {
		return domlist.Response{}, err
	}
	ids := predicate.In{Column: res.PrimaryKey(), Values: ranked.IDs()}
	_, values, err := s.aggregator.Totals(ctx, res.Table(), predicate.AndOf(where, ids), sums)
	if err != nil {
		return domlist.Response{}, err
	}
	resp.Summary = values
	return resp, nil
}

func (s *Service) flat(
	ctx context.Context, res schema.Resource, p domlist.Params, where predicate.Predicate,
) (domlist.Response, error) {
	spec, unknown := ordering.Resolve(p.Sort, p.SortDirection, res, false)
	if unknown {
		recordDropped(ctx, res, "sort", []string{p.Sort})
	}
	order := make([]db.OrderKey, 0, len(spec.Terms()))
	for _, t := range spec.Terms() {
		order = append(order, db.OrderKey{Column: t.Column, Descending: t.Descending})
	}

	if err := checkpoint(ctx, "scan"); err != nil {
		return domlist.Response{}, err
	}
	start := time.Now()
	out, err := s.rows.RunFilteredScan(ctx, &db.ScanQuery{
		Table:      res.Table(),
		PrimaryKey: res.PrimaryKey(),
		Columns:    res.Columns(),
		Where:      where,
		Order:      order,
		Limit:      p.Page.Limit(),
		Offset:     p.Page.Offset(),
	})
	observe("scan", start)
	if err != nil {
		return domlist.Response{}, domain.NewBackendFailure("scan", err)
	}
	rows := make([]map[string]any, len(out.Entries))
	for i, e := range out.Entries {
		rows[i] = e.Fields
	}
	resp := domlist.Response{View: domlist.ViewFlat, Rows: fieldRows(res, rows)}

	sums, dropped := group.BindSummaries(p.TotalSummary, res)
	recordDropped(ctx, res, "summary", dropped)
	switch {
	case len(sums) > 0:
		if err := checkpoint(ctx, "totals"); err != nil {
			return domlist.Response{}, err
		}
		start = time.Now()
		n, values, err := s.aggregator.Totals(ctx, res.Table(), where, sums)
		observe("totals", start)
		if err != nil {
			return domlist.Response{}, err
		}
		resp.Summary = values
		if p.RequireTotalCount {
			resp.TotalCount = domlist.Int64(n)
		}
	case p.RequireTotalCount:
		n, err := s.count(ctx, res, where)
		if err != nil {
			return domlist.Response{}, err
		}
		resp.TotalCount = domlist.Int64(n)
	}
	return resp, nil
}

func (s *Service) count(ctx context.Context, res schema.Resource, where predicate.Predicate) (int64, error) {
	if err := checkpoint(ctx, "count"); err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := s.rows.Count(ctx, &db.CountQuery{Table: res.Table(), Where: where})
	observe("count", start)
	if err != nil {
		return 0, domain.NewBackendFailure("count", err)
	}
	return n, nil
}

func (s *Service) cacheKey(ctx context.Context, res schema.Resource, tenant domain.Tenant, p domlist.Params) string {
	if s.cache == nil {
		return ""
	}
	key, err := p.CacheKey(res.Name(), tenant.String())
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to build cache key", zap.String("resource", res.Name()), zap.Error(err))
		return ""
	}
	return key
}

// baseFilter restricts every query to live rows of the caller's tenant.
func baseFilter(res schema.Resource, tenant domain.Tenant) predicate.Predicate {
	var terms []predicate.Predicate
	if col := res.SoftDeleteColumn(); col != "" {
		terms = append(terms, predicate.Eq{Column: col, Value: false})
	}
	if col := res.TenantColumn(); col != "" && !tenant.IsZero() {
		terms = append(terms, predicate.Eq{Column: col, Value: tenant.String()})
	}
	return predicate.AndOf(terms...)
}

// fieldRows re-keys column-keyed rows by declared field name. Columns with
// no field (the primary key) keep their column name.
func fieldRows(res schema.Resource, rows []map[string]any) []map[string]any {
	names := make(map[string]string)
	for _, f := range res.Fields() {
		names[f.Column()] = f.Name()
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for col, v := range row {
			if n, ok := names[col]; ok {
				col = n
			}
			m[col] = v
		}
		out[i] = m
	}
	return out
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewBackendFailure(stage, err)
	}
	return nil
}

func recordDropped(ctx context.Context, res schema.Resource, kind string, names []string) {
	for _, n := range names {
		metrics.UnknownFieldsTotal.WithLabelValues(kind).Inc()
		logger.FromContext(ctx).Warn("Dropped unknown field",
			zap.String("resource", res.Name()),
			zap.String("field", n),
			zap.String("kind", kind),
			zap.Error(&domain.UnknownFieldError{Resource: res.Name(), Field: n, Context: kind}),
		)
	}
}

func observe(stage string, start time.Time) {
	metrics.ListingStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func recordRequest(resource string, view domlist.View, err error) {
	metrics.ListingRequestsTotal.WithLabelValues(resource, string(view), status(err)).Inc()

	var ee *domain.EngineError
	if errors.As(err, &ee) && ee.Kind == domain.KindBackendFailure {
		metrics.BackendErrorsTotal.WithLabelValues(ee.Op).Inc()
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidFilterFormat), errors.Is(err, domain.ErrInvalidParams):
		return "invalid"
	case errors.Is(err, domain.ErrResourceNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrBackendFailure):
		return "backend_failure"
	default:
		return "error"
	}
}
