package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	domlist "github.com/kailas-cloud/gridex/internal/domain/listing"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/request"
	"github.com/kailas-cloud/gridex/internal/domain/search/result"
	"github.com/kailas-cloud/gridex/internal/domain/search/strategy"
	"github.com/kailas-cloud/gridex/internal/usecase/aggregate"
)

// --- Mocks ---

type fakeSchemas struct {
	res schema.Resource
}

func (f *fakeSchemas) Get(_ context.Context, name string) (schema.Resource, error) {
	if name != f.res.Name() {
		return schema.Resource{}, fmt.Errorf("resource %q: %w", name, domain.ErrResourceNotFound)
	}
	return f.res, nil
}

type fakeSearcher struct {
	ranked result.Ranked
	err    error
	calls  int
	last   *request.Request
}

func (f *fakeSearcher) Search(_ context.Context, _ schema.Resource, req *request.Request) (result.Ranked, error) {
	f.calls++
	f.last = req
	return f.ranked, f.err
}

type fakeAggregator struct {
	rows       []group.AggregateRow
	groups     int64
	totalCount int64
	totals     []any
	err        error
	builds     int
	lastQuery  aggregate.Query
	lastWhere  predicate.Predicate
}

func (f *fakeAggregator) Build(_ context.Context, q aggregate.Query) (aggregate.Result, error) {
	f.builds++
	f.lastQuery = q
	if f.err != nil {
		return aggregate.Result{}, f.err
	}
	levels := group.Levels(q.Levels)
	return aggregate.Result{Rows: f.rows, Levels: levels[:group.ExpandedDepth(levels)]}, nil
}

func (f *fakeAggregator) CountGroups(_ context.Context, _ aggregate.Query) (int64, error) {
	return f.groups, f.err
}

func (f *fakeAggregator) Totals(
	_ context.Context, _ string, where predicate.Predicate, _ []group.BoundSummary,
) (int64, []any, error) {
	f.lastWhere = where
	return f.totalCount, f.totals, f.err
}

type fakeRows struct {
	entries []db.ScanEntry
	count   int64
	err     error
	calls   int
	last    *db.ScanQuery
}

func (f *fakeRows) RunFilteredScan(_ context.Context, q *db.ScanQuery) (*db.ScanResult, error) {
	f.calls++
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return &db.ScanResult{Entries: f.entries}, nil
}

func (f *fakeRows) Count(_ context.Context, _ *db.CountQuery) (int64, error) {
	f.calls++
	return f.count, f.err
}

type fakeCache struct {
	entries     map[string]domlist.Response
	puts        int
	invalidated []string
}

func (f *fakeCache) Get(_ context.Context, resource, tenant, key string) (domlist.Response, bool) {
	r, ok := f.entries[resource+"|"+tenant+"|"+key]
	return r, ok
}

func (f *fakeCache) Put(_ context.Context, resource, tenant, key string, resp domlist.Response) {
	f.puts++
	f.entries[resource+"|"+tenant+"|"+key] = resp
}

func (f *fakeCache) Invalidate(_ context.Context, resource, tenant string) error {
	f.invalidated = append(f.invalidated, resource+"|"+tenant)
	f.entries = map[string]domlist.Response{}
	return nil
}

// --- Helpers ---

func newTestResource(t *testing.T) schema.Resource {
	t.Helper()
	mk := func(name string, kind schema.Kind, opts ...schema.FieldOption) schema.Field {
		f, err := schema.NewField(name, kind, opts...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return f
	}
	res, err := schema.NewResource("companies", "companies", []schema.Field{
		mk("name", schema.Text, schema.Searchable(), schema.Sortable()),
		mk("city", schema.Text, schema.Sortable(), schema.WithColumn("city_name")),
		mk("revenue", schema.Numeric),
	}, schema.WithSoftDelete("is_removed"), schema.WithTenantColumn("org_id"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

type fixture struct {
	svc      *Service
	searcher *fakeSearcher
	agg      *fakeAggregator
	rows     *fakeRows
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{searcher: &fakeSearcher{}, agg: &fakeAggregator{}, rows: &fakeRows{}}
	f.svc = New(&fakeSchemas{res: newTestResource(t)}, f.searcher, f.agg, f.rows)
	return f
}

func (f *fixture) backendCalls() int { return f.searcher.calls + f.agg.builds + f.rows.calls }

func intPtr(n int) *int { return &n }

// --- Tests ---

func TestList_InvalidFilterRunsNoQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), "companies", domlist.Raw{Filters: "{not json"})
	if !errors.Is(err, domain.ErrInvalidFilterFormat) {
		t.Fatalf("error = %v, want ErrInvalidFilterFormat", err)
	}
	if n := f.backendCalls(); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestList_InvalidFilterValueRunsNoQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), "companies", domlist.Raw{
		Filters: `[{"field":"revenue","values":["lots"]}]`,
	})
	if !errors.Is(err, domain.ErrInvalidFilterFormat) {
		t.Fatalf("error = %v, want ErrInvalidFilterFormat", err)
	}
	if n := f.backendCalls(); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestList_UnknownResource(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), "nope", domlist.Raw{})
	if !errors.Is(err, domain.ErrResourceNotFound) {
		t.Errorf("error = %v, want ErrResourceNotFound", err)
	}
}

func TestList_InvalidPaging(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), "companies", domlist.Raw{PageSize: intPtr(0)})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Errorf("error = %v, want ErrInvalidParams", err)
	}
}

func TestList_FlatPage(t *testing.T) {
	f := newFixture(t)
	f.rows.entries = []db.ScanEntry{{Fields: map[string]any{"id": int64(7), "name": "Acme", "city_name": "Oslo"}}}
	f.rows.count = 42
	tenant := domain.NewTenant()
	ctx := domain.ContextWithTenant(context.Background(), tenant)

	resp, err := f.svc.List(ctx, "companies", domlist.Raw{
		Sort: "city", SortDirection: "desc", Page: intPtr(2), PageSize: intPtr(5),
		Filters:           `[{"field":"name","values":["acme"]}]`,
		RequireTotalCount: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.View != domlist.ViewFlat {
		t.Errorf("view = %s", resp.View)
	}
	if resp.TotalCount == nil || *resp.TotalCount != 42 {
		t.Errorf("totalCount = %v", resp.TotalCount)
	}
	if len(resp.Rows) != 1 || resp.Rows[0]["city"] != "Oslo" || resp.Rows[0]["id"] != int64(7) {
		t.Errorf("rows = %v, want field-keyed row", resp.Rows)
	}

	q := f.rows.last
	want := []db.OrderKey{{Column: "city_name", Descending: true}, {Column: "id"}}
	if len(q.Order) != 2 || q.Order[0] != want[0] || q.Order[1] != want[1] {
		t.Errorf("order = %+v, want %+v", q.Order, want)
	}
	if q.Limit != 5 || q.Offset != 5 {
		t.Errorf("limit/offset = %d/%d, want 5/5", q.Limit, q.Offset)
	}
	and, ok := q.Where.(predicate.And)
	if !ok || len(and.Terms) != 3 {
		t.Fatalf("where = %#v", q.Where)
	}
	if and.Terms[0] != (predicate.Eq{Column: "is_removed", Value: false}) {
		t.Errorf("soft delete term = %#v", and.Terms[0])
	}
	if and.Terms[1] != (predicate.Eq{Column: "org_id", Value: tenant.String()}) {
		t.Errorf("tenant term = %#v", and.Terms[1])
	}
}

func TestList_UnknownSortFallsBackToPrimaryKey(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.List(context.Background(), "companies", domlist.Raw{Sort: "revenue"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := f.rows.last
	if len(q.Order) != 1 || q.Order[0] != (db.OrderKey{Column: "id"}) {
		t.Errorf("order = %+v", q.Order)
	}
	if q.Limit != domlist.DefaultPageSize || q.Offset != 0 {
		t.Errorf("limit/offset = %d/%d", q.Limit, q.Offset)
	}
}

func TestList_FlatTotalSummary(t *testing.T) {
	f := newFixture(t)
	f.agg.totalCount = 3
	f.agg.totals = []any{float64(300)}

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{
		TotalSummary: "sum(revenue),sum(city)", RequireTotalCount: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Summary) != 1 || resp.Summary[0] != float64(300) {
		t.Errorf("summary = %v", resp.Summary)
	}
	if resp.TotalCount == nil || *resp.TotalCount != 3 {
		t.Errorf("totalCount = %v", resp.TotalCount)
	}
	if f.rows.calls != 1 {
		t.Errorf("row reader calls = %d, want scan only", f.rows.calls)
	}
}

func TestList_SearchKeepsRankOrder(t *testing.T) {
	f := newFixture(t)
	f.searcher.ranked = result.NewRanked([]result.Hit{
		result.NewHit(int64(1), 0, true, map[string]any{"id": int64(1), "name": "Acme"}),
		result.NewHit(int64(2), 0, false, map[string]any{"id": int64(2), "name": "Acme Corp"}),
	}, strategy.ExactFirst)

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{
		Search: "  acme ", Sort: "name", Skip: intPtr(1), Take: intPtr(1), RequireTotalCount: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.View != domlist.ViewSearch {
		t.Errorf("view = %s", resp.View)
	}
	if resp.TotalCount == nil || *resp.TotalCount != 2 {
		t.Errorf("totalCount = %v, want size of ranked set", resp.TotalCount)
	}
	if len(resp.Rows) != 1 || resp.Rows[0]["name"] != "Acme Corp" {
		t.Errorf("rows = %v, want second ranked row", resp.Rows)
	}
	if f.rows.calls != 0 {
		t.Errorf("flat scan ran %d times", f.rows.calls)
	}
	if f.searcher.last.Query() != "acme" {
		t.Errorf("query = %q", f.searcher.last.Query())
	}
	if f.searcher.last.Base() != (predicate.Eq{Column: "is_removed", Value: false}) {
		t.Errorf("base = %#v, want soft delete only without tenant", f.searcher.last.Base())
	}
}

func TestList_SearchWithoutPagingReturnsCappedSet(t *testing.T) {
	f := newFixture(t)
	hits := make([]result.Hit, 15)
	for i := range hits {
		id := int64(i + 1)
		hits[i] = result.NewHit(id, 0, false, map[string]any{"id": id})
	}
	f.searcher.ranked = result.NewRanked(hits, strategy.Contains)

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{Search: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Rows) != 15 {
		t.Errorf("rows = %d, want 15", len(resp.Rows))
	}
}

func TestList_SearchTotalSummaryOverRankedIDs(t *testing.T) {
	f := newFixture(t)
	f.searcher.ranked = result.NewRanked([]result.Hit{
		result.NewHit(int64(4), 0, false, map[string]any{"id": int64(4)}),
	}, strategy.Contains)
	f.agg.totals = []any{int64(1)}

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{Search: "acme", TotalSummary: "count"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Summary) != 1 || resp.Summary[0] != int64(1) {
		t.Errorf("summary = %v", resp.Summary)
	}
	and, ok := f.agg.lastWhere.(predicate.And)
	if !ok || len(and.Terms) != 2 {
		t.Fatalf("where = %#v", f.agg.lastWhere)
	}
	in, ok := and.Terms[1].(predicate.In)
	if !ok || in.Column != "id" || len(in.Values) != 1 || in.Values[0] != int64(4) {
		t.Errorf("id restriction = %#v", and.Terms[1])
	}
}

func TestList_EmptySearchSummary(t *testing.T) {
	f := newFixture(t)
	f.searcher.ranked = result.Empty()

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{Search: "ab", TotalSummary: "count,max(revenue)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Rows) != 0 {
		t.Errorf("rows = %v", resp.Rows)
	}
	if len(resp.Summary) != 2 || resp.Summary[0] != int64(0) || resp.Summary[1] != nil {
		t.Errorf("summary = %v", resp.Summary)
	}
}

func TestList_GroupingWinsOverSearch(t *testing.T) {
	f := newFixture(t)
	f.agg.rows = []group.AggregateRow{{GroupValues: []any{"Oslo"}, Count: 2}}
	f.agg.groups = 1

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{
		Search: "acme", GroupSpec: `[{"selector":"city"}]`, RequireGroupCount: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.searcher.calls != 0 {
		t.Errorf("search ran %d times", f.searcher.calls)
	}
	if resp.View != domlist.ViewGrouped || len(resp.Groups) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	g := resp.Groups[0]
	if g.Key != "Oslo" || g.Count == nil || *g.Count != 2 || g.Items != nil {
		t.Errorf("group = %+v", g)
	}
	if resp.GroupCount == nil || *resp.GroupCount != 1 {
		t.Errorf("groupCount = %v", resp.GroupCount)
	}
	if f.agg.lastQuery.Limit != domlist.DefaultPageSize {
		t.Errorf("limit = %d", f.agg.lastQuery.Limit)
	}
}

func TestList_UnboundGroupingFallsBackToFlat(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.List(context.Background(), "companies", domlist.Raw{GroupSpec: `[{"selector":"nope"}]`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.View != domlist.ViewFlat || f.agg.builds != 0 || f.rows.calls != 1 {
		t.Errorf("view = %s, builds = %d, scans = %d", resp.View, f.agg.builds, f.rows.calls)
	}
}

func TestList_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.rows.err = errors.New("connection reset")

	_, err := f.svc.List(context.Background(), "companies", domlist.Raw{})
	if !errors.Is(err, domain.ErrBackendFailure) {
		t.Errorf("error = %v, want ErrBackendFailure", err)
	}
}

func TestList_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.List(ctx, "companies", domlist.Raw{})
	if !errors.Is(err, domain.ErrBackendFailure) || !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want cancelled backend failure", err)
	}
	if n := f.backendCalls(); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestList_Cache(t *testing.T) {
	f := newFixture(t)
	f.rows.entries = []db.ScanEntry{{Fields: map[string]any{"id": int64(1)}}}
	cache := &fakeCache{entries: map[string]domlist.Response{}}
	f.svc.WithCache(cache)
	raw := domlist.Raw{Sort: "name"}

	for i := 0; i < 2; i++ {
		if _, err := f.svc.List(context.Background(), "companies", raw); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if f.rows.calls != 1 || cache.puts != 1 {
		t.Errorf("scans = %d, puts = %d, want 1/1", f.rows.calls, cache.puts)
	}

	if err := f.svc.Invalidate(context.Background(), "companies"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.List(context.Background(), "companies", raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.rows.calls != 2 {
		t.Errorf("scans = %d after invalidate, want 2", f.rows.calls)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "companies|" {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
}

func TestInvalidate_WithoutCache(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Invalidate(context.Background(), "companies"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := f.svc.Invalidate(context.Background(), "nope"); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Errorf("error = %v, want ErrResourceNotFound", err)
	}
}
