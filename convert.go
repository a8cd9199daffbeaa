package gridex

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/gridex/internal/domain/group"
	domlist "github.com/kailas-cloud/gridex/internal/domain/listing"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/settings"
)

type wireFilter struct {
	Field  string `json:"field"`
	Values []any  `json:"values"`
}

type wireLevel struct {
	Selector      string `json:"selector"`
	GroupInterval string `json:"groupInterval,omitempty"`
	IsExpanded    bool   `json:"isExpanded"`
	Desc          bool   `json:"desc"`
}

type wireSummary struct {
	Selector    string `json:"selector"`
	SummaryType string `json:"summaryType"`
}

// toRaw encodes Params in the wire form the HTTP transport receives, so
// both entry points share one parser.
func toRaw(p Params) (domlist.Raw, error) {
	raw := domlist.Raw{
		Search:            p.Search,
		Columns:           p.Columns,
		Sort:              p.Sort,
		RequireGroupCount: p.RequireGroupCount,
		RequireTotalCount: p.RequireTotalCount,
	}
	if p.Desc {
		raw.SortDirection = "desc"
	}

	if len(p.Filters) > 0 {
		wire := make([]wireFilter, len(p.Filters))
		for i, f := range p.Filters {
			wire[i] = wireFilter{Field: f.Field, Values: f.Values}
		}
		s, err := encode(wire)
		if err != nil {
			return domlist.Raw{}, fmt.Errorf("encode filters: %w", err)
		}
		raw.Filters = s
	}

	if len(p.Group) > 0 {
		wire := make([]wireLevel, len(p.Group))
		for i, l := range p.Group {
			wire[i] = wireLevel{Selector: l.Selector, GroupInterval: l.Interval, IsExpanded: l.Expanded, Desc: l.Desc}
		}
		s, err := encode(wire)
		if err != nil {
			return domlist.Raw{}, fmt.Errorf("encode group: %w", err)
		}
		raw.GroupSpec = s
	}

	var err error
	if raw.GroupSummary, err = encodeSummaries(p.GroupSummary); err != nil {
		return domlist.Raw{}, fmt.Errorf("encode group summary: %w", err)
	}
	if raw.TotalSummary, err = encodeSummaries(p.TotalSummary); err != nil {
		return domlist.Raw{}, fmt.Errorf("encode total summary: %w", err)
	}

	if p.Take > 0 {
		take, skip := p.Take, p.Skip
		raw.Take, raw.Skip = &take, &skip
	} else {
		if p.Page > 0 {
			page := p.Page
			raw.Page = &page
		}
		if p.PageSize > 0 {
			size := p.PageSize
			raw.PageSize = &size
		}
	}
	return raw, nil
}

func encodeSummaries(in []Summary) (string, error) {
	if len(in) == 0 {
		return "", nil
	}
	wire := make([]wireSummary, len(in))
	for i, s := range in {
		wire[i] = wireSummary{Selector: s.Selector, SummaryType: s.Type}
	}
	return encode(wire)
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromResponse(r domlist.Response) *Response {
	return &Response{
		View:       string(r.View),
		Rows:       r.Rows,
		Groups:     fromNodes(r.Groups),
		TotalCount: r.TotalCount,
		GroupCount: r.GroupCount,
		Summary:    r.Summary,
	}
}

func fromNodes(nodes []group.Node) []Group {
	if nodes == nil {
		return nil
	}
	out := make([]Group, len(nodes))
	for i, n := range nodes {
		out[i] = Group{
			Key:     n.Key,
			Count:   n.Count,
			Summary: n.Summary,
			Items:   fromNodes(n.Items),
		}
	}
	return out
}

func toSchemaResource(r Resource) (schema.Resource, error) {
	fields := make([]schema.Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		var opts []schema.FieldOption
		if f.Column != "" {
			opts = append(opts, schema.WithColumn(f.Column))
		}
		if f.Searchable {
			opts = append(opts, schema.Searchable())
		}
		if f.Sortable {
			opts = append(opts, schema.Sortable())
		}
		if f.NotFilterable {
			opts = append(opts, schema.NotFilterable())
		}
		name := f.Name
		if name == "" {
			name = f.Column
		}
		kind := f.Kind
		if kind == "" {
			kind = KindText
		}
		sf, err := schema.NewField(name, schema.Kind(kind), opts...)
		if err != nil {
			return schema.Resource{}, fmt.Errorf("%w: resource %q: %v", ErrInvalidSchema, r.Name, err)
		}
		fields = append(fields, sf)
	}

	var opts []schema.ResourceOption
	if r.PrimaryKey != "" {
		opts = append(opts, schema.WithPrimaryKey(r.PrimaryKey))
	}
	if r.SoftDeleteColumn != "" {
		opts = append(opts, schema.WithSoftDelete(r.SoftDeleteColumn))
	}
	if r.TenantColumn != "" {
		opts = append(opts, schema.WithTenantColumn(r.TenantColumn))
	}
	if len(r.DefaultSearch) > 0 {
		opts = append(opts, schema.WithDefaultSearch(r.DefaultSearch...))
	}
	if r.Search != nil {
		maxResults := r.Search.MaxResults
		if maxResults == 0 {
			maxResults = settings.DefaultMaxResults
		}
		opts = append(opts, schema.WithSearchConfig(settings.Config{
			EnableIndexHint:        r.Search.EnableIndexHint,
			MaxResults:             maxResults,
			PrioritizeExactMatches: r.Search.PrioritizeExactMatches,
			UseFuzzy:               r.Search.UseFuzzy,
			MinQueryLength:         r.Search.MinQueryLength,
			FieldWeights:           r.Search.FieldWeights,
		}))
	}
	res, err := schema.NewResource(r.Name, r.Table, fields, opts...)
	if err != nil {
		return schema.Resource{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return res, nil
}

// DefaultSearchConfig returns the search configuration resources get when
// they declare none.
func DefaultSearchConfig() SearchConfig {
	d := settings.Default()
	return SearchConfig{
		EnableIndexHint:        d.EnableIndexHint,
		MaxResults:             d.MaxResults,
		PrioritizeExactMatches: d.PrioritizeExactMatches,
		UseFuzzy:               d.UseFuzzy,
		MinQueryLength:         d.MinQueryLength,
	}
}

func fromSchemaResource(r schema.Resource) Resource {
	cfg := r.SearchConfig()
	out := Resource{
		Name:             r.Name(),
		Table:            r.Table(),
		PrimaryKey:       r.PrimaryKey(),
		SoftDeleteColumn: r.SoftDeleteColumn(),
		TenantColumn:     r.TenantColumn(),
		DefaultSearch:    r.DefaultSearch(),
		Search: &SearchConfig{
			EnableIndexHint:        cfg.EnableIndexHint,
			MaxResults:             cfg.MaxResults,
			PrioritizeExactMatches: cfg.PrioritizeExactMatches,
			UseFuzzy:               cfg.UseFuzzy,
			MinQueryLength:         cfg.MinQueryLength,
			FieldWeights:           cfg.FieldWeights,
		},
	}
	for _, f := range r.Fields() {
		out.Fields = append(out.Fields, Field{
			Name:          f.Name(),
			Column:        f.Column(),
			Kind:          FieldKind(f.Kind()),
			Searchable:    f.IsSearchable(),
			Sortable:      f.IsSortable(),
			NotFilterable: !f.IsFilterable(),
		})
	}
	return out
}
