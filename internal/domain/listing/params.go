package listing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/filter"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	"github.com/kailas-cloud/gridex/internal/domain/ordering"
)

// Raw carries listing parameters as received from the transport.
type Raw struct {
	Search            string
	Columns           []string
	Filters           string
	Sort              string
	SortDirection     string
	GroupSpec         string
	GroupSummary      string
	TotalSummary      string
	RequireGroupCount bool
	RequireTotalCount bool
	Page              *int
	PageSize          *int
	Skip              *int
	Take              *int
}

// Params is the parsed, validated form of Raw. Parsing never touches the
// backend, so format errors surface before any query runs.
type Params struct {
	Search            string
	Columns           []string
	Filters           filter.Expression
	Sort              string
	SortDirection     ordering.Direction
	Group             []group.Level
	GroupSummary      []group.Summary
	TotalSummary      []group.Summary
	RequireGroupCount bool
	RequireTotalCount bool
	Page              Page
}

// Parse validates raw parameters. Malformed filters, group specs and
// summaries yield domain.ErrInvalidFilterFormat; bad paging or direction
// yields domain.ErrInvalidParams.
func Parse(raw Raw, limits Limits) (Params, error) {
	filters, err := filter.Parse(raw.Filters)
	if err != nil {
		return Params{}, err
	}
	levels, err := group.ParseSpec(raw.GroupSpec)
	if err != nil {
		return Params{}, err
	}
	groupSummary, err := group.ParseSummaries(raw.GroupSummary)
	if err != nil {
		return Params{}, err
	}
	totalSummary, err := group.ParseSummaries(raw.TotalSummary)
	if err != nil {
		return Params{}, err
	}
	dir, err := ordering.ParseDirection(raw.SortDirection)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	page, err := NewPage(raw.Page, raw.PageSize, raw.Skip, raw.Take, limits)
	if err != nil {
		return Params{}, err
	}

	return Params{
		Search:            raw.Search,
		Columns:           raw.Columns,
		Filters:           filters,
		Sort:              raw.Sort,
		SortDirection:     dir,
		Group:             levels,
		GroupSummary:      groupSummary,
		TotalSummary:      totalSummary,
		RequireGroupCount: raw.RequireGroupCount,
		RequireTotalCount: raw.RequireTotalCount,
		Page:              page,
	}, nil
}

// IsGrouped reports whether the request asks for the aggregation view.
func (p Params) IsGrouped() bool { return len(p.Group) > 0 }

type keyLevel struct {
	Selector string `json:"s"`
	Interval string `json:"i,omitempty"`
	Expanded bool   `json:"e,omitempty"`
	Desc     bool   `json:"d,omitempty"`
}

type keyParams struct {
	Resource     string            `json:"r"`
	Tenant       string            `json:"t"`
	Search       string            `json:"q,omitempty"`
	Columns      []string          `json:"c,omitempty"`
	Filters      filter.Expression `json:"f"`
	Sort         string            `json:"s,omitempty"`
	Direction    string            `json:"sd"`
	Group        []keyLevel        `json:"g,omitempty"`
	GroupSummary []group.Summary   `json:"gs,omitempty"`
	TotalSummary []group.Summary   `json:"ts,omitempty"`
	GroupCount   bool              `json:"gc,omitempty"`
	TotalCount   bool              `json:"tc,omitempty"`
	Offset       int               `json:"o"`
	Limit        int               `json:"l"`
	Explicit     bool              `json:"x,omitempty"`
}

// CacheKey returns a stable digest of the normalized parameters scoped to
// one resource and tenant.
func (p Params) CacheKey(resource, tenant string) (string, error) {
	k := keyParams{
		Resource:     resource,
		Tenant:       tenant,
		Search:       p.Search,
		Columns:      p.Columns,
		Filters:      p.Filters,
		Sort:         p.Sort,
		Direction:    string(p.SortDirection),
		GroupSummary: p.GroupSummary,
		TotalSummary: p.TotalSummary,
		GroupCount:   p.RequireGroupCount,
		TotalCount:   p.RequireTotalCount,
		Offset:       p.Page.Offset(),
		Limit:        p.Page.Limit(),
		Explicit:     p.Page.IsExplicit(),
	}
	for _, l := range p.Group {
		k.Group = append(k.Group, keyLevel{
			Selector: l.Selector(), Interval: string(l.Interval()),
			Expanded: l.IsExpanded(), Desc: l.IsDescending(),
		})
	}
	b, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
