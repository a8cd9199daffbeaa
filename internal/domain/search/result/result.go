package result

import "github.com/kailas-cloud/gridex/internal/domain/search/strategy"

// Hit is one ranked row.
type Hit struct {
	id     any
	score  float64
	exact  bool
	fields map[string]any
}

// NewHit creates a ranked row.
func NewHit(id any, score float64, exact bool, fields map[string]any) Hit {
	return Hit{id: id, score: score, exact: exact, fields: fields}
}

// ID returns the primary identifier value.
func (h *Hit) ID() any { return h.id }

// Score returns the combined score (0 for non-fuzzy strategies).
func (h *Hit) Score() float64 { return h.score }

// IsExact reports whether a search column equals the query case-insensitively.
func (h *Hit) IsExact() bool { return h.exact }

// Fields returns the row's column values.
func (h *Hit) Fields() map[string]any { return h.fields }

// Ranked is the ordered, capped output of the search cascade.
type Ranked struct {
	hits     []Hit
	strategy strategy.Strategy
}

// NewRanked creates a ranked result set.
func NewRanked(hits []Hit, s strategy.Strategy) Ranked {
	return Ranked{hits: hits, strategy: s}
}

// Empty returns the explicit empty result.
func Empty() Ranked { return Ranked{strategy: strategy.Empty} }

// Hits returns the rows in rank order.
func (r Ranked) Hits() []Hit { return r.hits }

// Strategy returns the cascade path that produced the rows.
func (r Ranked) Strategy() strategy.Strategy { return r.strategy }

// Len returns the number of rows.
func (r Ranked) Len() int { return len(r.hits) }

// IDs returns the primary identifiers in rank order.
func (r Ranked) IDs() []any {
	ids := make([]any, len(r.hits))
	for i := range r.hits {
		ids[i] = r.hits[i].id
	}
	return ids
}

// Rows returns the row maps in rank order.
func (r Ranked) Rows() []map[string]any {
	rows := make([]map[string]any, len(r.hits))
	for i := range r.hits {
		rows[i] = r.hits[i].fields
	}
	return rows
}
