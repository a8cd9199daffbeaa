package ordering

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case; empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q (want asc or desc)", s)
}

// Term orders by one column.
type Term struct {
	Column     string
	Descending bool
}

// Spec is a resolved ordering. A pass-through spec keeps the order already
// fixed upstream (search ranking).
type Spec struct {
	terms       []Term
	passThrough bool
}

// PassThrough returns the "no further reordering" spec.
func PassThrough() Spec { return Spec{passThrough: true} }

// IsPassThrough reports whether ordering is left to the producer.
func (s Spec) IsPassThrough() bool { return s.passThrough }

// Terms returns the ordering terms, most significant first.
func (s Spec) Terms() []Term { return s.terms }

// Resolve turns a sort directive into an ordering. When the rows are
// already ordered by search ranking the returned Spec is a pass-through. A declared
// sortable field is honored with a primary key tie-breaker; anything else
// falls back to the primary key ascending. unknown is true when a non-empty
// field was ignored.
func Resolve(field string, dir Direction, res schema.Resource, alreadyOrdered bool) (spec Spec, unknown bool) {
	if alreadyOrdered {
		return PassThrough(), false
	}

	pk := Term{Column: res.PrimaryKey()}
	if field == "" {
		return Spec{terms: []Term{pk}}, false
	}

	f, ok := res.Field(field)
	if !ok || !f.IsSortable() {
		return Spec{terms: []Term{pk}}, true
	}

	terms := []Term{{Column: f.Column(), Descending: dir == Desc}}
	if f.Column() != res.PrimaryKey() {
		terms = append(terms, pk)
	}
	return Spec{terms: terms}, false
}
