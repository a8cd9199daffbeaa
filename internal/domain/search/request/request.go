package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/gridex/internal/domain/predicate"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/settings"
)

// MaxQueryLength is the maximum allowed search query length in bytes.
const MaxQueryLength = 1024

// Request is a validated free-text search over one resource.
type Request struct {
	query   string
	columns []schema.Field
	base    predicate.Predicate
	config  settings.Config
}

// New normalizes the query (trim, collapse inner whitespace) and binds the
// resolved columns and base filter. base must already carry the soft-delete
// and tenant restrictions.
func New(
	query string,
	columns []schema.Field,
	base predicate.Predicate,
	cfg settings.Config,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if base == nil {
		base = predicate.True{}
	}
	return Request{
		query:   Normalize(query),
		columns: append([]schema.Field(nil), columns...),
		base:    base,
		config:  cfg,
	}, nil
}

// Normalize trims the query and collapses whitespace runs to one space.
func Normalize(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

// Query returns the normalized query text.
func (r *Request) Query() string { return r.query }

// Columns returns the resolved search columns.
func (r *Request) Columns() []schema.Field { return r.columns }

// Base returns the mandatory base filter.
func (r *Request) Base() predicate.Predicate { return r.base }

// Config returns the search configuration.
func (r *Request) Config() settings.Config { return r.config }

// IsEmpty reports whether the request can only yield an empty result:
// the query is shorter than MinQueryLength runes or no columns resolved.
func (r *Request) IsEmpty() bool {
	if len(r.columns) == 0 || r.query == "" {
		return true
	}
	return utf8.RuneCountInString(r.query) < r.config.MinQueryLength
}

// TextColumns returns the columns that take part in fuzzy scoring.
func (r *Request) TextColumns() []schema.Field {
	out := make([]schema.Field, 0, len(r.columns))
	for _, c := range r.columns {
		if c.IsText() {
			out = append(out, c)
		}
	}
	return out
}
