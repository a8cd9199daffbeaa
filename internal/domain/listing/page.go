package listing

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/gridex/internal/domain"
)

// Page size defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Limits bounds page sizes.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the built-in page size limits.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

// Page is a resolved offset/limit window.
type Page struct {
	offset   int
	limit    int
	explicit bool
}

// NewPage resolves page/pageSize or skip/take into a window; take wins when
// both forms are present. Sizes above the maximum are clamped. explicit is
// set when the caller supplied any paging parameter.
func NewPage(page, pageSize, skip, take *int, limits Limits) (Page, error) {
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = DefaultPageSize
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = MaxPageSize
	}
	clamp := func(n int) int {
		if n > limits.MaxPageSize {
			return limits.MaxPageSize
		}
		return n
	}

	if take != nil {
		if *take <= 0 {
			return Page{}, fmt.Errorf("%w: take must be positive", domain.ErrInvalidParams)
		}
		offset := 0
		if skip != nil {
			if *skip < 0 {
				return Page{}, fmt.Errorf("%w: skip must not be negative", domain.ErrInvalidParams)
			}
			offset = *skip
		}
		return Page{offset: offset, limit: clamp(*take), explicit: true}, nil
	}

	size := limits.DefaultPageSize
	if pageSize != nil {
		if *pageSize <= 0 {
			return Page{}, fmt.Errorf("%w: pageSize must be positive", domain.ErrInvalidParams)
		}
		size = clamp(*pageSize)
	}
	number := 1
	if page != nil {
		if *page < 1 {
			return Page{}, fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidParams)
		}
		number = *page
	}
	explicit := page != nil || pageSize != nil || skip != nil
	if skip != nil && page == nil {
		if *skip < 0 {
			return Page{}, fmt.Errorf("%w: skip must not be negative", domain.ErrInvalidParams)
		}
		return Page{offset: *skip, limit: size, explicit: true}, nil
	}
	if number-1 > math.MaxInt/size {
		return Page{}, fmt.Errorf("%w: page %d is out of range", domain.ErrInvalidParams, number)
	}
	return Page{offset: (number - 1) * size, limit: size, explicit: explicit}, nil
}

// Offset returns the number of leading rows to skip.
func (p Page) Offset() int { return p.offset }

// Limit returns the window size.
func (p Page) Limit() int { return p.limit }

// IsExplicit reports whether the caller asked for paging.
func (p Page) IsExplicit() bool { return p.explicit }

// Slice applies the window to an already ordered slice.
func Slice[T any](items []T, p Page) []T {
	if p.offset < 0 || p.offset >= len(items) {
		return []T{}
	}
	end := p.offset + p.limit
	if end < p.offset || end > len(items) {
		end = len(items)
	}
	return items[p.offset:end]
}
