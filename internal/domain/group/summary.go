package group

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

// MaxSummaries bounds the number of summary descriptors per request.
const MaxSummaries = 16

// Func is an aggregate function.
type Func string

// Aggregate functions.
const (
	Count Func = "count"
	Sum   Func = "sum"
	Avg   Func = "avg"
	Min   Func = "min"
	Max   Func = "max"
)

// IsValid reports whether f is a supported function.
func (f Func) IsValid() bool {
	switch f {
	case Count, Sum, Avg, Min, Max:
		return true
	}
	return false
}

// Summary is a named aggregate over a field. A count without selector is
// count(*).
type Summary struct {
	fn       Func
	selector string
}

// NewSummary validates and creates a Summary.
func NewSummary(fn Func, selector string) (Summary, error) {
	fn = Func(strings.ToLower(string(fn)))
	if !fn.IsValid() {
		return Summary{}, fmt.Errorf("invalid summaryType %q", fn)
	}
	if selector == "" && fn != Count {
		return Summary{}, fmt.Errorf("%s requires a selector", fn)
	}
	return Summary{fn: fn, selector: selector}, nil
}

// Func returns the aggregate function.
func (s Summary) Func() Func { return s.fn }

// Selector returns the target field, "" for count(*).
func (s Summary) Selector() string { return s.selector }

// Name returns the descriptor name, e.g. "sum(price)" or "count(*)".
func (s Summary) Name() string {
	sel := s.selector
	if sel == "" {
		sel = "*"
	}
	return string(s.fn) + "(" + sel + ")"
}

var nameRegex = regexp.MustCompile(`^\s*([A-Za-z]+)\s*(?:\(\s*([A-Za-z0-9_.*]*)\s*\))?\s*$`)

type wireSummary struct {
	Selector    string `json:"selector"`
	SummaryType string `json:"summaryType"`
}

// ParseSummaries accepts either a JSON array `[{selector, summaryType}]` or a
// comma-separated list of names such as "sum(price),count". The result is
// de-duplicated and sorted by Name.
func ParseSummaries(raw string) ([]Summary, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []Summary
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var wire []wireSummary
		if strings.HasPrefix(raw, "{") {
			var one wireSummary
			if err := decodeStrict(raw, &one); err != nil {
				return nil, domain.NewInvalidFilterFormat("parse summary", err)
			}
			wire = []wireSummary{one}
		} else if err := decodeStrict(raw, &wire); err != nil {
			return nil, domain.NewInvalidFilterFormat("parse summary", err)
		}
		for i, w := range wire {
			s, err := NewSummary(Func(w.SummaryType), w.Selector)
			if err != nil {
				return nil, domain.NewInvalidFilterFormat("parse summary", fmt.Errorf("descriptor %d: %w", i, err))
			}
			out = append(out, s)
		}
	} else {
		for _, part := range strings.Split(raw, ",") {
			m := nameRegex.FindStringSubmatch(part)
			if m == nil {
				return nil, domain.NewInvalidFilterFormat("parse summary", fmt.Errorf("invalid descriptor %q", part))
			}
			sel := m[2]
			if sel == "*" {
				sel = ""
			}
			s, err := NewSummary(Func(m[1]), sel)
			if err != nil {
				return nil, domain.NewInvalidFilterFormat("parse summary", err)
			}
			out = append(out, s)
		}
	}

	if len(out) > MaxSummaries {
		return nil, domain.NewInvalidFilterFormat("parse summary", fmt.Errorf("too many summaries (max %d)", MaxSummaries))
	}
	return SortSummaries(out), nil
}

// SortSummaries de-duplicates descriptors and orders them by Name.
func SortSummaries(in []Summary) []Summary {
	seen := make(map[string]bool, len(in))
	out := make([]Summary, 0, len(in))
	for _, s := range in {
		if seen[s.Name()] {
			continue
		}
		seen[s.Name()] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// BoundSummary is a Summary resolved against a declared field. Field is the
// zero value for count(*).
type BoundSummary struct {
	Summary
	Field schema.Field
}

// BindSummaries resolves selectors. Undeclared selectors, and sum/avg over
// non-numeric fields, are dropped and reported by Name.
func BindSummaries(in []Summary, res schema.Resource) (bound []BoundSummary, dropped []string) {
	for _, s := range in {
		if s.selector == "" {
			bound = append(bound, BoundSummary{Summary: s})
			continue
		}
		f, ok := res.Field(s.selector)
		if !ok {
			dropped = append(dropped, s.Name())
			continue
		}
		if (s.fn == Sum || s.fn == Avg) && f.Kind() != schema.Numeric {
			dropped = append(dropped, s.Name())
			continue
		}
		bound = append(bound, BoundSummary{Summary: s, Field: f})
	}
	return bound, dropped
}

// MarshalJSON renders the wire form; used for cache keys.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name())
}
