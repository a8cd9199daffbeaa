package predicate

import (
	"fmt"
	"strings"
	"time"
)

// Predicate is a declarative boolean condition over physical columns.
// Executors compile it; Match evaluates it in memory against a row.
type Predicate interface {
	Match(row map[string]any) bool
	isPredicate()
}

// True matches every row.
type True struct{}

// False matches no row.
type False struct{}

// And matches when every term matches.
type And struct{ Terms []Predicate }

// Or matches when any term matches.
type Or struct{ Terms []Predicate }

// Not negates a term.
type Not struct{ Term Predicate }

// Eq compares a column to a literal. FoldCase compares the text form of both
// sides case-insensitively; CastText converts a non-text column to text first.
type Eq struct {
	Column   string
	Value    any
	FoldCase bool
	CastText bool
}

// In matches when the column equals one of the values.
type In struct {
	Column string
	Values []any
}

// Contains is a case-insensitive substring match.
type Contains struct {
	Column   string
	Value    string
	CastText bool
}

func (True) isPredicate()     {}
func (False) isPredicate()    {}
func (And) isPredicate()      {}
func (Or) isPredicate()       {}
func (Not) isPredicate()      {}
func (Eq) isPredicate()       {}
func (In) isPredicate()       {}
func (Contains) isPredicate() {}

// AndOf flattens nested conjunctions and drops True terms.
func AndOf(terms ...Predicate) Predicate {
	out := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case nil, True:
			continue
		case False:
			return False{}
		case And:
			out = append(out, v.Terms...)
		default:
			out = append(out, t)
		}
	}
	switch len(out) {
	case 0:
		return True{}
	case 1:
		return out[0]
	}
	return And{Terms: out}
}

// OrOf flattens nested disjunctions and drops False terms. An empty
// disjunction matches nothing.
func OrOf(terms ...Predicate) Predicate {
	out := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case nil, False:
			continue
		case True:
			return True{}
		case Or:
			out = append(out, v.Terms...)
		default:
			out = append(out, t)
		}
	}
	switch len(out) {
	case 0:
		return False{}
	case 1:
		return out[0]
	}
	return Or{Terms: out}
}

func (True) Match(map[string]any) bool  { return true }
func (False) Match(map[string]any) bool { return false }

func (p And) Match(row map[string]any) bool {
	for _, t := range p.Terms {
		if !t.Match(row) {
			return false
		}
	}
	return true
}

func (p Or) Match(row map[string]any) bool {
	for _, t := range p.Terms {
		if t.Match(row) {
			return true
		}
	}
	return false
}

func (p Not) Match(row map[string]any) bool { return !p.Term.Match(row) }

func (p Eq) Match(row map[string]any) bool {
	v, ok := row[p.Column]
	if !ok || v == nil {
		return p.Value == nil
	}
	if p.FoldCase {
		return strings.EqualFold(Text(v), Text(p.Value))
	}
	return Text(v) == Text(p.Value)
}

func (p In) Match(row map[string]any) bool {
	v, ok := row[p.Column]
	if !ok || v == nil {
		return false
	}
	for _, want := range p.Values {
		if Text(v) == Text(want) {
			return true
		}
	}
	return false
}

func (p Contains) Match(row map[string]any) bool {
	v, ok := row[p.Column]
	if !ok || v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(Text(v)), strings.ToLower(p.Value))
}

// Text renders a scalar the way a database text cast would.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
