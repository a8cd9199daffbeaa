package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

// Filter limits.
const (
	MaxClauses         = 32
	MaxValuesPerClause = 256
)

// Clause matches rows whose field equals any of the values.
type Clause struct {
	field  string
	values []any
}

// NewClause validates and creates a Clause.
func NewClause(field string, values []any) (Clause, error) {
	if field == "" {
		return Clause{}, fmt.Errorf("filter field is required")
	}
	if len(values) == 0 {
		return Clause{}, fmt.Errorf("filter on %q has no values", field)
	}
	if len(values) > MaxValuesPerClause {
		return Clause{}, fmt.Errorf("too many values for %q (max %d)", field, MaxValuesPerClause)
	}
	for _, v := range values {
		switch v.(type) {
		case string, bool, int64, float64, json.Number:
		default:
			return Clause{}, fmt.Errorf("filter on %q: unsupported value %v (%T)", field, v, v)
		}
	}
	return Clause{field: field, values: values}, nil
}

// Field returns the field name.
func (c Clause) Field() string { return c.field }

// Values returns the accepted literals.
func (c Clause) Values() []any { return c.values }

// Expression is an ordered conjunction of clauses.
type Expression struct {
	clauses []Clause
}

// NewExpression validates and creates an Expression.
func NewExpression(clauses ...Clause) (Expression, error) {
	if len(clauses) > MaxClauses {
		return Expression{}, fmt.Errorf("too many filter clauses (max %d)", MaxClauses)
	}
	return Expression{clauses: clauses}, nil
}

// Clauses returns the clauses in caller order.
func (e Expression) Clauses() []Clause { return e.clauses }

// IsEmpty reports whether the expression has no clauses.
func (e Expression) IsEmpty() bool { return len(e.clauses) == 0 }

type wireClause struct {
	Field  *string `json:"field"`
	Values []any   `json:"values"`
}

// Parse decodes the JSON form `[{"field": "...", "values": [...]}]`.
// An empty string is an empty expression and clauses with no values are
// skipped. Any structural problem is reported as domain.ErrInvalidFilterFormat.
func Parse(raw string) (Expression, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Expression{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var wire []wireClause
	if err := dec.Decode(&wire); err != nil {
		return Expression{}, domain.NewInvalidFilterFormat("parse filters", err)
	}
	if dec.More() {
		return Expression{}, domain.NewInvalidFilterFormat("parse filters", errors.New("trailing data"))
	}

	clauses := make([]Clause, 0, len(wire))
	for i, w := range wire {
		if w.Field == nil {
			return Expression{}, domain.NewInvalidFilterFormat("parse filters",
				fmt.Errorf("clause %d: field is required", i))
		}
		if len(w.Values) == 0 {
			// an empty value set constrains nothing
			continue
		}
		c, err := NewClause(*w.Field, w.Values)
		if err != nil {
			return Expression{}, domain.NewInvalidFilterFormat("parse filters", fmt.Errorf("clause %d: %w", i, err))
		}
		clauses = append(clauses, c)
	}
	expr, err := NewExpression(clauses...)
	if err != nil {
		return Expression{}, domain.NewInvalidFilterFormat("parse filters", err)
	}
	return expr, nil
}

// Evaluate compiles the expression against the resource: AND over clauses of
// OR over values. Clauses on undeclared or non-filterable fields are skipped
// and reported in dropped. Values that cannot be converted to the field's
// kind are a format error.
func Evaluate(expr Expression, res schema.Resource) (pred predicate.Predicate, dropped []string, err error) {
	terms := make([]predicate.Predicate, 0, len(expr.clauses))
	for _, c := range expr.clauses {
		f, ok := res.Field(c.field)
		if !ok || !f.IsFilterable() {
			dropped = append(dropped, c.field)
			continue
		}
		term, err := clausePredicate(f, c.values)
		if err != nil {
			return nil, dropped, domain.NewInvalidFilterFormat("evaluate filters", err)
		}
		terms = append(terms, term)
	}
	return predicate.AndOf(terms...), dropped, nil
}

func clausePredicate(f schema.Field, values []any) (predicate.Predicate, error) {
	switch f.Kind() {
	case schema.Numeric:
		nums := make([]any, len(values))
		for i, v := range values {
			n, err := toNumber(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			nums[i] = n
		}
		return eqOrIn(f.Column(), nums), nil
	case schema.Boolean:
		bools := make([]any, len(values))
		for i, v := range values {
			b, err := toBool(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			bools[i] = b
		}
		return eqOrIn(f.Column(), bools), nil
	default:
		terms := make([]predicate.Predicate, len(values))
		for i, v := range values {
			terms[i] = predicate.Eq{
				Column:   f.Column(),
				Value:    predicate.Text(v),
				FoldCase: true,
				CastText: !f.IsText(),
			}
		}
		return predicate.OrOf(terms...), nil
	}
}

func eqOrIn(column string, values []any) predicate.Predicate {
	if len(values) == 1 {
		return predicate.Eq{Column: column, Value: values[0]}
	}
	return predicate.In{Column: column, Values: values}
}

func toNumber(v any) (any, error) {
	var s string
	switch x := v.(type) {
	case int64, float64:
		return x, nil
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return nil, fmt.Errorf("%v is not a number", v)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case json.Number:
		switch x.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("%v is not a boolean", v)
}

// MarshalJSON renders the expression in its wire form; used for cache keys.
func (e Expression) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range e.clauses {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(struct {
			Field  string `json:"field"`
			Values []any  `json:"values"`
		}{c.field, c.values})
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
