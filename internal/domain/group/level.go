package group

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
)

// MaxLevels bounds grouping depth.
const MaxLevels = 8

// Interval is a date bucketing unit.
type Interval string

// Supported intervals.
const (
	Year    Interval = "year"
	Quarter Interval = "quarter"
	Month   Interval = "month"
	Day     Interval = "day"
	Hour    Interval = "hour"
	Minute  Interval = "minute"
)

// IsValid reports whether i is a supported interval.
func (i Interval) IsValid() bool {
	switch i {
	case Year, Quarter, Month, Day, Hour, Minute:
		return true
	}
	return false
}

// Level is one nesting tier of a grouping request.
type Level struct {
	selector   string
	interval   Interval
	expanded   bool
	descending bool
}

// NewLevel validates and creates a Level. An empty interval means none.
func NewLevel(selector string, interval Interval, expanded, descending bool) (Level, error) {
	if selector == "" {
		return Level{}, fmt.Errorf("group selector is required")
	}
	interval = Interval(strings.ToLower(string(interval)))
	if interval != "" && !interval.IsValid() {
		return Level{}, fmt.Errorf("invalid groupInterval %q for %q", interval, selector)
	}
	return Level{selector: selector, interval: interval, expanded: expanded, descending: descending}, nil
}

// Selector returns the dotted field path.
func (l Level) Selector() string { return l.selector }

// Interval returns the date bucket, or "".
func (l Level) Interval() Interval { return l.interval }

// IsExpanded reports whether the caller wants this level's children.
func (l Level) IsExpanded() bool { return l.expanded }

// IsDescending reports whether group keys sort descending.
func (l Level) IsDescending() bool { return l.descending }

type wireLevel struct {
	Selector      *string `json:"selector"`
	GroupInterval *string `json:"groupInterval"`
	IsExpanded    *bool   `json:"isExpanded"`
	Desc          bool    `json:"desc"`
}

// ParseSpec decodes `[{selector, groupInterval?, isExpanded?, desc?}]`; a
// single object is accepted as a one-level spec. isExpanded defaults to
// false. Structural problems are reported as domain.ErrInvalidFilterFormat.
func ParseSpec(raw string) ([]Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var wire []wireLevel
	if strings.HasPrefix(raw, "{") {
		var one wireLevel
		if err := decodeStrict(raw, &one); err != nil {
			return nil, domain.NewInvalidFilterFormat("parse groupSpec", err)
		}
		wire = []wireLevel{one}
	} else if err := decodeStrict(raw, &wire); err != nil {
		return nil, domain.NewInvalidFilterFormat("parse groupSpec", err)
	}

	if len(wire) > MaxLevels {
		return nil, domain.NewInvalidFilterFormat("parse groupSpec", fmt.Errorf("too many group levels (max %d)", MaxLevels))
	}

	levels := make([]Level, 0, len(wire))
	for i, w := range wire {
		if w.Selector == nil {
			return nil, domain.NewInvalidFilterFormat("parse groupSpec", fmt.Errorf("level %d: selector is required", i))
		}
		var interval Interval
		if w.GroupInterval != nil {
			interval = Interval(*w.GroupInterval)
		}
		expanded := w.IsExpanded != nil && *w.IsExpanded
		l, err := NewLevel(*w.Selector, interval, expanded, w.Desc)
		if err != nil {
			return nil, domain.NewInvalidFilterFormat("parse groupSpec", fmt.Errorf("level %d: %w", i, err))
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func decodeStrict(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

// ExpandedDepth returns how many leading levels one aggregate pass groups
// by: walking outer to inner, up to and including the first non-expanded
// level, or all levels when every level is expanded.
func ExpandedDepth(levels []Level) int {
	for i, l := range levels {
		if !l.expanded {
			return i + 1
		}
	}
	return len(levels)
}

// BoundLevel is a Level resolved against a resource's declared field.
type BoundLevel struct {
	Level
	Field schema.Field
}

// Bind resolves selectors against the resource. Undeclared selectors are
// dropped; an interval on a non-date field is cleared. Both are reported in
// dropped as "selector" or "selector:groupInterval".
func Bind(levels []Level, res schema.Resource) (bound []BoundLevel, dropped []string) {
	for _, l := range levels {
		f, ok := res.Field(l.selector)
		if !ok {
			dropped = append(dropped, l.selector)
			continue
		}
		if l.interval != "" && f.Kind() != schema.Date {
			dropped = append(dropped, l.selector+":groupInterval")
			l.interval = ""
		}
		bound = append(bound, BoundLevel{Level: l, Field: f})
	}
	return bound, dropped
}

// Levels strips the bindings.
func Levels(bound []BoundLevel) []Level {
	out := make([]Level, len(bound))
	for i, b := range bound {
		out[i] = b.Level
	}
	return out
}
