package db

import (
	"github.com/kailas-cloud/gridex/internal/domain/group"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
)

// ScoringMode selects the computed ranking columns of a scan.
type ScoringMode int

const (
	// ScoreNone computes nothing.
	ScoreNone ScoringMode = iota
	// ScoreFuzzy computes rank*2 + similarity + exact bonus and filters on
	// MinRank/MinSimilarity.
	ScoreFuzzy
	// ScoreExact only computes the exact-match flag.
	ScoreExact
)

// WeightedColumn is a search column with its weight.
type WeightedColumn struct {
	Column   string
	Weight   float64
	CastText bool
}

// Scoring describes ranking columns computed per row.
type Scoring struct {
	Mode          ScoringMode
	Query         string
	Columns       []WeightedColumn
	ExactBonus    float64
	MinRank       float64
	MinSimilarity float64
}

// OrderKind is what an order key sorts by.
type OrderKind int

const (
	// OrderColumn sorts by a physical column.
	OrderColumn OrderKind = iota
	// OrderScore sorts by the combined fuzzy score.
	OrderScore
	// OrderExact sorts by the exact-match flag.
	OrderExact
)

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Kind       OrderKind
	Column     string
	Descending bool
}

// ScanQuery selects rows. Ordering is always applied before Limit/Offset.
type ScanQuery struct {
	Table      string
	PrimaryKey string
	Columns    []string
	Where      predicate.Predicate
	Scoring    *Scoring
	Order      []OrderKey
	Limit      int // 0 means unlimited
	Offset     int
}

// ScanResult is the output of a scan.
type ScanResult struct {
	Entries []ScanEntry
}

// ScanEntry is a single row. Score and Exact are only populated when the
// query carried Scoring.
type ScanEntry struct {
	Fields map[string]any
	Score  float64
	Exact  bool
}

// CountQuery counts rows.
type CountQuery struct {
	Table string
	Where predicate.Predicate
}

// GroupKey is one GROUP BY term, optionally truncated to a date interval.
type GroupKey struct {
	Column     string
	Interval   group.Interval
	Descending bool
}

// SummaryColumn is one aggregate output. An empty Column means count(*).
type SummaryColumn struct {
	Func   group.Func
	Column string
}

// AggregateQuery groups rows by Keys (outer first). Without keys it yields
// one total row. Groups are ordered by their keys.
type AggregateQuery struct {
	Table     string
	Where     predicate.Predicate
	Keys      []GroupKey
	Summaries []SummaryColumn
	Limit     int
	Offset    int
}
