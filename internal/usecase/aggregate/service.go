package aggregate

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
)

// Query is one aggregation request over a filtered row set.
type Query struct {
	Table     string
	Where     predicate.Predicate
	Levels    []group.BoundLevel
	Summaries []group.BoundSummary
	Offset    int
	Limit     int
}

// Result holds the flat aggregate rows and the levels they were grouped by.
type Result struct {
	Rows   []group.AggregateRow
	Levels []group.Level
}

// Service is the aggregation builder: one group-by query per request,
// grouping only by the currently expanded path.
type Service struct {
	exec Executor
}

// New creates an aggregation service.
func New(exec Executor) *Service {
	return &Service{exec: exec}
}

// Build groups by Levels[:ExpandedDepth]. Summaries are computed per group
// in name order; count(*) is always returned separately.
func (s *Service) Build(ctx context.Context, q Query) (Result, error) {
	if len(q.Levels) == 0 {
		return Result{}, fmt.Errorf("aggregate: no group levels")
	}
	levels := group.Levels(q.Levels)
	depth := group.ExpandedDepth(levels)

	rows, err := s.exec.RunAggregate(ctx, s.compile(q, depth))
	if err != nil {
		return Result{}, domain.NewBackendFailure("aggregate", err)
	}
	return Result{Rows: rows, Levels: levels[:depth]}, nil
}

// CountGroups returns how many aggregate rows Build would yield without
// paging.
func (s *Service) CountGroups(ctx context.Context, q Query) (int64, error) {
	if len(q.Levels) == 0 {
		return 0, nil
	}
	depth := group.ExpandedDepth(group.Levels(q.Levels))
	n, err := s.exec.CountGroups(ctx, s.compile(q, depth))
	if err != nil {
		return 0, domain.NewBackendFailure("count_groups", err)
	}
	return n, nil
}

// Totals computes count(*) and summaries over the whole filtered set.
func (s *Service) Totals(
	ctx context.Context, table string, where predicate.Predicate, summaries []group.BoundSummary,
) (int64, []any, error) {
	rows, err := s.exec.RunAggregate(ctx, s.compile(Query{Table: table, Where: where, Summaries: summaries}, 0))
	if err != nil {
		return 0, nil, domain.NewBackendFailure("totals", err)
	}
	if len(rows) == 0 {
		return 0, EmptySummary(summaries), nil
	}
	return rows[0].Count, rows[0].Summaries, nil
}

// EmptySummary is the summary of an empty row set: zero counts, nulls for
// everything else.
func EmptySummary(summaries []group.BoundSummary) []any {
	out := make([]any, len(summaries))
	for i, s := range summaries {
		if s.Func() == group.Count {
			out[i] = int64(0)
		}
	}
	return out
}

func (s *Service) compile(q Query, depth int) *db.AggregateQuery {
	aq := &db.AggregateQuery{
		Table:  q.Table,
		Where:  q.Where,
		Offset: q.Offset,
		Limit:  q.Limit,
	}
	for _, l := range q.Levels[:depth] {
		aq.Keys = append(aq.Keys, db.GroupKey{
			Column:     l.Field.Column(),
			Interval:   l.Interval(),
			Descending: l.IsDescending(),
		})
	}
	for _, sm := range q.Summaries {
		col := ""
		if sm.Selector() != "" {
			col = sm.Field.Column()
		}
		aq.Summaries = append(aq.Summaries, db.SummaryColumn{Func: sm.Func(), Column: col})
	}
	return aq
}
