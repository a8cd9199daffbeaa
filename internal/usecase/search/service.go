package search

import (
	"context"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
	"github.com/kailas-cloud/gridex/internal/domain/schema"
	"github.com/kailas-cloud/gridex/internal/domain/search/request"
	"github.com/kailas-cloud/gridex/internal/domain/search/result"
	"github.com/kailas-cloud/gridex/internal/domain/search/strategy"
	"github.com/kailas-cloud/gridex/internal/metrics"
)

// Fuzzy scoring constants.
const (
	ExactBonus    = 10.0
	MinRank       = 0.1
	MinSimilarity = 0.3
)

// Service is the search cascade: fuzzy ranking when the backend can and the
// resource wants it, otherwise exact-first substring matching. Every path is
// one query whose ordering precedes its limit.
type Service struct {
	scanner Scanner
	caps    db.Capabilities
}

// New creates a search service. caps is decided once per backend.
func New(scanner Scanner, caps db.Capabilities) *Service {
	return &Service{scanner: scanner, caps: caps}
}

// Search ranks rows of res matching req. A short query or no resolved
// columns yields the empty result without touching the backend.
func (s *Service) Search(ctx context.Context, res schema.Resource, req *request.Request) (result.Ranked, error) {
	if req.IsEmpty() {
		record(strategy.Empty)
		return result.Empty(), nil
	}

	var (
		q     *db.ScanQuery
		strat strategy.Strategy
	)
	if text := req.TextColumns(); req.Config().UseFuzzy && s.caps.Fuzzy() && len(text) > 0 {
		q, strat = fuzzyQuery(res, req, text), strategy.Fuzzy
	} else {
		q, strat = substringQuery(res, req)
	}

	out, err := s.scanner.RunFilteredScan(ctx, q)
	if err != nil {
		return result.Ranked{}, domain.NewBackendFailure("search", err)
	}

	limit := req.Config().MaxResults
	entries := out.Entries
	if len(entries) > limit {
		entries = entries[:limit]
	}
	hits := make([]result.Hit, len(entries))
	anyExact := false
	for i, e := range entries {
		anyExact = anyExact || e.Exact
		hits[i] = result.NewHit(e.Fields[res.PrimaryKey()], e.Score, e.Exact, e.Fields)
	}
	if strat == strategy.ExactFirst && !anyExact {
		strat = strategy.Contains
	}

	record(strat)
	return result.NewRanked(hits, strat), nil
}

func fuzzyQuery(res schema.Resource, req *request.Request, text []schema.Field) *db.ScanQuery {
	cfg := req.Config()
	cols := make([]db.WeightedColumn, len(text))
	for i, f := range text {
		cols[i] = db.WeightedColumn{Column: f.Column(), Weight: cfg.Weight(f.Name())}
	}
	return &db.ScanQuery{
		Table:      res.Table(),
		PrimaryKey: res.PrimaryKey(),
		Columns:    res.Columns(),
		Where:      req.Base(),
		Scoring: &db.Scoring{
			Mode:          db.ScoreFuzzy,
			Query:         req.Query(),
			Columns:       cols,
			ExactBonus:    ExactBonus,
			MinRank:       MinRank,
			MinSimilarity: MinSimilarity,
		},
		Order: []db.OrderKey{
			{Kind: db.OrderScore, Descending: true},
			{Column: res.PrimaryKey()},
		},
		Limit: cfg.MaxResults,
	}
}

// substringQuery matches rows containing the query in any column. With
// exact prioritization, exact rows sort first; exact rows are a subset of
// containing rows, so one query yields exact-then-partial by id.
func substringQuery(res schema.Resource, req *request.Request) (*db.ScanQuery, strategy.Strategy) {
	cfg := req.Config()
	contains := make([]predicate.Predicate, 0, len(req.Columns()))
	cols := make([]db.WeightedColumn, 0, len(req.Columns()))
	for _, f := range req.Columns() {
		cast := !f.IsText()
		contains = append(contains, predicate.Contains{Column: f.Column(), Value: req.Query(), CastText: cast})
		cols = append(cols, db.WeightedColumn{Column: f.Column(), Weight: cfg.Weight(f.Name()), CastText: cast})
	}

	q := &db.ScanQuery{
		Table:      res.Table(),
		PrimaryKey: res.PrimaryKey(),
		Columns:    res.Columns(),
		Where:      predicate.AndOf(req.Base(), predicate.OrOf(contains...)),
		Order:      []db.OrderKey{{Column: res.PrimaryKey()}},
		Limit:      cfg.MaxResults,
	}
	if !cfg.PrioritizeExactMatches {
		return q, strategy.Contains
	}
	q.Scoring = &db.Scoring{Mode: db.ScoreExact, Query: req.Query(), Columns: cols}
	q.Order = append([]db.OrderKey{{Kind: db.OrderExact, Descending: true}}, q.Order...)
	return q, strategy.ExactFirst
}

func record(s strategy.Strategy) {
	metrics.SearchStrategyTotal.WithLabelValues(string(s)).Inc()
}
