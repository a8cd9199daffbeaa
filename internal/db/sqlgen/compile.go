package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
)

// Computed column aliases.
const (
	ColScore = "_gridex_score"
	ColExact = "_gridex_exact"
	ColRank  = "_gridex_rank"
	ColSim   = "_gridex_sim"
	ColCount = "_gridex_count"
)

// KeyAlias is the alias of the i-th group key in aggregate output.
func KeyAlias(i int) string { return "_gridex_k" + strconv.Itoa(i) }

// SummaryAlias is the alias of the i-th summary in aggregate output.
func SummaryAlias(i int) string { return "_gridex_s" + strconv.Itoa(i) }

// Compiler turns query descriptions into SQL for one dialect.
type Compiler struct {
	d Dialect
}

// NewCompiler creates a Compiler.
func NewCompiler(d Dialect) *Compiler { return &Compiler{d: d} }

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() Dialect { return c.d }

// Where renders a predicate.
func (c *Compiler) Where(b *Builder, p predicate.Predicate) (string, error) {
	switch v := p.(type) {
	case nil, predicate.True:
		return "1=1", nil
	case predicate.False:
		return "1=0", nil
	case predicate.And:
		return c.join(b, v.Terms, " AND ")
	case predicate.Or:
		return c.join(b, v.Terms, " OR ")
	case predicate.Not:
		inner, err := c.Where(b, v.Term)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case predicate.Eq:
		col, err := c.column(v.Column)
		if err != nil {
			return "", err
		}
		if v.Value == nil {
			return col + " IS NULL", nil
		}
		if v.CastText {
			col = c.d.TextCast(col)
		}
		if v.FoldCase {
			return "LOWER(" + col + ") = LOWER(" + b.Arg(predicate.Text(v.Value)) + ")", nil
		}
		return col + " = " + b.Arg(v.Value), nil
	case predicate.In:
		col, err := c.column(v.Column)
		if err != nil {
			return "", err
		}
		if len(v.Values) == 0 {
			return "1=0", nil
		}
		ph := make([]string, len(v.Values))
		for i, val := range v.Values {
			ph[i] = b.Arg(val)
		}
		return col + " IN (" + strings.Join(ph, ", ") + ")", nil
	case predicate.Contains:
		col, err := c.column(v.Column)
		if err != nil {
			return "", err
		}
		if v.CastText {
			col = c.d.TextCast(col)
		}
		return "LOWER(" + col + ") LIKE LOWER(" + b.Arg(likePattern(v.Value)) + ") ESCAPE '!'", nil
	}
	return "", fmt.Errorf("unsupported predicate %T", p)
}

func (c *Compiler) join(b *Builder, terms []predicate.Predicate, sep string) (string, error) {
	if len(terms) == 0 {
		if sep == " AND " {
			return "1=1", nil
		}
		return "1=0", nil
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		s, err := c.Where(b, t)
		if err != nil {
			return "", err
		}
		parts[i] = "(" + s + ")"
	}
	return strings.Join(parts, sep), nil
}

func (c *Compiler) column(name string) (string, error) {
	if !db.IsValidIdentifier(name) {
		return "", fmt.Errorf("invalid column %q", name)
	}
	return c.d.Quote(name), nil
}

func (c *Compiler) table(name string) (string, error) {
	if !db.IsValidIdentifier(name) {
		return "", fmt.Errorf("invalid table %q", name)
	}
	return c.d.Quote(name), nil
}

// likePattern escapes LIKE wildcards with '!' and wraps the value in %.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}

// exactExpr is 1 when any column equals query case-insensitively, else 0.
func (c *Compiler) exactExpr(b *Builder, s *db.Scoring) (string, error) {
	conds := make([]string, 0, len(s.Columns))
	for _, wc := range s.Columns {
		col, err := c.column(wc.Column)
		if err != nil {
			return "", err
		}
		if wc.CastText {
			col = c.d.TextCast(col)
		}
		conds = append(conds, "LOWER("+col+") = LOWER("+b.Arg(s.Query)+")")
	}
	if len(conds) == 0 {
		return "0", nil
	}
	return "CASE WHEN " + strings.Join(conds, " OR ") + " THEN 1 ELSE 0 END", nil
}

func (c *Compiler) selectList(q *db.ScanQuery) ([]string, error) {
	seen := make(map[string]bool, len(q.Columns)+1)
	out := make([]string, 0, len(q.Columns)+1)
	for _, name := range append([]string{q.PrimaryKey}, q.Columns...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		col, err := c.column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

func (c *Compiler) orderBy(q *db.ScanQuery) (string, error) {
	if len(q.Order) == 0 {
		return "", nil
	}
	parts := make([]string, len(q.Order))
	for i, k := range q.Order {
		var expr string
		switch k.Kind {
		case db.OrderScore:
			expr = c.d.Quote(ColScore)
		case db.OrderExact:
			expr = c.d.Quote(ColExact)
		default:
			col, err := c.column(k.Column)
			if err != nil {
				return "", err
			}
			expr = col
		}
		if k.Descending {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		parts[i] = expr
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// Scan compiles a filtered scan. Fuzzy scoring runs in a derived table so
// the thresholds and ordering can reference the computed columns; ordering
// always precedes LIMIT.
func (c *Compiler) Scan(q *db.ScanQuery) (Statement, error) {
	b := NewBuilder(c.d.Placeholder())
	table, err := c.table(q.Table)
	if err != nil {
		return Statement{}, err
	}
	cols, err := c.selectList(q)
	if err != nil {
		return Statement{}, err
	}
	order, err := c.orderBy(q)
	if err != nil {
		return Statement{}, err
	}

	var sql string
	switch {
	case q.Scoring != nil && q.Scoring.Mode == db.ScoreFuzzy:
		sql, err = c.fuzzyScan(b, q, table, cols, order)
		if err != nil {
			return Statement{}, err
		}
	case q.Scoring != nil && q.Scoring.Mode == db.ScoreExact:
		exact, err := c.exactExpr(b, q.Scoring)
		if err != nil {
			return Statement{}, err
		}
		where, err := c.Where(b, q.Where)
		if err != nil {
			return Statement{}, err
		}
		sql = "SELECT " + strings.Join(cols, ", ") + ", " + exact + " AS " + c.d.Quote(ColExact) +
			" FROM " + table + " WHERE " + where + order
	default:
		where, err := c.Where(b, q.Where)
		if err != nil {
			return Statement{}, err
		}
		sql = "SELECT " + strings.Join(cols, ", ") + " FROM " + table + " WHERE " + where + order
	}

	sql += c.d.LimitOffset(q.Limit, q.Offset)
	return Statement{SQL: sql, Args: b.Args()}, nil
}

func (c *Compiler) fuzzyScan(b *Builder, q *db.ScanQuery, table string, cols []string, order string) (string, error) {
	s := q.Scoring
	if len(s.Columns) == 0 {
		return "", fmt.Errorf("fuzzy scan without columns")
	}

	ranks := make([]string, 0, len(s.Columns))
	sims := make([]string, 0, len(s.Columns))
	for _, wc := range s.Columns {
		if !db.IsValidIdentifier(wc.Column) {
			return "", fmt.Errorf("invalid column %q", wc.Column)
		}
		rank, sim, err := c.d.FuzzyTerms(b, wc.Column, s.Query)
		if err != nil {
			return "", err
		}
		w := strconv.FormatFloat(wc.Weight, 'g', -1, 64)
		ranks = append(ranks, rank+" * "+w)
		sims = append(sims, sim+" * "+w)
	}
	exact, err := c.exactExpr(b, s)
	if err != nil {
		return "", err
	}
	where, err := c.Where(b, q.Where)
	if err != nil {
		return "", err
	}

	rankCol, simCol, exactCol := c.d.Quote(ColRank), c.d.Quote(ColSim), c.d.Quote(ColExact)
	inner := "SELECT " + strings.Join(cols, ", ") +
		", (" + strings.Join(ranks, " + ") + ") AS " + rankCol +
		", (" + strings.Join(sims, " + ") + ") AS " + simCol +
		", " + exact + " AS " + exactCol +
		" FROM " + table + " WHERE " + where

	bonus := strconv.FormatFloat(s.ExactBonus, 'g', -1, 64)
	score := "(" + rankCol + " * 2 + " + simCol + " + " + exactCol + " * " + bonus + ")"
	return "SELECT *, " + score + " AS " + c.d.Quote(ColScore) +
		" FROM (" + inner + ") AS " + c.d.Quote("_gridex_ranked") +
		" WHERE " + rankCol + " > " + b.Arg(s.MinRank) + " OR " + simCol + " > " + b.Arg(s.MinSimilarity) +
		order, nil
}

// Count compiles SELECT COUNT(*).
func (c *Compiler) Count(q *db.CountQuery) (Statement, error) {
	b := NewBuilder(c.d.Placeholder())
	table, err := c.table(q.Table)
	if err != nil {
		return Statement{}, err
	}
	where, err := c.Where(b, q.Where)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "SELECT COUNT(*) FROM " + table + " WHERE " + where, Args: b.Args()}, nil
}

func (c *Compiler) keyExprs(keys []db.GroupKey) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		col, err := c.column(k.Column)
		if err != nil {
			return nil, err
		}
		if k.Interval != "" {
			col, err = c.d.DateTrunc(col, k.Interval)
			if err != nil {
				return nil, err
			}
		}
		out[i] = col
	}
	return out, nil
}

func (c *Compiler) summaryExpr(s db.SummaryColumn) (string, error) {
	if s.Column == "" {
		if s.Func != group.Count {
			return "", fmt.Errorf("%s requires a column", s.Func)
		}
		return "COUNT(*)", nil
	}
	col, err := c.column(s.Column)
	if err != nil {
		return "", err
	}
	switch s.Func {
	case group.Count:
		return "COUNT(" + col + ")", nil
	case group.Sum:
		return "SUM(" + col + ")", nil
	case group.Avg:
		return "AVG(" + col + ")", nil
	case group.Min:
		return "MIN(" + col + ")", nil
	case group.Max:
		return "MAX(" + col + ")", nil
	}
	return "", fmt.Errorf("unsupported aggregate %q", s.Func)
}

// Aggregate compiles a group-by pass. Output columns are the key aliases,
// the count and the summary aliases in order.
func (c *Compiler) Aggregate(q *db.AggregateQuery) (Statement, error) {
	b := NewBuilder(c.d.Placeholder())
	table, err := c.table(q.Table)
	if err != nil {
		return Statement{}, err
	}
	keys, err := c.keyExprs(q.Keys)
	if err != nil {
		return Statement{}, err
	}

	sel := make([]string, 0, len(keys)+1+len(q.Summaries))
	for i, k := range keys {
		sel = append(sel, k+" AS "+c.d.Quote(KeyAlias(i)))
	}
	sel = append(sel, "COUNT(*) AS "+c.d.Quote(ColCount))
	for i, s := range q.Summaries {
		expr, err := c.summaryExpr(s)
		if err != nil {
			return Statement{}, err
		}
		sel = append(sel, expr+" AS "+c.d.Quote(SummaryAlias(i)))
	}

	where, err := c.Where(b, q.Where)
	if err != nil {
		return Statement{}, err
	}
	sql := "SELECT " + strings.Join(sel, ", ") + " FROM " + table + " WHERE " + where
	if len(keys) > 0 {
		sql += " GROUP BY " + strings.Join(keys, ", ")
		order := make([]string, len(keys))
		for i := range keys {
			dir := " ASC"
			if q.Keys[i].Descending {
				dir = " DESC"
			}
			order[i] = c.d.Quote(KeyAlias(i)) + dir
		}
		sql += " ORDER BY " + strings.Join(order, ", ")
		sql += c.d.LimitOffset(q.Limit, q.Offset)
	}
	return Statement{SQL: sql, Args: b.Args()}, nil
}

// CountGroups compiles the number of groups an Aggregate would return
// before Limit/Offset.
func (c *Compiler) CountGroups(q *db.AggregateQuery) (Statement, error) {
	if len(q.Keys) == 0 {
		return Statement{SQL: "SELECT 1"}, nil
	}
	b := NewBuilder(c.d.Placeholder())
	table, err := c.table(q.Table)
	if err != nil {
		return Statement{}, err
	}
	keys, err := c.keyExprs(q.Keys)
	if err != nil {
		return Statement{}, err
	}
	where, err := c.Where(b, q.Where)
	if err != nil {
		return Statement{}, err
	}
	sql := "SELECT COUNT(*) FROM (SELECT 1 AS " + c.d.Quote("one") + " FROM " + table +
		" WHERE " + where + " GROUP BY " + strings.Join(keys, ", ") + ") AS " + c.d.Quote("_gridex_groups")
	return Statement{SQL: sql, Args: b.Args()}, nil
}

// CreateIndex compiles index DDL.
func (c *Compiler) CreateIndex(def *db.IndexDefinition) (Statement, error) {
	if err := def.Validate(); err != nil {
		return Statement{}, fmt.Errorf("%w: %v", db.ErrInvalidIndexSpec, err)
	}
	sql, err := c.d.IndexDDL(def)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql}, nil
}
