package sqlstore

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/db/sqlgen"
	"github.com/kailas-cloud/gridex/internal/domain/group"
)

// computed columns never leak into row fields
var computed = map[string]bool{
	sqlgen.ColScore: true,
	sqlgen.ColExact: true,
	sqlgen.ColRank:  true,
	sqlgen.ColSim:   true,
}

// RunFilteredScan executes a compiled scan.
func (s *Store) RunFilteredScan(ctx context.Context, q *db.ScanQuery) (*db.ScanResult, error) {
	st, err := s.compiler.Scan(q)
	if err != nil {
		return nil, &db.Error{Op: db.OpCompile, Err: err}
	}
	rows, err := s.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}

	capHint := q.Limit
	if capHint <= 0 || capHint > 1024 {
		capHint = 64
	}
	res := &db.ScanResult{Entries: make([]db.ScanEntry, 0, capHint)}
	for rows.Next() {
		vals, err := scanValues(rows, len(cols))
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		entry := db.ScanEntry{Fields: make(map[string]any, len(cols))}
		for i, c := range cols {
			switch c {
			case sqlgen.ColScore:
				entry.Score = toFloat(vals[i])
			case sqlgen.ColExact:
				entry.Exact = toFloat(vals[i]) > 0
			}
			if computed[c] {
				continue
			}
			entry.Fields[c] = vals[i]
		}
		res.Entries = append(res.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return res, nil
}

// Count returns the number of matching rows.
func (s *Store) Count(ctx context.Context, q *db.CountQuery) (int64, error) {
	st, err := s.compiler.Count(q)
	if err != nil {
		return 0, &db.Error{Op: db.OpCompile, Err: err}
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// RunAggregate executes a group-by pass.
func (s *Store) RunAggregate(ctx context.Context, q *db.AggregateQuery) ([]group.AggregateRow, error) {
	st, err := s.compiler.Aggregate(q)
	if err != nil {
		return nil, &db.Error{Op: db.OpCompile, Err: err}
	}
	rows, err := s.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	defer func() { _ = rows.Close() }()

	nk, ns := len(q.Keys), len(q.Summaries)
	width := nk + 1 + ns
	var out []group.AggregateRow
	for rows.Next() {
		vals, err := scanValues(rows, width)
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: err}
		}
		row := group.AggregateRow{
			GroupValues: vals[:nk],
			Count:       int64(toFloat(vals[nk])),
		}
		if ns > 0 {
			row.Summaries = make([]any, ns)
			for i, v := range vals[nk+1:] {
				if q.Summaries[i].Func == group.Min || q.Summaries[i].Func == group.Max {
					row.Summaries[i] = v
					continue
				}
				row.Summaries[i] = toNumber(v)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	return out, nil
}

// CountGroups returns the number of distinct key tuples.
func (s *Store) CountGroups(ctx context.Context, q *db.AggregateQuery) (int64, error) {
	st, err := s.compiler.CountGroups(q)
	if err != nil {
		return 0, &db.Error{Op: db.OpCompile, Err: err}
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCountGroups, Err: err}
	}
	return n, nil
}

// CreateIndex creates a secondary index; an existing index is not an error.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	st, err := s.compiler.CreateIndex(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if _, err := s.db.ExecContext(ctx, st.SQL); err != nil {
		if s.compiler.Dialect().IsDuplicateIndex(err) {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

func scanValues(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range vals {
		if b, ok := v.([]byte); ok {
			vals[i] = string(b)
		}
	}
	return vals, nil
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	}
	return 0
}

// toNumber turns driver decimal text (Postgres numeric, MySQL DECIMAL) into
// a float64; other values pass through.
func toNumber(v any) any {
	switch x := v.(type) {
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
		return x
	case float32:
		return float64(x)
	}
	return v
}
