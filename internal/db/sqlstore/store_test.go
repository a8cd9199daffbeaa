package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/group"
	"github.com/kailas-cloud/gridex/internal/domain/predicate"
)

const testSchema = `
CREATE TABLE sales (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	region TEXT NOT NULL,
	amount INTEGER NOT NULL,
	sold_at TEXT NOT NULL,
	is_removed INTEGER NOT NULL DEFAULT 0
);
INSERT INTO sales (id, name, region, amount, sold_at, is_removed) VALUES
	(1, 'Acme', 'East', 100, '2024-01-15 10:00:00', 0),
	(2, 'Acme Corp', 'East', 50, '2024-02-03 09:30:00', 0),
	(3, 'Beta acme', 'West', 70, '2024-01-20 12:00:00', 0),
	(4, 'Gamma', 'West', 30, '2024-01-21 12:00:00', 0),
	(5, 'Acme Removed', 'East', 999, '2024-01-01 00:00:00', 1);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(testSchema); err != nil {
		t.Fatalf("schema: %v", err)
	}
	s, err := Wrap(conn, "sqlite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

var live = predicate.Eq{Column: "is_removed", Value: false}

func ids(res *db.ScanResult) []int64 {
	out := make([]int64, len(res.Entries))
	for i, e := range res.Entries {
		out[i], _ = e.Fields["id"].(int64)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(Config{Driver: "sqlite"}); err == nil {
		t.Error("expected error for empty dsn")
	}
	if _, err := NewStore(Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestNewStore_SQLite(t *testing.T) {
	s, err := NewStore(Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "x.db"), MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	caps, err := s.DetectCapabilities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caps.Backend != "sqlite" || caps.Fuzzy() {
		t.Errorf("caps = %+v", caps)
	}
	if s.Capabilities() != caps {
		t.Errorf("Capabilities() = %+v, want %+v", s.Capabilities(), caps)
	}
}

func TestRunFilteredScan_OrderedPage(t *testing.T) {
	s := newTestStore(t)
	res, err := s.RunFilteredScan(context.Background(), &db.ScanQuery{
		Table:      "sales",
		PrimaryKey: "id",
		Columns:    []string{"name", "amount"},
		Where:      live,
		Order:      []db.OrderKey{{Column: "amount", Descending: true}, {Column: "id"}},
		Limit:      2,
		Offset:     1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(res); !equalIDs(got, []int64{3, 2}) {
		t.Errorf("ids = %v, want [3 2]", got)
	}
	if _, ok := res.Entries[0].Fields["region"]; ok {
		t.Error("unselected column returned")
	}
	if name, _ := res.Entries[0].Fields["name"].(string); name != "Beta acme" {
		t.Errorf("name = %q", name)
	}
}

func TestRunFilteredScan_ExactFirst(t *testing.T) {
	s := newTestStore(t)
	res, err := s.RunFilteredScan(context.Background(), &db.ScanQuery{
		Table:      "sales",
		PrimaryKey: "id",
		Columns:    []string{"name"},
		Where: predicate.AndOf(live, predicate.OrOf(
			predicate.Contains{Column: "name", Value: "ACME"},
		)),
		Scoring: &db.Scoring{
			Mode:    db.ScoreExact,
			Query:   "ACME",
			Columns: []db.WeightedColumn{{Column: "name", Weight: 1}},
		},
		Order: []db.OrderKey{{Kind: db.OrderExact, Descending: true}, {Column: "id"}},
		Limit: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(res); !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("ids = %v, want [1 2 3]", got)
	}
	if !res.Entries[0].Exact || res.Entries[1].Exact {
		t.Errorf("exact flags = %v, %v", res.Entries[0].Exact, res.Entries[1].Exact)
	}
	if _, ok := res.Entries[0].Fields["_gridex_exact"]; ok {
		t.Error("computed column leaked into fields")
	}
}

func TestRunFilteredScan_LikeWildcardsAreLiteral(t *testing.T) {
	s := newTestStore(t)
	res, err := s.RunFilteredScan(context.Background(), &db.ScanQuery{
		Table: "sales", PrimaryKey: "id",
		Where: predicate.Contains{Column: "name", Value: "%"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("got %d rows, want 0", len(res.Entries))
	}
}

func TestRunFilteredScan_FuzzyUnsupported(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RunFilteredScan(context.Background(), &db.ScanQuery{
		Table: "sales", PrimaryKey: "id",
		Scoring: &db.Scoring{Mode: db.ScoreFuzzy, Query: "acme", Columns: []db.WeightedColumn{{Column: "name", Weight: 1}}},
	})
	if !errors.Is(err, db.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpCompile {
		t.Errorf("error = %#v, want db.Error{Op: compile}", err)
	}
}

func TestRunFilteredScan_BackendError(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RunFilteredScan(context.Background(), &db.ScanQuery{Table: "missing", PrimaryKey: "id"})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpScan {
		t.Errorf("error = %v, want db.Error{Op: scan}", err)
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Count(context.Background(), &db.CountQuery{
		Table: "sales",
		Where: predicate.AndOf(live, predicate.Eq{Column: "region", Value: "east", FoldCase: true}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestRunAggregate_RegionMonth(t *testing.T) {
	s := newTestStore(t)
	q := &db.AggregateQuery{
		Table: "sales",
		Where: live,
		Keys: []db.GroupKey{
			{Column: "region"},
			{Column: "sold_at", Interval: group.Month},
		},
		Summaries: []db.SummaryColumn{{Func: group.Sum, Column: "amount"}, {Func: group.Max, Column: "name"}},
		Limit:     10,
	}
	rows, err := s.RunAggregate(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		region, month string
		count         int64
		sum           int64
	}{
		{"East", "2024-01-01", 1, 100},
		{"East", "2024-02-01", 1, 50},
		{"West", "2024-01-01", 2, 100},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i, w := range want {
		r := rows[i]
		if r.GroupValues[0] != w.region || r.GroupValues[1] != w.month || r.Count != w.count {
			t.Errorf("row %d = %+v, want %+v", i, r, w)
		}
		if r.Summaries[0] != w.sum {
			t.Errorf("row %d sum = %#v, want %d", i, r.Summaries[0], w.sum)
		}
	}
	if rows[2].Summaries[1] != "Gamma" {
		t.Errorf("max(name) = %#v", rows[2].Summaries[1])
	}

	n, err := s.CountGroups(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("CountGroups() = %d, want 3", n)
	}
}

func TestRunAggregate_Paged(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.RunAggregate(context.Background(), &db.AggregateQuery{
		Table:  "sales",
		Where:  live,
		Keys:   []db.GroupKey{{Column: "region", Descending: true}},
		Limit:  1,
		Offset: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].GroupValues[0] != "East" || rows[0].Count != 2 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRunAggregate_Total(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.RunAggregate(context.Background(), &db.AggregateQuery{
		Table:     "sales",
		Where:     live,
		Summaries: []db.SummaryColumn{{Func: group.Avg, Column: "amount"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Count != 4 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Summaries[0] != 62.5 {
		t.Errorf("avg = %#v, want 62.5", rows[0].Summaries[0])
	}
}

func TestCreateIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	def := db.NewIndex("sales").Columns("region", "sold_at").MustBuild()

	for i := 0; i < 2; i++ {
		if err := s.CreateIndex(ctx, def); err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i, err)
		}
	}
	var n int
	err := s.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", def.Name).Scan(&n)
	if err != nil || n != 1 {
		t.Errorf("index count = %d, %v", n, err)
	}

	err = s.CreateIndex(ctx, db.NewIndex("sales").Trigram("name").MustBuild())
	if !errors.Is(err, db.ErrUnsupported) {
		t.Errorf("trigram error = %v, want ErrUnsupported", err)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{float32(1.5), 1.5},
		{int64(2), 2},
		{true, 1},
		{"0.25", 0.25},
		{nil, 0},
	}
	for _, tc := range tests {
		if got := toFloat(tc.in); got != tc.want {
			t.Errorf("toFloat(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
