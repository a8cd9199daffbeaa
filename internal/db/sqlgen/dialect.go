package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/kailas-cloud/gridex/internal/db"
	"github.com/kailas-cloud/gridex/internal/domain/group"
)

// Dialect renders the vendor-specific parts of a statement.
type Dialect interface {
	Name() string
	Placeholder() PlaceholderStyle
	Quote(ident string) string
	TextCast(expr string) string
	DateTrunc(expr string, iv group.Interval) (string, error)
	LimitOffset(limit, offset int) string
	// FuzzyTerms returns full-text rank and trigram similarity expressions
	// for one column; db.ErrUnsupported when the vendor has neither.
	FuzzyTerms(b *Builder, column, query string) (rank, sim string, err error)
	IndexDDL(def *db.IndexDefinition) (string, error)
	// IsDuplicateIndex reports an "index already exists" error for vendors
	// without CREATE INDEX IF NOT EXISTS.
	IsDuplicateIndex(err error) bool
}

// ForName returns the dialect for a driver name.
func ForName(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	case "mysql":
		return MySQL{}, nil
	}
	return nil, fmt.Errorf("unknown sql dialect %q", driver)
}

func quoteWith(ident string, q string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

func btreeDDL(d Dialect, def *db.IndexDefinition, ifNotExists bool) string {
	var sb strings.Builder
	sb.WriteString("CREATE INDEX ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(d.Quote(def.Name))
	sb.WriteString(" ON ")
	sb.WriteString(d.Quote(def.Table))
	sb.WriteString(" (")
	for i, c := range def.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		if def.Method == db.IndexLower {
			sb.WriteString("(LOWER(" + d.Quote(c) + "))")
			continue
		}
		sb.WriteString(d.Quote(c))
	}
	sb.WriteString(")")
	return sb.String()
}

// Postgres is the PostgreSQL dialect (pgx driver).
type Postgres struct{}

func (Postgres) Name() string                  { return "postgres" }
func (Postgres) Placeholder() PlaceholderStyle { return PlaceholderDollar }
func (Postgres) Quote(ident string) string     { return quoteWith(ident, `"`) }
func (Postgres) TextCast(expr string) string   { return "CAST(" + expr + " AS TEXT)" }

func (Postgres) DateTrunc(expr string, iv group.Interval) (string, error) {
	if !iv.IsValid() {
		return "", fmt.Errorf("unsupported interval %q", iv)
	}
	return "date_trunc('" + string(iv) + "', " + expr + ")", nil
}

func (Postgres) LimitOffset(limit, offset int) string {
	var sb strings.Builder
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", offset)
	}
	return sb.String()
}

func (d Postgres) FuzzyTerms(b *Builder, column, query string) (rank, sim string, err error) {
	col := "COALESCE(" + d.TextCast(d.Quote(column)) + ", '')"
	rank = "ts_rank(to_tsvector('simple', " + col + "), plainto_tsquery('simple', " + b.Arg(query) + "))"
	sim = "similarity(" + col + ", " + b.Arg(query) + ")"
	return rank, sim, nil
}

func (d Postgres) IndexDDL(def *db.IndexDefinition) (string, error) {
	if def.Method == db.IndexTrigram {
		return "CREATE INDEX IF NOT EXISTS " + d.Quote(def.Name) + " ON " + d.Quote(def.Table) +
			" USING gin (" + d.Quote(def.Columns[0]) + " gin_trgm_ops)", nil
	}
	return btreeDDL(d, def, true), nil
}

func (Postgres) IsDuplicateIndex(error) bool { return false }

// SQLite is the SQLite dialect (modernc.org/sqlite or mattn/go-sqlite3).
type SQLite struct{}

func (SQLite) Name() string                  { return "sqlite" }
func (SQLite) Placeholder() PlaceholderStyle { return PlaceholderQuestion }
func (SQLite) Quote(ident string) string     { return quoteWith(ident, `"`) }
func (SQLite) TextCast(expr string) string   { return "CAST(" + expr + " AS TEXT)" }

func (SQLite) DateTrunc(expr string, iv group.Interval) (string, error) {
	switch iv {
	case group.Year:
		return "strftime('%Y-01-01', " + expr + ")", nil
	case group.Quarter:
		return "(strftime('%Y-', " + expr + ") || printf('%02d', ((CAST(strftime('%m', " + expr +
			") AS INTEGER) - 1) / 3) * 3 + 1) || '-01')", nil
	case group.Month:
		return "strftime('%Y-%m-01', " + expr + ")", nil
	case group.Day:
		return "strftime('%Y-%m-%d', " + expr + ")", nil
	case group.Hour:
		return "strftime('%Y-%m-%d %H:00:00', " + expr + ")", nil
	case group.Minute:
		return "strftime('%Y-%m-%d %H:%M:00', " + expr + ")", nil
	}
	return "", fmt.Errorf("unsupported interval %q", iv)
}

func (SQLite) LimitOffset(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
	}
	return ""
}

func (SQLite) FuzzyTerms(*Builder, string, string) (string, string, error) {
	return "", "", db.ErrUnsupported
}

func (d SQLite) IndexDDL(def *db.IndexDefinition) (string, error) {
	if def.Method == db.IndexTrigram {
		return "", fmt.Errorf("trigram index: %w", db.ErrUnsupported)
	}
	return btreeDDL(d, def, true), nil
}

func (SQLite) IsDuplicateIndex(error) bool { return false }

// MySQL is the MySQL dialect (go-sql-driver/mysql).
type MySQL struct{}

// erDupKeyName is ER_DUP_KEYNAME.
const erDupKeyName = 1061

func (MySQL) Name() string                  { return "mysql" }
func (MySQL) Placeholder() PlaceholderStyle { return PlaceholderQuestion }
func (MySQL) Quote(ident string) string     { return quoteWith(ident, "`") }
func (MySQL) TextCast(expr string) string   { return "CAST(" + expr + " AS CHAR)" }

func (MySQL) DateTrunc(expr string, iv group.Interval) (string, error) {
	switch iv {
	case group.Year:
		return "DATE_FORMAT(" + expr + ", '%Y-01-01')", nil
	case group.Quarter:
		return "CONCAT(YEAR(" + expr + "), '-', LPAD((QUARTER(" + expr + ") - 1) * 3 + 1, 2, '0'), '-01')", nil
	case group.Month:
		return "DATE_FORMAT(" + expr + ", '%Y-%m-01')", nil
	case group.Day:
		return "DATE_FORMAT(" + expr + ", '%Y-%m-%d')", nil
	case group.Hour:
		return "DATE_FORMAT(" + expr + ", '%Y-%m-%d %H:00:00')", nil
	case group.Minute:
		return "DATE_FORMAT(" + expr + ", '%Y-%m-%d %H:%i:00')", nil
	}
	return "", fmt.Errorf("unsupported interval %q", iv)
}

func (MySQL) LimitOffset(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf(" LIMIT 18446744073709551615 OFFSET %d", offset)
	}
	return ""
}

func (MySQL) FuzzyTerms(*Builder, string, string) (string, string, error) {
	return "", "", db.ErrUnsupported
}

func (d MySQL) IndexDDL(def *db.IndexDefinition) (string, error) {
	if def.Method == db.IndexTrigram {
		return "", fmt.Errorf("trigram index: %w", db.ErrUnsupported)
	}
	return btreeDDL(d, def, false), nil
}

func (MySQL) IsDuplicateIndex(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupKeyName
}
