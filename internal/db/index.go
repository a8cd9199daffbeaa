package db

import (
	"errors"
	"strconv"
)

// IndexMethod is the access method of a secondary index.
type IndexMethod string

const (
	// IndexBTree is a plain ordered index for sorting and equality filters.
	IndexBTree IndexMethod = "btree"
	// IndexTrigram is a GIN trigram index (Postgres pg_trgm) for similarity search.
	IndexTrigram IndexMethod = "trigram"
	// IndexLower is an expression index on LOWER(column) for case-insensitive equality.
	IndexLower IndexMethod = "lower"
)

// IndexDefinition is a complete secondary index definition used by CreateIndex.
type IndexDefinition struct {
	Name    string
	Table   string
	Method  IndexMethod
	Columns []string
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if !IsValidIdentifier(idx.Table) {
		return errors.New("index table contains invalid characters")
	}
	switch idx.Method {
	case IndexBTree, IndexTrigram, IndexLower:
	default:
		return errors.New("unknown index method " + strconv.Quote(string(idx.Method)))
	}
	if len(idx.Columns) == 0 {
		return errors.New("at least one column is required")
	}
	if idx.Method != IndexBTree && len(idx.Columns) != 1 {
		return errors.New(string(idx.Method) + " index takes exactly one column")
	}

	seen := make(map[string]bool)
	for i, c := range idx.Columns {
		if c == "" {
			return errors.New("column name is required at index " + strconv.Itoa(i))
		}
		if !IsValidIdentifier(c) {
			return errors.New("column name contains invalid characters: " + c)
		}
		if seen[c] {
			return errors.New("duplicate column name: " + c)
		}
		seen[c] = true
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_.]+ and does not
// start with a digit or dot.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '.'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
		if i == 0 && (isDigit || r == '.') {
			return false
		}
	}
	return true
}
