package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound      = errors.New("db: key not found")
	ErrUnsupported      = errors.New("db: unsupported by backend")
	ErrInvalidIndexSpec = errors.New("db: invalid index definition")
)

// Op names used for error context and metrics.
const (
	OpScan        = "scan"
	OpCount       = "count"
	OpAggregate   = "aggregate"
	OpCountGroups = "count_groups"
	OpCreateIndex = "create_index"
	OpPing        = "ping"
	OpCompile     = "compile"
	OpGet         = "GET"
	OpSet         = "SET"
	OpIncrBy      = "INCRBY"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
