package gridex

import "github.com/kailas-cloud/gridex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrResourceNotFound    = domain.ErrResourceNotFound
	ErrInvalidFilterFormat = domain.ErrInvalidFilterFormat
	ErrInvalidParams       = domain.ErrInvalidParams
	ErrBackendFailure      = domain.ErrBackendFailure
	ErrInvalidSchema       = domain.ErrInvalidSchema
)
