package survivor

import "github.com/survivor-labs/survivor-indexer/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest        = domain.ErrInvalidRequest
	ErrInvalidScalarEncoding = domain.ErrInvalidScalarEncoding
	ErrUnknownSymbolicName   = domain.ErrUnknownSymbolicName
	ErrUnknownEnumCode       = domain.ErrUnknownEnumCode
	ErrMissingRequiredField  = domain.ErrMissingRequiredField
	ErrDataIntegrity         = domain.ErrDataIntegrity
	ErrStoreUnavailable      = domain.ErrStoreUnavailable
)
