package pilotprefs

import "github.com/kailas-cloud/pilotprefs/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnauthenticated = domain.ErrUnauthenticated
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrProfileNotFound = domain.ErrProfileNotFound
	ErrInternal        = domain.ErrInternal
)
