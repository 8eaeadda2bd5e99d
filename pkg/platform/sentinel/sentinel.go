package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors exactly once.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrAlreadyUsed: a unique key (citizen_id, normalised business key) is taken or retired
//   - ErrConflict: the stored version no longer matches the caller's copy
//   - ErrInvalidState: the write would rewrite an immutable field or the history
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
