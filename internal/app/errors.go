package app

import "errors"

// ErrVersionConflict is returned by SaveContent when the caller's
// expectedVersion does not match the stored document's version. The
// accompanying document is the current stored content, returned so the
// caller can reconcile without data loss.
var ErrVersionConflict = errors.New("content version conflict")

// ErrUnauthorized is returned when a credential check fails.
var ErrUnauthorized = errors.New("unauthorized")
