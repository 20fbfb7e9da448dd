// Package blob provides key-addressed object storage backends for the
// content store. The canonical content document, its single-slot
// backup, and uploaded assets are all plain objects under well-known
// keys.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when no object exists
// under the requested key.
var ErrNotFound = errors.New("object not found")

// PutOptions control how an object is stored. Public objects are
// readable without credentials once written; the backup slot is
// stored private.
type PutOptions struct {
	ContentType string
	Public      bool
}

// ObjectStore is the minimal surface the content layer needs from a
// blob backend: single-key reads and writes, no transactions. The
// version check in the service layer is the sole concurrency-control
// mechanism; implementations are not expected to provide more.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
