package storage

import (
	"context"
	"io"
)

// StoredObject describes a persisted upload.
type StoredObject struct {
	Key string
	URL string
}

// ObjectStore persists uploaded files. Implementations must complete the write
// before returning so callers can safely create referencing database rows
// afterwards.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader) (StoredObject, error)
	Delete(ctx context.Context, key string) error
}
