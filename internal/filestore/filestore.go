package filestore

import (
	"context"
)

// Store persists attachment bytes and returns a location reference the
// caller records alongside the owning entity.
type Store interface {
	Store(ctx context.Context, data []byte, contentType, originalName string) (string, error)
}
