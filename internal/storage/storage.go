// Package storage provides the object store used for car pictures, evidence
// photos, and generated report blobs.
package storage

import (
	"context"
	"time"
)

// ObjectStore is the minimal surface the services need. Uploads return the
// object key, which is what gets persisted on records; signed URLs are minted
// on demand with an explicit validity.
type ObjectStore interface {
	// Put stores data under key with the given content type and returns the key.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)

	// SignedURL returns a time-limited download URL for an existing object.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
