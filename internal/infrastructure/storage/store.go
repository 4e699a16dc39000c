package storage

import (
	"context"
	"time"
)

// ObjectStore keeps generated export files.
type ObjectStore interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	// GenerateDownloadURL returns a presigned link and its expiry. A zero
	// expiresIn uses the store default.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}
