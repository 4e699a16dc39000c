package shared

import (
	"context"
	"fmt"
	"time"
)

// MaxIdempotencyKeyLength bounds a client-supplied request key.
const MaxIdempotencyKeyLength = 128

// IdempotencyStore claims request keys for a while so a retried write whose
// key is still claimed is refused instead of applied twice.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl and reports whether it was free.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release frees a key whose guarded write failed.
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig controls request de-duplication.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}

// ScopedKey namespaces key by the write it guards, so the same client key may
// be reused across unrelated endpoints.
func ScopedKey(scope, key string) string {
	return scope + ":" + key
}

// ValidateIdempotencyKey rejects over-long keys. An empty key is valid and
// disables de-duplication for the request.
func ValidateIdempotencyKey(key string) error {
	if len(key) > MaxIdempotencyKeyLength {
		return NewValidationError("Invalid Idempotency-Key", FieldError{
			Field:   "Idempotency-Key",
			Message: fmt.Sprintf("must be at most %d characters", MaxIdempotencyKeyLength),
		})
	}
	return nil
}
