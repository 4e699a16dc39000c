package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrStorageUnavailable is returned while the breaker is open.
var ErrStorageUnavailable = errors.New("object storage temporarily unavailable")

// BreakerStore guards an ObjectStore with a circuit breaker. Uploads and
// presigns share one breaker; failures are not retried.
type BreakerStore struct {
	next ObjectStore
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreaker trips after 5 requests with at least 60% failures and
// probes again after timeout.
func NewCircuitBreaker(name string, timeout time.Duration, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     timeout,          // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// NewBreakerStore wraps next with cb.
func NewBreakerStore(next ObjectStore, cb *gobreaker.CircuitBreaker) *BreakerStore {
	return &BreakerStore{next: next, cb: cb}
}

var _ ObjectStore = (*BreakerStore)(nil)

// Upload implements ObjectStore.
func (b *BreakerStore) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Upload(ctx, storageKey, data, contentType)
	})
	return breakerError(err)
}

// GenerateDownloadURL implements ObjectStore.
func (b *BreakerStore) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	type presigned struct {
		url       string
		expiresAt time.Time
	}
	res, err := b.cb.Execute(func() (any, error) {
		u, exp, err := b.next.GenerateDownloadURL(ctx, storageKey, expiresIn)
		return presigned{u, exp}, err
	})
	if err != nil {
		return "", time.Time{}, breakerError(err)
	}
	p := res.(presigned)
	return p.url, p.expiresAt, nil
}

// State reports the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrStorageUnavailable
	}
	return err
}
