package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

// StubObjectStorage keeps objects in memory. It backs local development and
// tests where no S3 endpoint is available.
type StubObjectStorage struct {
	// BaseURL prefixes generated download URLs.
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StubObject
}

// StubObject is one stored object.
type StubObject struct {
	Data        []byte
	ContentType string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]StubObject),
	}
}

var _ ObjectStore = (*StubObjectStorage)(nil)

// Upload stores a copy of data.
func (s *StubObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = StubObject{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// GenerateDownloadURL returns a fake link for a stored object.
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if _, ok := s.Object(storageKey); !ok {
		return "", time.Time{}, errors.New("object not found: " + storageKey)
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	link := s.BaseURL + "/download/" + url.PathEscape(storageKey) + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// Object returns a stored object.
func (s *StubObjectStorage) Object(storageKey string) (StubObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[storageKey]
	return o, ok
}
