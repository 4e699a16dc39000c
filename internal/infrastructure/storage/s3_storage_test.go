package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/finops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "exports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.ErrorContains(t, err, "configuration is required")
	})
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	t.Run("presign expiration defaults to 15 minutes", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
		assert.Equal(t, "exports", s.GetBucket())
	})

	t.Run("endpoint without scheme", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Endpoint = "minio:9000"
		cfg.UseSSL = true
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)

		link, _, err := s.GenerateDownloadURL(context.Background(), "a.csv", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "https://minio:9000/"))
	})

	t.Run("options", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(), WithLogger(zaptest.NewLogger(t)), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", time.Minute)
	assert.ErrorContains(t, err, "storage key is required")

	link, expiresAt, err := s.GenerateDownloadURL(context.Background(), "exports/transactions_20240101_000000.csv", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, link, "localhost:9000/exports/exports/transactions_20240101_000000.csv")
	assert.Contains(t, link, "X-Amz-Expires=300")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, time.Minute)
}

func TestS3ObjectStorage_Upload_RequiresKey(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	err = s.Upload(context.Background(), "", []byte("x"), "text/csv")
	assert.ErrorContains(t, err, "storage key is required")
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		useSSL bool
		want   string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.eu-west-1.amazonaws.com", false, "https://s3.eu-west-1.amazonaws.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
