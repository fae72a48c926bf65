package documents

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/config"
)

func TestNewS3Linker_RequiresBucket(t *testing.T) {
	_, err := NewS3Linker(context.Background(), config.S3Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestS3Linker_DownloadURL(t *testing.T) {
	linker, err := NewS3Linker(context.Background(), config.S3Config{
		Bucket:          "templates",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "test",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignTTL:      10 * time.Minute,
	})
	require.NoError(t, err)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	linker.now = func() time.Time { return fixed }

	link, err := linker.DownloadURL(context.Background(), "/forms/transcript.pdf")
	require.NoError(t, err)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/templates/forms/transcript.pdf", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, fixed.Add(10*time.Minute), link.ExpiresAt)
}

func TestS3Linker_EmptyKey(t *testing.T) {
	linker, err := NewS3Linker(context.Background(), config.S3Config{
		Bucket: "b", Region: "us-east-1", AccessKeyID: "a", SecretAccessKey: "s",
	})
	require.NoError(t, err)

	_, err = linker.DownloadURL(context.Background(), "")
	assert.ErrorContains(t, err, "file key is required")
}
