package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"coderr/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func newMemStorage(t *testing.T, maxSize int64) service.FileStorage {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return NewWithBucket(bucket, "http://localhost:8000/media/", maxSize)
}

func TestBlobStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage(t, 1024)

	key, err := storage.Save(ctx, "offers", &service.Upload{
		Filename:    "Banner.PNG",
		ContentType: "image/png",
		Size:        5,
		Content:     strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "offers/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "http://localhost:8000/media/"+key, storage.URL(key))

	file, err := storage.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	require.NoError(t, file.Body.Close())
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "image/png", file.ContentType)
	assert.EqualValues(t, 5, file.Size)

	require.NoError(t, storage.Delete(ctx, key))
	_, err = storage.Open(ctx, key)
	assert.ErrorIs(t, err, service.ErrFileNotFound)

	// Deleting twice is fine.
	assert.NoError(t, storage.Delete(ctx, key))
}

func TestBlobStorage_RejectsOversizedUploads(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage(t, 4)

	_, err := storage.Save(ctx, "profile", &service.Upload{Filename: "a.txt", Size: 10, Content: strings.NewReader("0123456789")})
	assert.ErrorIs(t, err, service.ErrFileTooLarge)

	// Declared size lies; the stream is still capped.
	_, err = storage.Save(ctx, "profile", &service.Upload{Filename: "a.txt", Size: 1, Content: strings.NewReader("0123456789")})
	assert.ErrorIs(t, err, service.ErrFileTooLarge)
}

func TestBlobStorage_OpenRejectsTraversal(t *testing.T) {
	storage := newMemStorage(t, 0)

	for _, key := range []string{"", "/etc/passwd", "../secret", "offers/../../x", "offers//x"} {
		_, err := storage.Open(context.Background(), key)
		assert.ErrorIs(t, err, service.ErrFileNotFound, key)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("photo.JPG"))
	assert.Equal(t, "", extension("README"))
	assert.Equal(t, "", extension("file.averyveryverylongextension"))
}

func TestRedactBucketURL(t *testing.T) {
	assert.Equal(t, "s3://bucket", redactBucketURL("s3://bucket?region=eu-central-1"))
	assert.Equal(t, "mem://", redactBucketURL("mem://"))
}
