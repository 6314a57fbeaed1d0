// Package storage keeps uploaded files in a gocloud.dev blob bucket.
package storage

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"coderr/config"
	"coderr/internal/domain/lifecycle"
	"coderr/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets for local development
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets for tests
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"gocloud.dev/gcerrors"
)

const maxExtensionLength = 10

// Params holds dependencies for the blob storage, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

type blobStorage struct {
	bucket        *blob.Bucket
	baseURL       string
	maxUploadSize int64
}

// New opens the configured bucket and closes it on shutdown.
func New(params Params) (service.FileStorage, error) {
	cfg := params.Config.Storage
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("storage bucket URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", cfg.BucketURL)
	}

	params.Logger.Info("Blob storage opened", slog.String("bucket", redactBucketURL(cfg.BucketURL)))

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return NewWithBucket(bucket, cfg.MediaBaseURL, cfg.MaxUploadSize), nil
}

// NewWithBucket wraps an already opened bucket.
func NewWithBucket(bucket *blob.Bucket, baseURL string, maxUploadSize int64) service.FileStorage {
	return &blobStorage{
		bucket:        bucket,
		baseURL:       strings.TrimRight(baseURL, "/"),
		maxUploadSize: maxUploadSize,
	}
}

// Save streams the upload into a fresh key; nothing is written when the size limit is exceeded.
func (s *blobStorage) Save(ctx context.Context, folder string, upload *service.Upload) (string, error) {
	if s.maxUploadSize > 0 && upload.Size > s.maxUploadSize {
		return "", service.ErrFileTooLarge
	}

	key := path.Join(folder, uuid.NewString()+extension(upload.Filename))

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, key, &blob.WriterOptions{ContentType: upload.ContentType})
	if err != nil {
		return "", errors.Wrap(err, "failed to open blob writer")
	}

	src := upload.Content
	if s.maxUploadSize > 0 {
		src = io.LimitReader(upload.Content, s.maxUploadSize+1)
	}

	written, err := io.Copy(w, src)
	if err == nil && s.maxUploadSize > 0 && written > s.maxUploadSize {
		err = service.ErrFileTooLarge
	}
	if err != nil {
		// Cancelling before Close discards the partial object.
		cancel()
		_ = w.Close()

		return "", err
	}

	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "failed to write blob")
	}

	return key, nil
}

// Open reads a stored object.
func (s *blobStorage) Open(ctx context.Context, key string) (*service.StoredFile, error) {
	if !validKey(key) {
		return nil, service.ErrFileNotFound
	}

	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, service.ErrFileNotFound
		}

		return nil, errors.Wrap(err, "failed to open blob")
	}

	return &service.StoredFile{
		ContentType: r.ContentType(),
		Size:        r.Size(),
		Body:        r,
	}, nil
}

// Delete removes a stored object; a missing object is not an error.
func (s *blobStorage) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return nil
	}

	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrap(err, "failed to delete blob")
	}

	return nil
}

// URL returns the public URL of a key.
func (s *blobStorage) URL(key string) string {
	return s.baseURL + "/" + key
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}

	return true
}

func extension(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > maxExtensionLength {
		return ""
	}

	return ext
}

func redactBucketURL(raw string) string {
	if i := strings.Index(raw, "?"); i >= 0 {
		return raw[:i]
	}

	return raw
}
