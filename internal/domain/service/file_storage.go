package service

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrFileNotFound is returned when a stored object does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// StoredFile is an object read back from storage.
type StoredFile struct {
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// FileStorage keeps uploaded profile files and offer images.
// Keys are relative paths such as "offers/<uuid>.png".
type FileStorage interface {
	// Save writes the upload under a fresh key in the given folder and returns that key.
	Save(ctx context.Context, folder string, upload *Upload) (string, error)

	// Open reads a stored object.
	Open(ctx context.Context, key string) (*StoredFile, error)

	// Delete removes a stored object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of a key.
	URL(key string) string
}
