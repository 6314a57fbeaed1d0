// Package service provides lightweight fakes of the domain service contracts for tests.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"coderr/internal/domain/service"

	"github.com/pkg/errors"
)

// PasswordHasher prefixes passwords instead of hashing them.
type PasswordHasher struct{}

func (PasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (PasswordHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// TokenService issues tokens of the form "token-<user id>".
type TokenService struct{}

func (TokenService) GenerateToken(userID int64) (string, error) {
	return "token-" + strconv.FormatInt(userID, 10), nil
}

func (TokenService) ValidateToken(token string) (*service.Claims, error) {
	raw, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, errors.New("invalid token")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}

	return &service.Claims{UserID: id}, nil
}

// EventPublisher records published events.
type EventPublisher struct {
	mu     sync.Mutex
	Err    error
	events []*service.DomainEvent
}

func (p *EventPublisher) Publish(_ context.Context, event *service.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *EventPublisher) Close() error {
	return nil
}

// Events returns the recorded events.
func (p *EventPublisher) Events() []*service.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.DomainEvent(nil), p.events...)
}

// Types returns the recorded event types in publish order.
func (p *EventPublisher) Types() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}

	return types
}

type storedObject struct {
	contentType string
	data        []byte
}

// FileStorage keeps uploads in memory under sequential keys.
type FileStorage struct {
	mu      sync.Mutex
	seq     int
	objects map[string]storedObject
}

// NewFileStorage returns an empty in-memory file storage.
func NewFileStorage() *FileStorage {
	return &FileStorage{objects: make(map[string]storedObject)}
}

func (s *FileStorage) Save(_ context.Context, folder string, upload *service.Upload) (string, error) {
	data, err := io.ReadAll(upload.Content)
	if err != nil {
		return "", errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	key := fmt.Sprintf("%s/file-%d", folder, s.seq)
	s.objects[key] = storedObject{contentType: upload.ContentType, data: data}

	return key, nil
}

func (s *FileStorage) Open(_ context.Context, key string) (*service.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, service.ErrFileNotFound
	}

	return &service.StoredFile{
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
	}, nil
}

func (s *FileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)

	return nil
}

func (s *FileStorage) URL(key string) string {
	return "http://media.test/" + key
}

// Has reports whether a key is stored.
func (s *FileStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[key]

	return ok
}

// Len returns the number of stored objects.
func (s *FileStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}

// QRCodeService returns the encoded URL as the image bytes.
type QRCodeService struct{}

func (QRCodeService) GenerateOfferQR(offerID int64) ([]byte, error) {
	return []byte(QRCodeService{}.OfferURL(offerID)), nil
}

func (QRCodeService) OfferURL(offerID int64) string {
	return "http://app.test/offers/" + strconv.FormatInt(offerID, 10)
}

// TextSanitizer returns input unchanged apart from trimming.
type TextSanitizer struct{}

func (TextSanitizer) Sanitize(input string) string {
	return strings.TrimSpace(input)
}
