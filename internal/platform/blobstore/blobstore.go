// Package blobstore keeps short-lived binary objects, such as synthesized
// briefing audio, behind a small interface with an in-memory backend for
// development and tests and a MinIO/S3 backend for deployments.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrBlobTooLarge = errors.New("blob exceeds maximum allowed size")
	ErrEmptyBlob    = errors.New("blob is empty")
)

// MaxBlobSize is the largest object accepted (25 MB).
const MaxBlobSize = 25 * 1024 * 1024

// Metadata describes a stored blob. A zero ExpiresAt never expires.
type Metadata struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the blob has passed its expiry at now.
func (m *Metadata) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && !now.Before(m.ExpiresAt)
}

// Store is the contract for blob backends. Expired blobs behave as if they
// were never stored.
type Store interface {
	Put(ctx context.Context, contentType string, content io.Reader, ttl time.Duration) (*Metadata, error)
	Get(ctx context.Context, id string) (io.ReadCloser, *Metadata, error)
	Stat(ctx context.Context, id string) (*Metadata, error)
	Delete(ctx context.Context, id string) error
}

// readLimited reads content up to MaxBlobSize and fills in size and hash.
func readLimited(content io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxBlobSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading content: %w", err)
	}
	if len(data) > MaxBlobSize {
		return nil, "", ErrBlobTooLarge
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyBlob
	}
	return data, fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

func newMetadata(contentType string, data []byte, hash string, now time.Time, ttl time.Duration) Metadata {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m := Metadata{
		ID:          uuid.New().String(),
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        hash,
		CreatedAt:   now,
	}
	if ttl > 0 {
		m.ExpiresAt = now.Add(ttl)
	}
	return m
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedBlob struct {
	metadata Metadata
	content  []byte
}

// MemoryStore is a thread-safe in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]*storedBlob
	now   func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string]*storedBlob),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Put(_ context.Context, contentType string, content io.Reader, ttl time.Duration) (*Metadata, error) {
	data, hash, err := readLimited(content)
	if err != nil {
		return nil, err
	}
	meta := newMetadata(contentType, data, hash, s.now(), ttl)

	s.mu.Lock()
	s.blobs[meta.ID] = &storedBlob{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

// lookup returns a live blob, evicting it if it has expired.
func (s *MemoryStore) lookup(id string) (*storedBlob, error) {
	s.mu.RLock()
	blob, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrBlobNotFound
	}
	if blob.metadata.Expired(s.now()) {
		s.mu.Lock()
		delete(s.blobs, id)
		s.mu.Unlock()
		return nil, ErrBlobNotFound
	}
	return blob, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (io.ReadCloser, *Metadata, error) {
	blob, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	meta := blob.metadata
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

func (s *MemoryStore) Stat(_ context.Context, id string) (*Metadata, error) {
	blob, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	meta := blob.metadata
	return &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, id)
	return nil
}

// PurgeExpired drops every expired blob and returns how many were removed.
func (s *MemoryStore) PurgeExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, blob := range s.blobs {
		if blob.metadata.Expired(now) {
			delete(s.blobs, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored blobs, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
