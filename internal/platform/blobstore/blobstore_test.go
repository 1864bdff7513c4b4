package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	meta, err := s.Put(context.Background(), "audio/mpeg", bytes.NewReader([]byte("mp3-bytes")), time.Hour)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if meta.ID == "" || meta.Size != 9 || meta.Hash == "" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.ExpiresAt.Sub(meta.CreatedAt) != time.Hour {
		t.Errorf("expected 1h expiry, got %s", meta.ExpiresAt.Sub(meta.CreatedAt))
	}

	rc, got, err := s.Get(context.Background(), meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "mp3-bytes" {
		t.Errorf("expected mp3-bytes, got %q", data)
	}
	if got.ContentType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", got.ContentType)
	}
}

func TestMemoryStore_DefaultContentType(t *testing.T) {
	s := NewMemoryStore()
	meta, err := s.Put(context.Background(), "", strings.NewReader("x"), 0)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if meta.ContentType != "application/octet-stream" {
		t.Errorf("expected octet-stream, got %s", meta.ContentType)
	}
	if !meta.ExpiresAt.IsZero() {
		t.Error("zero ttl should never expire")
	}
}

func TestMemoryStore_RejectsEmptyAndOversized(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Put(context.Background(), "audio/mpeg", strings.NewReader(""), time.Hour); !errors.Is(err, ErrEmptyBlob) {
		t.Errorf("expected ErrEmptyBlob, got %v", err)
	}
	big := io.LimitReader(zeroReader{}, MaxBlobSize+1)
	if _, err := s.Put(context.Background(), "audio/mpeg", big, time.Hour); !errors.Is(err, ErrBlobTooLarge) {
		t.Errorf("expected ErrBlobTooLarge, got %v", err)
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestMemoryStore_ExpiredBlobIsGone(t *testing.T) {
	s := NewMemoryStore()
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = fixedClock(start)

	meta, err := s.Put(context.Background(), "audio/mpeg", strings.NewReader("abc"), time.Minute)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Stat(context.Background(), meta.ID); err != nil {
		t.Fatalf("Stat before expiry: %v", err)
	}

	s.now = fixedClock(start.Add(time.Minute))
	if _, _, err := s.Get(context.Background(), meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after expiry, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("expired blob should be evicted on access")
	}
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	s := NewMemoryStore()
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = fixedClock(start)
	s.Put(context.Background(), "a", strings.NewReader("1"), time.Minute)
	s.Put(context.Background(), "a", strings.NewReader("2"), time.Hour)
	s.Put(context.Background(), "a", strings.NewReader("3"), 0)

	s.now = fixedClock(start.Add(10 * time.Minute))
	if n := s.PurgeExpired(); n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 remaining, got %d", s.Len())
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	meta, _ := s.Put(context.Background(), "audio/mpeg", strings.NewReader("abc"), time.Hour)

	if err := s.Delete(context.Background(), meta.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(context.Background(), meta.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound on second delete, got %v", err)
	}
}

func TestMinioMetadataRoundTrip(t *testing.T) {
	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	m := Metadata{ID: "k", Hash: "abc123", ExpiresAt: created.Add(time.Hour)}
	enc := encodeUserMetadata(m)

	info := minio.ObjectInfo{
		Key:          "k",
		ContentType:  "audio/mpeg",
		Size:         3,
		LastModified: created,
		UserMetadata: minio.StringMap{"X-Amz-Meta-Expires-At": enc[metaExpiresAt], "x-amz-meta-sha256": enc[metaHash]},
	}
	got := decodeObjectInfo(info)
	if !got.ExpiresAt.Equal(m.ExpiresAt) || got.Hash != "abc123" || got.ContentType != "audio/mpeg" {
		t.Errorf("unexpected metadata %+v", got)
	}
	if got.Expired(created) || !got.Expired(created.Add(2*time.Hour)) {
		t.Error("expiry check mismatch")
	}
}
