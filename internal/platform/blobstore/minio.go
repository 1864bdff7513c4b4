package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	metaExpiresAt = "Expires-At"
	metaHash      = "Sha256"
)

// MinioConfig locates an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps blobs in an S3-compatible bucket. Expiry and hash live in
// the object's user metadata.
type MinioStore struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinioStore connects to the endpoint and creates the bucket if needed.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, contentType string, content io.Reader, ttl time.Duration) (*Metadata, error) {
	data, hash, err := readLimited(content)
	if err != nil {
		return nil, err
	}
	meta := newMetadata(contentType, data, hash, s.now(), ttl)

	_, err = s.client.PutObject(ctx, s.bucket, meta.ID, bytes.NewReader(data), meta.Size, minio.PutObjectOptions{
		ContentType:  meta.ContentType,
		UserMetadata: encodeUserMetadata(meta),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &meta, nil
}

func (s *MinioStore) Get(ctx context.Context, id string) (io.ReadCloser, *Metadata, error) {
	meta, err := s.Stat(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, s.translate(err)
	}
	return obj, meta, nil
}

func (s *MinioStore) Stat(ctx context.Context, id string) (*Metadata, error) {
	info, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return nil, s.translate(err)
	}
	meta := decodeObjectInfo(info)
	if meta.Expired(s.now()) {
		_ = s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{})
		return nil, ErrBlobNotFound
	}
	return meta, nil
}

func (s *MinioStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{}); err != nil {
		return s.translate(err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *MinioStore) translate(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		return ErrBlobNotFound
	}
	return fmt.Errorf("minio: %w", err)
}

func encodeUserMetadata(m Metadata) map[string]string {
	out := map[string]string{metaHash: m.Hash}
	if !m.ExpiresAt.IsZero() {
		out[metaExpiresAt] = m.ExpiresAt.Format(time.RFC3339Nano)
	}
	return out
}

// decodeObjectInfo rebuilds Metadata from a stat result. User metadata keys
// come back with varying case depending on the server.
func decodeObjectInfo(info minio.ObjectInfo) *Metadata {
	m := &Metadata{
		ID:          info.Key,
		ContentType: info.ContentType,
		Size:        info.Size,
		CreatedAt:   info.LastModified.UTC(),
	}
	for k, v := range info.UserMetadata {
		switch strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-") {
		case strings.ToLower(metaExpiresAt):
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				m.ExpiresAt = t
			}
		case strings.ToLower(metaHash):
			m.Hash = v
		}
	}
	return m
}
