// Package blob is the opaque byte store behind uploaded files, backed by
// MinIO/S3. Callers only ever see storage location strings (object keys).
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

// objectAPI is the slice of the MinIO client the store uses. Tests inject a
// fake; production wraps *minio.Client.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Store reads and writes blobs in a single bucket.
type Store struct {
	api    objectAPI
	bucket string
}

// NormaliseEndpoint accepts either "minio:9000" or "http(s)://minio:9000" and
// returns the host plus whether TLS should be used.
func NormaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// No scheme, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// Dial builds a MinIO client and a Store over the given bucket, creating the
// bucket when it does not exist yet.
func Dial(ctx context.Context, rawEndpoint, accessKey, secretKey, bucket string) (*Store, error) {
	if rawEndpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("object storage configuration incomplete")
	}

	endpoint, secure, err := NormaliseEndpoint(rawEndpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	return New(ctx, client, bucket)
}

// New wraps an existing client. Exposed separately so tests and the e2e
// harness can hand in their own client.
func New(ctx context.Context, api objectAPI, bucket string) (*Store, error) {
	s := &Store{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return s, nil
}

// Write streams r into the bucket under key and returns the storage location
// plus the number of bytes stored. A size of -1 streams until EOF.
func (s *Store) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, int64, error) {
	info, err := s.api.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		// A capped request body tripping its limit mid-stream is the
		// client's fault, not the store's; keep the typed error intact.
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("%w: blob write: %v", model.ErrDependency, err)
	}
	return key, info.Size, nil
}

// Read opens the blob at location. A missing object is model.ErrNotFound;
// any other storage failure is model.ErrDependency.
func (s *Store) Read(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	info, err := s.api.StatObject(ctx, s.bucket, location, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, model.ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: blob stat: %v", model.ErrDependency, err)
	}

	obj, err := s.api.GetObject(ctx, s.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: blob read: %v", model.ErrDependency, err)
	}
	return obj, info.Size, nil
}
