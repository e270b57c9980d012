package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSStore keeps objects in a Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

var _ BlobStore = (*GCSStore)(nil)

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET must be set for the gcs blob backend")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (ObjectInfo, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	w := s.bucket.Object(clean).NewWriter(writeCtx)
	if contentType != "" {
		w.ContentType = contentType
	}
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return ObjectInfo{}, fmt.Errorf("io.Copy to gs://%s/%s failed: %w", s.name, clean, err)
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("finalize gs://%s/%s: %w", s.name, clean, err)
	}
	return ObjectInfo{Key: clean, Size: n, ContentType: w.ContentType}, nil
}

func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	rd, err := s.bucket.Object(clean).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("read gs://%s/%s: %w", s.name, clean, err)
	}
	return rd, ObjectInfo{
		Key:         clean,
		Size:        rd.Attrs.Size,
		ContentType: rd.Attrs.ContentType,
		ModTime:     rd.Attrs.LastModified,
	}, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	clean, err := CleanKey(key)
	if err != nil {
		return err
	}
	err = s.bucket.Object(clean).Delete(ctx)
	if err == nil || errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("delete gs://%s/%s: %w", s.name, clean, err)
}

func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	_, err = s.bucket.Object(clean).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GCSStore) Ping(ctx context.Context) error {
	_, err := s.bucket.Attrs(ctx)
	return err
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
