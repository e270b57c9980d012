// Package storage keeps exam PDFs in a blob store addressed by slash-separated
// object keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// BlobStore is implemented by the local filesystem store and the GCS store.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (ObjectInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// Config selects and configures the blob backend.
type Config struct {
	Backend   string `env:"BLOB_BACKEND" envDefault:"local"`
	PDFRoot   string `env:"PDF_ROOT" envDefault:"static/pdfs"`
	GCSBucket string `env:"GCS_BUCKET" envDefault:""`
}

// New builds the configured store.
func New(ctx context.Context, cfg Config) (BlobStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocalStore(cfg.PDFRoot)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket)
	}
	return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
}

// CleanKey validates a client-supplied key. Keys containing ".." or starting
// with "/" are rejected; backslashes are normalized to slashes.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	key = path.Clean(key)
	if key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

// ExamObjectKey returns Program/Level_<level>/Semester_<semester>/Course/Year/<kind>_<filename>.
func ExamObjectKey(program, level, semester, course, year, kind, filename string) string {
	return path.Join(
		segment(program),
		"Level_"+segment(level),
		"Semester_"+segment(semester),
		segment(course),
		segment(year),
		kind+"_"+SecureFilename(filename),
	)
}

// SecureFilename strips directory parts and keeps ASCII letters, digits,
// dots, dashes and underscores. Spaces become underscores.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

func segment(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "/", "_"))
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" {
		return "_"
	}
	return s
}
