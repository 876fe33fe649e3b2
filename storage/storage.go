package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a key has no stored object.
var ErrObjectNotFound = errors.New("object not found")

// Object is a blob to store under Key.
type Object struct {
	Key         string
	ContentType string
	Body        io.Reader
}

// Storage keeps rendered documents
type Storage interface {
	// Save stores the object and returns its size in bytes
	Save(ctx context.Context, obj Object) (int64, error)

	// Open returns the object stored under key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the object stored under key. Missing keys are ignored.
	Remove(ctx context.Context, key string) error
}

// Type represents the storage backend type
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds configuration for storage
type Config struct {
	Type         Type
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates a storage backend based on configuration
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3 bucket is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentKey builds the key of a rendered document. Keys are grouped by
// proposal and made unique by the document id.
func DocumentKey(proposalID, documentID uuid.UUID, filename string) string {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(filename), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "document.pdf"
	}
	return path.Join("proposals", proposalID.String(), documentID.String()+"_"+name)
}

// validKey rejects keys that would escape the storage root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("invalid storage key %q", key)
		}
	}
	return nil
}
