// Package storage is the object storage boundary: one bucket, objects by key.
package storage

import (
	"context"
	"io"
	"time"
)

// Object describes a stored object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// ObjectStore lists, reads, writes and deletes objects within one bucket.
// Implementations return *Error for every failure.
type ObjectStore interface {
	List(ctx context.Context) ([]Object, error)
	Stat(ctx context.Context, key string) (Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, Object, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}
