// Package content defines the document store used for every collection the
// site renders from, plus the media side records and admin accounts.
package content

import (
	"context"
	"errors"

	"github.com/brueckenwerk/cms/internal/models"
)

var (
	// ErrNotFound is returned when no record has the requested id or key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record with the same id or unique field exists.
	ErrConflict = errors.New("record already exists")
)

// Repository is the CRUD surface of one collection.
type Repository[T models.Document] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, doc T) error
	Replace(ctx context.Context, doc T) error
	Delete(ctx context.Context, id string) error
}

// MetadataRepository holds the per-file side records of the media library.
type MetadataRepository interface {
	List(ctx context.Context) ([]models.MediaMeta, error)
	Get(ctx context.Context, key string) (models.MediaMeta, error)
	// Upsert creates the record with noindex=false, or only bumps UpdatedAt
	// when it already exists.
	Upsert(ctx context.Context, key string) error
	SetNoIndex(ctx context.Context, key string, noindex bool) error
	Delete(ctx context.Context, key string) error
}

// UserRepository stores admin accounts.
type UserRepository interface {
	Repository[models.User]
	ByEmail(ctx context.Context, email string) (models.User, error)
}

// Store bundles all collections of one backend.
type Store struct {
	Projects    Repository[models.Project]
	TeamMembers Repository[models.TeamMember]
	Courses     Repository[models.Course]
	BlogPosts   Repository[models.BlogPost]
	Media       MetadataRepository
	Users       UserRepository

	// Ping checks backend connectivity for health endpoints.
	Ping func(ctx context.Context) error
	// Close releases the backend connection.
	Close func(ctx context.Context) error
}
