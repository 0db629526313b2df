package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brueckenwerk/cms/internal/storage"
)

var (
	// ErrNotFound means the object does not exist in storage.
	ErrNotFound = errors.New("media file not found")
	// ErrMisconfigured means storage rejected the configured bucket or credentials.
	ErrMisconfigured = errors.New("media storage misconfigured")
	// ErrInvalidKey means the reference normalized to an empty key.
	ErrInvalidKey = errors.New("invalid media key")
	// ErrInvalidUpload means the uploaded content is empty or an unreadable image.
	ErrInvalidUpload = errors.New("invalid upload")
)

// InUseError blocks deleting a file that content records still reference.
type InUseError struct {
	Key    string
	UsedBy []Usage
}

func (e *InUseError) Error() string {
	names := make([]string, 0, len(e.UsedBy))
	for _, u := range e.UsedBy {
		names = append(names, fmt.Sprintf("%s %q", u.Type, u.Name))
	}
	return fmt.Sprintf("%s is used by %d record(s): %s", e.Key, len(e.UsedBy), strings.Join(names, ", "))
}

// storageError maps storage failures onto the media error set. Backend
// failures pass through with their storage.Error intact.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case storage.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case storage.IsKind(err, storage.KindMisconfigured), storage.IsKind(err, storage.KindAccessDenied):
		return fmt.Errorf("%w: %w", ErrMisconfigured, err)
	default:
		return err
	}
}
