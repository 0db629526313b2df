package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Kind classifies storage failures.
type Kind int

const (
	KindBackend Kind = iota
	KindNotFound
	KindAccessDenied
	KindMisconfigured
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindMisconfigured:
		return "misconfigured"
	default:
		return "backend"
	}
}

// Error is the only error type returned by ObjectStore implementations.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %s: %s: %v", e.Op, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("storage %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a storage *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// translate maps SDK errors onto Kind once, at the adapter boundary.
func translate(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	kind := KindBackend

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	var apiErr smithy.APIError
	switch {
	case errors.As(err, &noSuchKey), errors.As(err, &notFound):
		kind = KindNotFound
	case errors.As(err, &noSuchBucket):
		kind = KindMisconfigured
	case errors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			kind = KindNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			kind = KindAccessDenied
		case "NoSuchBucket", "InvalidBucketName", "PermanentRedirect", "AuthorizationHeaderMalformed":
			kind = KindMisconfigured
		}
	}
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}
