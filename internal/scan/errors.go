package scan

import (
	"context"
	"errors"
	"fmt"
)

// ErrRootInvalid is returned by Scan and Walk when the root is missing or is
// not a directory. No partial result accompanies it.
var ErrRootInvalid = errors.New("invalid scan root")

// ErrorKind classifies scan errors.
type ErrorKind int

const (
	// KindUnknown is any error outside the scan taxonomy.
	KindUnknown ErrorKind = iota
	// KindRootInvalid marks a fatal root error.
	KindRootInvalid
	// KindAccess marks an unreadable directory.
	KindAccess
	// KindMetadata marks an entry whose metadata could not be read.
	KindMetadata
	// KindCanceled marks a scan stopped through its context.
	KindCanceled
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindRootInvalid:
		return "root-invalid"
	case KindAccess:
		return "access"
	case KindMetadata:
		return "metadata"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// AccessError reports a directory that could not be listed.
// The subtree below it is skipped.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("reading directory %q: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// MetadataError reports a single entry whose size could not be read.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("reading metadata of %q: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// Classify maps err onto the scan error taxonomy.
func Classify(err error) ErrorKind {
	var (
		accessErr *AccessError
		metaErr   *MetadataError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrRootInvalid):
		return KindRootInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &accessErr):
		return KindAccess
	case errors.As(err, &metaErr):
		return KindMetadata
	default:
		return KindUnknown
	}
}

// IsFatal reports whether err ends a scan without a result.
// Access and metadata errors are absorbed into Stats.Errors instead.
func IsFatal(err error) bool {
	switch Classify(err) {
	case KindAccess, KindMetadata:
		return false
	default:
		return err != nil
	}
}

// rootError wraps a root validation failure in ErrRootInvalid.
func rootError(root string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: accessing path %q: %w", ErrRootInvalid, root, err)
	}

	return fmt.Errorf("%w: path %q is not a directory", ErrRootInvalid, root)
}
