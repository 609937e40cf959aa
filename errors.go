package s3html

import (
	"errors"
	"fmt"

	"github.com/spatocode/s3html/config"
)

var (
	ErrMissingConfiguration = config.ErrMissingBucket
	ErrObjectNotFound       = errors.New("object not found")
	ErrBucketNotFound       = errors.New("bucket not found")
	ErrAccessDenied         = errors.New("access denied")
)

// StorageError is a storage service failure that is none of the
// not-found or access-denied conditions.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
