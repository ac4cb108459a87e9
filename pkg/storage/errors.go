package storage

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Sentinel errors for archive operations.
var (
	ErrInvalidConfig  = errors.New("storage: invalid configuration")
	ErrSourceMissing  = errors.New("storage: file to archive not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrAccessDenied   = errors.New("storage: access denied")
	ErrArchiveFailed  = errors.New("storage: archive failed")
)

var accessCodes = map[string]bool{
	"AccessDenied":          true,
	"Forbidden":             true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
}

// classifyPut maps a PutObject failure to a sentinel. The AWS error is kept
// as text only: callers match sentinels, not SDK types.
func classifyPut(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); {
		case code == "NoSuchBucket":
			return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
		case accessCodes[code]:
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrArchiveFailed, err)
}
