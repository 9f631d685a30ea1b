package awsapi

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/smithy-go"
)

// IsResourceExists reports whether err is the QuickSight "resource already
// exists" error returned by Create calls.
func IsResourceExists(err error) bool {
	var exists *types.ResourceExistsException
	return errors.As(err, &exists)
}

// IsNotFound reports whether err is a QuickSight "resource not found"
// error.
func IsNotFound(err error) bool {
	var notFound *types.ResourceNotFoundException
	return errors.As(err, &notFound)
}

// IsAccessDenied reports whether err is a QuickSight access-denied error.
func IsAccessDenied(err error) bool {
	var denied *types.AccessDeniedException
	return errors.As(err, &denied)
}

// ErrorCode returns the service error code for err, or an empty string for
// non-API errors.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
