/*
errors.go - Centralized error types for the report domain

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  The store and API layers wrap these with additional context.

USAGE:
    if report.IsNotFound(err) {
        // 404
    }
*/
package report

import "errors"

var (
	// ErrNotFound is returned when no report matches the given identifier.
	// Surfaced to the caller, never retried.
	ErrNotFound = errors.New("report not found")

	// ErrInvalidIssueType is returned for strings outside the issue-type set.
	ErrInvalidIssueType = errors.New("invalid issue type")

	// ErrInvalidStatus is returned for strings outside the status set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPhotoStatus is returned for strings outside the
	// photo-verification set.
	ErrInvalidPhotoStatus = errors.New("invalid photo verification status")
)

// IsNotFound returns true if the error indicates a missing report.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidIssueType) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPhotoStatus)
}
