package core

import "errors"

var (
	// ErrEmptySubject is returned when a submission has no subject text
	ErrEmptySubject = errors.New("subject cannot be empty or whitespace only")
	// ErrEmptyBody is returned when a submission has no body text
	ErrEmptyBody = errors.New("body cannot be empty or whitespace only")
	// ErrModelUnavailable is returned when the classifier artifacts failed to load
	ErrModelUnavailable = errors.New("classification model is not available")
	// ErrPersistenceUnavailable is returned when the document store cannot be reached
	ErrPersistenceUnavailable = errors.New("document store is not available")
	// ErrNotFound is returned for lookups on an unknown report identifier
	ErrNotFound = errors.New("report not found")
	// ErrReputationUnavailable is returned by reputation clients that cannot serve a verdict
	ErrReputationUnavailable = errors.New("hash reputation is not available")
)

// IsValidationError reports whether err rejects the submission contents
// rather than signalling a service failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptySubject) || errors.Is(err, ErrEmptyBody)
}
