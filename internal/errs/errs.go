// Package errs defines the error taxonomy shared by repos, services, and
// handlers: validation, not-found, storage-unavailable, and upstream-service
// failures. Handlers map these to 400, 404, 500, and 500 respectively.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input rejected before any write was attempted.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with an optional field map.
func Validation(msg string, fields map[string]string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

// NotFoundError reports that a requested resource does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NotFound builds a NotFoundError for the given resource and lookup key.
func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// StorageError reports that the document or object store was unreachable or
// rejected an operation. The cause is wrapped and available via errors.Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError for operation op. Returns nil when err is nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// UpstreamError reports a non-success or unparsable response from an external
// collaborator (e.g. the text-detection service).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Service, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError for the named service.
func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}
