// Package errors carries the structured error codes Hydra reports at the
// top level. Codes decide presentation: cancelled operations exit 0,
// permission failures get remediation text, everything else is a plain
// error.
package errors

import (
	"errors"
	"io/fs"
)

// Code identifies a structured error type used across the application.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Recovered locally, never surfaced to the user.
	CodeConfigRead Code = "config_read"
	CodeNetwork    Code = "network"

	// Install and uninstall.
	CodeWriteFailed      Code = "write_failed"
	CodeRemoveFailed     Code = "remove_failed"
	CodePermissionDenied Code = "permission_denied"
	CodeCancelled        Code = "cancelled"

	// Configuration and CLI usage.
	CodeConfigurationError Code = "configuration_error"
	CodeUsage              Code = "usage"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
// Unstructured permission errors from the filesystem map to
// CodePermissionDenied.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	if errors.Is(err, fs.ErrPermission) {
		return CodePermissionDenied
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
