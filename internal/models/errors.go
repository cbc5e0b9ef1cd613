package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies command and status failures.
type ErrorKind string

const (
	ErrKindNoConnectivity    ErrorKind = "no_connectivity"
	ErrKindTimeout           ErrorKind = "timeout"
	ErrKindHostUnreachable   ErrorKind = "host_unreachable"
	ErrKindHTTPStatus        ErrorKind = "http_status"
	ErrKindMalformedResponse ErrorKind = "malformed_response"
	ErrKindEncoding          ErrorKind = "encoding_error"
	ErrKindUnknownCommand    ErrorKind = "unknown_command"
)

// CommandError carries an ErrorKind through ordinary error returns.
type CommandError struct {
	Kind       ErrorKind
	StatusCode int    // only for ErrKindHTTPStatus
	Detail     string // diagnostic text, e.g. a relay response body
	Err        error
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrNoConnectivity    = &CommandError{Kind: ErrKindNoConnectivity}
	ErrTimeout           = &CommandError{Kind: ErrKindTimeout}
	ErrHostUnreachable   = &CommandError{Kind: ErrKindHostUnreachable}
	ErrHTTPStatus        = &CommandError{Kind: ErrKindHTTPStatus}
	ErrMalformedResponse = &CommandError{Kind: ErrKindMalformedResponse}
	ErrEncoding          = &CommandError{Kind: ErrKindEncoding}
	ErrUnknownCommand    = &CommandError{Kind: ErrKindUnknownCommand}
)

// NewCommandError builds a CommandError wrapping err.
func NewCommandError(kind ErrorKind, err error) *CommandError {
	return &CommandError{Kind: kind, Err: err}
}

// HTTPStatusError builds an ErrKindHTTPStatus error.
func HTTPStatusError(code int, detail string) *CommandError {
	return &CommandError{Kind: ErrKindHTTPStatus, StatusCode: code, Detail: detail}
}

func (e *CommandError) Error() string {
	msg := string(e.Kind)
	if e.Kind == ErrKindHTTPStatus && e.StatusCode != 0 {
		msg = fmt.Sprintf("%s %d", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is matches another CommandError of the same kind. A target with a zero
// StatusCode matches any status.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// KindOf extracts the ErrorKind from err, or "" when err is not a CommandError.
func KindOf(err error) ErrorKind {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
