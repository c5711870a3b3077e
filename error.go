package pagesense

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are machine-readable codes attached to domain errors. The pipeline
// orchestrator maps them onto result error categories; callers should use
// ErrorCode rather than matching on message text.
const (
	EANALYSIS    = "analysis"     // HTML could not be structurally parsed
	EBLOCKED     = "blocked"      // URL refused by the safety guard
	EINTERNAL    = "internal"     // unexpected internal error
	EINVALID     = "invalid"      // validation failed
	ENAVIGATION  = "navigation"   // navigation failed or response status >= 400
	ENORESPONSE  = "no_response"  // navigation produced no response
	ENOTFOUND    = "not_found"    // entity does not exist
	ESNAPSHOT    = "snapshot"     // accessibility snapshot could not be built
	ETIMEOUT     = "timeout"      // operation exceeded its deadline
	EUNAVAILABLE = "unavailable"  // dependency (browser, store, model) is down
)

// Error represents an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("pagesense error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an *Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps err and returns its code, if it is an application error.
// Returns EINTERNAL for non-application errors and "" for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps err and returns its message, if it is an application
// error. Non-application errors report a generic message so internal details
// do not leak to end users.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
