// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines coded errors shared by the bot packages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeConflict        Code = "CONFLICT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNoResponses     Code = "NO_RESPONSES"
	CodeNotFound        Code = "NOT_FOUND"
)

// HTTPStatus maps a code to the status used by the ops endpoints.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNoResponses:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type. Message is safe to show to Slack users.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with fmt formatting.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrConflict        = New(CodeConflict, "conflict")
	ErrInvalidState    = New(CodeInvalidState, "invalid state")
	ErrInvalidArgument = New(CodeInvalidArgument, "invalid argument")
	ErrNoResponses     = New(CodeNoResponses, "no responses")
	ErrNotFound        = New(CodeNotFound, "not found")
)

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// UserMessage returns the message meant for chat users. Errors that are not
// domain errors get a generic message so transport details stay in the logs.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong. Check the bot logs for details."
}
