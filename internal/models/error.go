package models

import (
	"errors"
	"net/http"
)

// ErrorKind classifies an application error and decides the HTTP status it maps to
type ErrorKind int

// Error kinds
const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindServerConfig
)

// Client-facing messages shared across handlers
const (
	MsgInternalServer   = "Internal server error"
	MsgServerConfig     = "Server configuration error"
	MsgInvalidAPIKey    = "Invalid API key"
	MsgInvalidToken     = "Invalid or expired token"
	MsgInvalidCreds     = "Invalid credentials"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email format"
	MsgEmailNotFound    = "Email not found"
	MsgEmailExists      = "Email already exists"
	MsgCoinsNegative    = "Coins cannot be negative"
	MsgRouteNotFound    = "Route not found"
	MsgFriendlyNotFound = "You don't have any gold coins yet 😢"
)

// AppError is the error type returned by services and middleware.
// Message is safe to show to the client; Err carries the underlying cause for logs.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind
func (e *AppError) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message rendered to the client.
// Unexpected errors never leak their detail.
func (e *AppError) PublicMessage() string {
	if e.Kind == KindInternal {
		return MsgInternalServer
	}
	return e.Message
}

func NewBadRequest(message string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewServerConfig reports a missing secret or credential; cause is only logged
func NewServerConfig(cause error) *AppError {
	return &AppError{Kind: KindServerConfig, Message: MsgServerConfig, Err: cause}
}

// NewInternal wraps an unexpected error
func NewInternal(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: cause}
}

// AsAppError converts any error into an *AppError, treating unknown errors as internal
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("unexpected error", err)
}

// ErrorResponse is the JSON body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body of responses that only carry a status message
type MessageResponse struct {
	Message string `json:"message"`
}
