package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a structured error response from the backend.
// Callers can use errors.As to extract it:
//
//	var backendErr *backend.Error
//	if errors.As(err, &backendErr) {
//	    if backendErr.Code == http.StatusConflict { ... }
//	}
type Error struct {
	// Code is the HTTP status code reported by the backend.
	Code int `json:"code"`
	// Type is the machine readable error type (e.g., "user_already_exists").
	Type string `json:"type"`
	// Message is the human readable description.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("backend: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend: %s (%d): %s", e.Type, e.Code, e.Message)
}

// Error types shared by every backend implementation.
const (
	TypeUserAlreadyExists  = "user_already_exists"
	TypeInvalidCredentials = "user_invalid_credentials"
	TypeUnauthorized       = "general_unauthorized_scope"
	TypeUserNotFound       = "user_not_found"
	TypeDocumentNotFound   = "document_not_found"
	TypeDocumentExists     = "document_already_exists"
	TypeInvalidQuery       = "general_query_invalid"
)

// NewError builds an Error.
func NewError(code int, typ, message string) *Error {
	return &Error{Code: code, Type: typ, Message: message}
}

// IsCode checks whether err is an *Error with the given status code.
func IsCode(err error, code int) bool {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return IsCode(err, http.StatusNotFound)
}
