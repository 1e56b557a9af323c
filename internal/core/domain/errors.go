package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMissing       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
)

// Issue describes a single violated field in a rejected request.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationError aggregates every field violation found while parsing a
// request. Requests that fail validation never reach the persistence layer.
type ValidationError struct {
	Issues []Issue
}

func NewValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		if i.Path != "" {
			msgs = append(msgs, i.Path+": "+i.Message)
			continue
		}
		msgs = append(msgs, i.Message)
	}
	return strings.Join(msgs, "; ")
}
