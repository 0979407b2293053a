// Package arcadeerrors defines the error taxonomy shared by the stores,
// services and HTTP handlers. Stores wrap these sentinels with context using
// %w; callers classify with errors.Is or Code.
package arcadeerrors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSelfVote          = errors.New("self vote")
	ErrDuplicateVote     = errors.New("duplicate vote")
	ErrVoteLimitExceeded = errors.New("vote limit exceeded")
	ErrValidation        = errors.New("validation error")
	ErrRateLimited       = errors.New("rate limited")
)

// Stable tags exposed to API clients.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeConflict          = "CONFLICT"
	CodeInvalidState      = "INVALID_STATE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeSelfVote          = "SELF_VOTE"
	CodeDuplicateVote     = "DUPLICATE_VOTE"
	CodeVoteLimitExceeded = "VOTE_LIMIT_EXCEEDED"
	CodeValidation        = "VALIDATION_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

var taxonomy = []struct {
	err    error
	code   string
	status int
}{
	{ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ErrAlreadyExists, CodeAlreadyExists, http.StatusConflict},
	{ErrConflict, CodeConflict, http.StatusConflict},
	{ErrInvalidState, CodeInvalidState, http.StatusConflict},
	{ErrInvalidTransition, CodeInvalidTransition, http.StatusConflict},
	{ErrSelfVote, CodeSelfVote, http.StatusUnprocessableEntity},
	{ErrDuplicateVote, CodeDuplicateVote, http.StatusConflict},
	{ErrVoteLimitExceeded, CodeVoteLimitExceeded, http.StatusUnprocessableEntity},
	{ErrValidation, CodeValidation, http.StatusBadRequest},
	{ErrRateLimited, CodeRateLimited, http.StatusTooManyRequests},
}

// Code returns the stable tag for err, or CodeInternal when err is not part
// of the taxonomy.
func Code(err error) string {
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.code
		}
	}
	return CodeInternal
}

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.status
		}
	}
	return http.StatusInternalServerError
}

// IsDomain reports whether err is a business rule failure rather than an
// infrastructure error.
func IsDomain(err error) bool {
	return err != nil && Code(err) != CodeInternal
}
