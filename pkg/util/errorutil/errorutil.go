package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the closed set of error kinds surfaced to callers.
type Code string

const (
	CodeValidation            Code = "VALIDATION_FAILED"
	CodeUnauthenticated       Code = "UNAUTHENTICATED"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeDuplicateEmail        Code = "DUPLICATE_EMAIL"
	CodeInvalidOrExpiredToken Code = "INVALID_OR_EXPIRED_TOKEN"
	CodeInvalidToken          Code = "INVALID_TOKEN"
	CodeHashingFailed         Code = "HASHING_FAILED"
	CodeSigningFailed         Code = "SIGNING_FAILED"
	CodeNotFound              Code = "NOT_FOUND"
	CodeInternal              Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:            http.StatusBadRequest,
	CodeUnauthenticated:       http.StatusUnauthorized,
	CodeUserNotFound:          http.StatusNotFound,
	CodeDuplicateEmail:        http.StatusConflict,
	CodeInvalidOrExpiredToken: http.StatusBadRequest,
	CodeInvalidToken:          http.StatusUnauthorized,
	CodeHashingFailed:         http.StatusInternalServerError,
	CodeSigningFailed:         http.StatusInternalServerError,
	CodeNotFound:              http.StatusNotFound,
	CodeInternal:              http.StatusInternalServerError,
}

// Sentinels usable with errors.Is; matching is by Code.
var (
	ErrValidation            = &DomainError{Code: CodeValidation}
	ErrUnauthenticated       = &DomainError{Code: CodeUnauthenticated}
	ErrUserNotFound          = &DomainError{Code: CodeUserNotFound}
	ErrDuplicateEmail        = &DomainError{Code: CodeDuplicateEmail}
	ErrInvalidOrExpiredToken = &DomainError{Code: CodeInvalidOrExpiredToken}
	ErrInvalidToken          = &DomainError{Code: CodeInvalidToken}
	ErrHashingFailed         = &DomainError{Code: CodeHashingFailed}
	ErrSigningFailed         = &DomainError{Code: CodeSigningFailed}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same Code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code Code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: StatusFor(code), Details: details}
}

// Wrap attaches an underlying cause to a new DomainError.
func Wrap(code Code, message string, err error) *DomainError {
	de := NewDomainError(code, message, nil)
	de.Err = err
	return de
}

// StatusFor returns the HTTP status mapped to code.
func StatusFor(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, details)
}

func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, nil)
}

func NewUserNotFound(email string) error {
	return NewDomainError(CodeUserNotFound, fmt.Sprintf("No such user found for email: %s", email), nil)
}

func NewDuplicateEmail(email string) error {
	return NewDomainError(CodeDuplicateEmail, "email already registered", map[string]any{"email": email})
}

func NewInvalidOrExpiredToken() error {
	return NewDomainError(CodeInvalidOrExpiredToken, "This token is either invalid or expired!", nil)
}

func NewInvalidToken(err error) error {
	return Wrap(CodeInvalidToken, "invalid session token", err)
}

func NewHashingError(err error) error {
	return Wrap(CodeHashingFailed, "password hashing failed", err)
}

func NewSigningError(err error) error {
	return Wrap(CodeSigningFailed, "session signing failed", err)
}

// NewTokenGenerationError reports an entropy failure while minting a reset token.
func NewTokenGenerationError(err error) error {
	return Wrap(CodeSigningFailed, "reset token generation failed", err)
}

func NewInternalError(err error) error {
	return Wrap(CodeInternal, "internal server error", err)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus != 0 && domainErr.Message != "" {
			return domainErr
		}
		// sentinels are shared; fill the gaps on a copy
		filled := *domainErr
		if filled.HTTPStatus == 0 {
			filled.HTTPStatus = StatusFor(filled.Code)
		}
		if filled.Message == "" {
			filled.Message = string(filled.Code)
		}
		return &filled
	}
	return Wrap(CodeInternal, "internal server error", err)
}
