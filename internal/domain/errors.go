package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code and message, so wrapped
// sentinels compare equal after a cause has been attached.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeCapabilityUnavailable = "CAPABILITY_UNAVAILABLE"
	ErrCodeRequest               = "REQUEST_ERROR"
	ErrCodeStorageCorruption     = "STORAGE_CORRUPTION"
	ErrCodeSearchInFlight        = "SEARCH_IN_FLIGHT"
	ErrCodeInvalidState          = "INVALID_STATE"
	ErrCodeNotFound              = "NOT_FOUND"
)

// Validation errors
var (
	ErrEmptyQuery      = NewDomainError(ErrCodeValidation, "please enter or speak a query")
	ErrUnknownTab      = NewDomainError(ErrCodeValidation, "unknown tab")
	ErrEmptyImageURL   = NewDomainError(ErrCodeValidation, "image url is required")
	ErrEmptyImageData  = NewDomainError(ErrCodeValidation, "image data is required")
	ErrUnsupportedFile = NewDomainError(ErrCodeValidation, "file is not an image")
)

// Capability errors
var (
	ErrSpeechUnavailable = NewDomainError(ErrCodeCapabilityUnavailable, "speech recognition is not supported")
	ErrCameraUnavailable = NewDomainError(ErrCodeCapabilityUnavailable, "cannot access camera")
)

// State errors
var (
	ErrSearchInFlight   = NewDomainError(ErrCodeSearchInFlight, "a search is already in progress")
	ErrCameraNotOpen    = NewDomainError(ErrCodeInvalidState, "camera is not streaming")
	ErrCameraBusy       = NewDomainError(ErrCodeInvalidState, "camera is already open")
	ErrAlreadyListening = NewDomainError(ErrCodeInvalidState, "already listening")
)

// Not found errors
var (
	ErrResultNotFound  = NewDomainError(ErrCodeNotFound, "result not found")
	ErrHistoryNotFound = NewDomainError(ErrCodeNotFound, "history entry not found")
	ErrPhotoNotFound   = NewDomainError(ErrCodeNotFound, "photo not found")
)

// NewRequestError wraps a transport or backend failure on the given endpoint.
func NewRequestError(endpoint string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRequest, "request to "+endpoint+" failed", err)
}

// NewCorruptionError reports a stored collection that could not be decoded.
func NewCorruptionError(collection string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorageCorruption, "stored "+collection+" is malformed", err)
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

func IsCapabilityUnavailable(err error) bool { return CodeOf(err) == ErrCodeCapabilityUnavailable }

func IsRequest(err error) bool { return CodeOf(err) == ErrCodeRequest }

func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }
