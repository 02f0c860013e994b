package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds. Every error returned by the assistant matches exactly one of
// these through errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrExtraction    = errors.New("extraction error")
	ErrValidation    = errors.New("validation error")
	ErrModel         = errors.New("model error")
	ErrBusy          = errors.New("session busy")
)

// AssistantError carries a user-facing message together with its kind and
// the underlying cause.
type AssistantError struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *AssistantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AssistantError) Unwrap() error {
	return e.Err
}

func (e *AssistantError) Is(target error) bool {
	return e.Kind == target
}

func newConfigurationError(op, message string) error {
	return &AssistantError{Kind: ErrConfiguration, Op: op, Message: message}
}

func newExtractionError(op string, err error) error {
	return &AssistantError{Kind: ErrExtraction, Op: op, Message: "failed to read PDF", Err: err}
}

func newValidationError(op, message string) error {
	return &AssistantError{Kind: ErrValidation, Op: op, Message: message}
}

func newModelError(op string, err error) error {
	return &AssistantError{Kind: ErrModel, Op: op, Message: "failed to generate content", Err: err}
}

func newBusyError(op string) error {
	return &AssistantError{
		Kind:    ErrBusy,
		Op:      op,
		Message: "another request is still running for this session",
	}
}

// ErrorKindOf returns the wire name of err's kind.
func ErrorKindOf(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrModel):
		return "model"
	case errors.Is(err, ErrBusy):
		return "busy"
	default:
		return "internal"
	}
}

// HTTPStatus maps an assistant error to a response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrModel):
		return http.StatusBadGateway
	case errors.Is(err, ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
