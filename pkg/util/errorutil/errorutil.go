package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so callers can compare
// against the sentinels below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

const (
	CodeClientNotFound        = "CLIENT_NOT_FOUND"
	CodeTicketNotFound        = "TICKET_NOT_FOUND"
	CodeTechnicianNotFound    = "TECHNICIAN_NOT_FOUND"
	CodeTechnicianUnavailable = "TECHNICIAN_UNAVAILABLE"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeInternal              = "INTERNAL_ERROR"
)

var (
	ErrClientNotFound        = NewDomainError(CodeClientNotFound, "client not found", http.StatusNotFound, nil)
	ErrTicketNotFound        = NewDomainError(CodeTicketNotFound, "ticket not found", http.StatusNotFound, nil)
	ErrTechnicianNotFound    = NewDomainError(CodeTechnicianNotFound, "technician not found", http.StatusNotFound, nil)
	ErrTechnicianUnavailable = NewDomainError(CodeTechnicianUnavailable, "technician unavailable", http.StatusConflict, nil)
	ErrInvalidTransition     = NewDomainError(CodeInvalidTransition, "invalid state transition", http.StatusConflict, nil)
	ErrValidation            = NewDomainError(CodeValidationFailed, "validation failed", http.StatusBadRequest, nil)
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewClientNotFound(clientID int64) error {
	return NewDomainError(CodeClientNotFound, fmt.Sprintf("client %d not found", clientID), http.StatusNotFound,
		map[string]any{"client_id": clientID})
}

func NewTicketNotFound(ticketID int64) error {
	return NewDomainError(CodeTicketNotFound, fmt.Sprintf("ticket %d not found", ticketID), http.StatusNotFound,
		map[string]any{"ticket_id": ticketID})
}

func NewTechnicianNotFound(technicianID int64) error {
	return NewDomainError(CodeTechnicianNotFound, fmt.Sprintf("technician %d not found", technicianID), http.StatusNotFound,
		map[string]any{"technician_id": technicianID})
}

func NewTechnicianUnavailable(technicianID int64) error {
	return NewDomainError(CodeTechnicianUnavailable, fmt.Sprintf("technician %d unavailable", technicianID), http.StatusConflict,
		map[string]any{"technician_id": technicianID})
}

func NewInvalidTransition(ticketID int64, from, to string) error {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("invalid state transition: %s -> %s", from, to), http.StatusConflict,
		map[string]any{"ticket_id": ticketID, "from": from, "to": to})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
