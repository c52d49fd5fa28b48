package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/praxisops/praxis/domain/catalog"
	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/domain/ops"
)

// ErrAuthentication is the sentinel for authentication failures.
var ErrAuthentication = errors.New("authentication failed")

// ErrServer is the sentinel for upstream server errors.
var ErrServer = errors.New("server error")

// APIError carries an HTTP status code alongside a message.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError with the given status code.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the human-readable message.
func (e *APIError) Message() string { return e.message }

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %s", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// AuthenticationError indicates a failed authentication attempt.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

// Is matches the ErrAuthentication sentinel.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// ServerError indicates an upstream or internal server failure.
type ServerError struct {
	statusCode int
	message    string
}

// NewServerError creates a ServerError with the given status code.
func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{statusCode: statusCode, message: message}
}

// StatusCode returns the HTTP status code.
func (e *ServerError) StatusCode() int { return e.statusCode }

// Message returns the human-readable message.
func (e *ServerError) Message() string { return e.message }

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.statusCode, e.message)
}

// Is matches the ErrServer sentinel.
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorBody is the JSON shape of an error response.
type errorBody struct {
	Error string `json:"error"`
}

// WriteError maps err to an HTTP status code and writes a JSON error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := statusFor(err)
	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	WriteJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor resolves the HTTP status for a domain or transport error.
func statusFor(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code()
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.StatusCode()
	}

	switch {
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, knowledge.ErrEntryNotFound),
		errors.Is(err, knowledge.ErrRunNotFound),
		errors.Is(err, ops.ErrUnknownService),
		errors.Is(err, ops.ErrUnknownIncident),
		errors.Is(err, ops.ErrUnknownAction),
		errors.Is(err, ops.ErrUnknownJob),
		errors.Is(err, gate.ErrScanNotFound),
		errors.Is(err, catalog.ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ops.ErrParamNotAllowed),
		errors.Is(err, ops.ErrInvalidApprovalTarget):
		return http.StatusBadRequest
	case errors.Is(err, ErrServer):
		return http.StatusBadGateway
	}

	var decodeErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &decodeErr) || errors.As(err, &typeErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
