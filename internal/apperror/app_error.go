package apperror

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
)

// AppError is an anticipated failure carrying the HTTP status it maps to.
// Operational errors are shown to clients as-is; anything else is treated
// as a defect by the global handler.
type AppError struct {
	StatusCode  int
	Message     string
	Operational bool
	Fields      map[string]string
	Err         error
	stack       []byte
}

func New(message string, statusCode int) *AppError {
	return &AppError{
		StatusCode:  statusCode,
		Message:     message,
		Operational: true,
		stack:       debug.Stack(),
	}
}

// Wrap marks an unexpected error as a non-operational 500.
func Wrap(err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
		Err:        err,
		stack:      debug.Stack(),
	}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status is "fail" for client errors and "error" otherwise.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

func (e *AppError) Stack() string {
	return string(e.stack)
}

func BadRequest(message string) *AppError {
	return New(message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(message, http.StatusForbidden)
}

func NotFound(message string) *AppError {
	return New(message, http.StatusNotFound)
}

func PayloadTooLarge(message string) *AppError {
	return New(message, http.StatusRequestEntityTooLarge)
}

func UnsupportedMediaType(message string) *AppError {
	return New(message, http.StatusUnsupportedMediaType)
}

func TooManyRequests(message string) *AppError {
	return New(message, http.StatusTooManyRequests)
}

// RouteNotFound is returned for any path no router matched.
func RouteNotFound(path string) *AppError {
	return NotFound(fmt.Sprintf("Can't find %s on this server", path))
}

// Validation builds a 400 from field-level messages keyed by JSON field name.
func Validation(fields map[string]string) *AppError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}

	err := BadRequest("Invalid input data. " + strings.Join(msgs, ". "))
	err.Fields = fields
	return err
}
