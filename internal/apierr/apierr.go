// Package apierr describes errors that are reported back to the clients of our HTTP
// APIs, regardless of whether they're delivered as JSON or via the postMessage bridge.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-facing error: Code is a short machine-readable identifier and
// Message is an optional human-readable description
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func New(status int, code string) *Error {
	return &Error{Status: status, Code: code}
}

// WithMessage returns a copy of the error carrying the given description
func (e *Error) WithMessage(message string) *Error {
	copied := *e
	copied.Message = message
	return &copied
}

// ServerError is the catch-all for failures that the client can't do anything about
var ServerError = New(http.StatusInternalServerError, "server_error")

// From resolves the client-facing error for err: an *Error anywhere in the chain is
// returned as-is, and anything else becomes a ServerError
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ServerError
}

// WriteJSON writes the error as a JSON body of the form {"error": "<code>"}
func WriteJSON(res http.ResponseWriter, e *Error) error {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(e.Status)
	return json.NewEncoder(res).Encode(struct {
		Error string `json:"error"`
	}{e.Code})
}
