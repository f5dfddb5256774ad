package errs

import (
	"net/http"
	"strings"
)

// ServerErrorBody is the only thing a client ever sees of an internal failure.
const ServerErrorBody = "Server error"

// Location values for FieldError.
const (
	LocationBody = "body"
)

// FieldError is one entry of the 400 error list.
// Example:
//
//	{ "type": "field", "value": "Bob", "msg": "Invalid staker format: ...", "path": "staker", "location": "body" }
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Path     string `json:"path,omitempty"`
	Location string `json:"location,omitempty"`
}

// ErrorResponse is the body of every 4xx response.
type ErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// HTTPError is the error type handlers return for anything the client caused.
//
// Code is machine-friendly (e.g. "BAD_REQUEST"), Message human-friendly.
// Errors holds per-field validation failures, if any.
type HTTPError struct {
	Code    string
	Message string
	Status  int
	Errors  []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Response builds the client-facing body. Errors without field detail are
// reported as a single entry carrying the message.
func (e *HTTPError) Response() ErrorResponse {
	if len(e.Errors) > 0 {
		return ErrorResponse{Errors: e.Errors}
	}
	return ErrorResponse{Errors: []FieldError{{Type: "request", Msg: e.Message}}}
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

func codeFor(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}
