// Package apierr carries an HTTP status and a stable error code alongside a cause,
// so handlers can map any failure to the JSON error body clients see.
package apierr

import "net/http"

type Error struct {
	Status int
	Code   string
	Err    error
}

// Body is the JSON error payload written for every failed request.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	}
	return http.StatusText(e.StatusCode())
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode is Status, or 500 when unset or out of range.
func (e *Error) StatusCode() int {
	if e == nil || e.Status < 100 || e.Status > 599 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Body renders the client-facing payload. Server errors never expose the cause.
func (e *Error) Body() Body {
	status := e.StatusCode()
	code := "internal"
	if e != nil && e.Code != "" {
		code = e.Code
	}
	if status >= http.StatusInternalServerError {
		return Body{Error: code, Message: "internal server error"}
	}
	return Body{Error: code, Message: e.Error()}
}
