package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is wrapped by a StatusError for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is wrapped by a StatusError for 401 and 403 responses.
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest is wrapped by a StatusError for 400 responses.
	ErrBadRequest = errors.New("bad request")
	// ErrServer is wrapped by a StatusError for 5xx responses.
	ErrServer = errors.New("server error")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server's explanation when the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusForbidden, e.StatusCode == http.StatusUnauthorized:
		return ErrForbidden
	case e.StatusCode == http.StatusBadRequest:
		return ErrBadRequest
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return nil
	}
}

// errorBody is the {"message", "status_code"} payload of 400 responses.
type errorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func newStatusError(method, path string, status int, body string) *StatusError {
	e := &StatusError{Method: method, Path: path, StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err == nil && eb.Message != "" {
		e.Message = eb.Message
	} else if trimmed := strings.TrimSpace(body); trimmed != "" && len(trimmed) <= 200 && !strings.HasPrefix(trimmed, "<") {
		e.Message = trimmed
	}
	return e
}
