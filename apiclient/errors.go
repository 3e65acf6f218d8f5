package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request never got a response
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure on %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a 4xx/5xx answer, carrying the server's message when it sent one
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// UserMessage turns any error from this package into the text shown in a
// notification.
func UserMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Unable to reach the server. Check your connection and try again."
	}
	return err.Error()
}

// StatusCode maps an error to the status a front-end handler should answer with
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
