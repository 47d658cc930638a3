package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// Email is set when the server refuses a login because the account
	// exists but has not been verified yet.
	Email string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// Message reduces err to the single display string shown to the user: the
// server's message when it sent one, otherwise fallback. Transport faults and
// timeouts always yield fallback.
func Message(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}

// UnverifiedEmail reports the email of an unverified account carried by a
// rejected login.
func UnverifiedEmail(err error) (string, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Email != "" {
		return httpErr.Email, true
	}
	return "", false
}

func decodeHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Email   string `json:"email"`
	}
	if json.Unmarshal(respBody, &apiErr) != nil {
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Error
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg, Email: apiErr.Email}
}
