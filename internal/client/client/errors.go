package client

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRefreshFailed = errors.New("token refresh failed, please log in again")
	ErrNoData        = errors.New("response carries no data")
)

// snippetLen bounds how much of an unparsable body ends up in an error.
const snippetLen = 100

// NetworkError reports that the request never produced an HTTP response.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: unable to reach the API server (%s %s): %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// MalformedResponseError is returned when a non-empty body is not JSON.
type MalformedResponseError struct {
	Status  int
	Snippet string
}

func newMalformedResponseError(status int, body []byte) *MalformedResponseError {
	s := string(body)
	if utf8.RuneCountInString(s) > snippetLen {
		s = string([]rune(s)[:snippetLen])
	}
	return &MalformedResponseError{Status: status, Snippet: s}
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("API response is not valid JSON: %s...", e.Snippet)
}

// HTTPError is a non-2xx response. Message is the server's own explanation
// when it sent one.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API request failed with status %d", e.Status)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// AuthRequiredError is returned without any network call when an endpoint
// needs a token and none is stored.
type AuthRequiredError struct {
	Endpoint string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("authentication required for %s, please log in", e.Endpoint)
}

func (e *AuthRequiredError) Is(target error) bool { return target == ErrUnauthorized }
