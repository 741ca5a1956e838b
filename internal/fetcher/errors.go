package fetcher

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable means a transport cannot be used at all,
	// e.g. the gh CLI is missing or not logged in.
	ErrUnavailable = errors.New("transport unavailable")

	// ErrNoData means the response had no repository.discussions field.
	ErrNoData = errors.New("no discussion data in response")
)

// HTTPStatusError is a non-200 response from the GraphQL endpoint.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("graphql status %d", e.StatusCode)
}

// ParseError is a response body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// GraphQLQueryError is a well-formed response carrying an errors array.
type GraphQLQueryError struct {
	Messages []string
}

func (e *GraphQLQueryError) Error() string {
	return "graphql query failed: " + strings.Join(e.Messages, "; ")
}

// NetworkError is a connection-level failure, including timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsCredentialError reports whether err is a 401 or 403 response.
func IsCredentialError(err error) bool {
	var se *HTTPStatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}
