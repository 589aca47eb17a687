package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/cinex/internal/shared"
)

// APIError represents a non-2xx response from the movie API.
//
// Message holds the server's message when it sent one and is empty otherwise.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("movie API error: status %d: %s", e.StatusCode, msg)
}

// Unwrap maps the status code to a shared sentinel so callers can use [errors.Is].
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusUnprocessableEntity:
		return shared.ErrNotAuthenticated
	case e.StatusCode == http.StatusNotFound:
		if strings.Contains(strings.ToLower(e.Message), "not in watchlist") {
			return shared.ErrNotInWatchlist
		}
		return shared.ErrMovieNotFound
	case e.StatusCode == http.StatusConflict:
		return shared.ErrUserExists
	case e.StatusCode == http.StatusBadRequest:
		return shared.ErrInvalidInput
	case e.StatusCode >= 500:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// newAPIError builds an [APIError] from a response body.
//
// The API reports errors as {"message"} in route handlers, {"error"} for bad parameters, and {"msg"} from the JWT layer.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = payload.Msg
	}

	return &APIError{StatusCode: status, Message: msg, Body: string(body)}
}

// ErrorMessage returns the API's own message for err, or fallback when there is none.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
