package composer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyContent indicates the API responded with 200 but no usable
	// digest text could be extracted from the response body.
	ErrEmptyContent = errors.New("no content extracted from response")

	// ErrInvalidResponse indicates the API responded with 200 but the body
	// was not valid JSON.
	ErrInvalidResponse = errors.New("response body is not valid json")
)

// RateLimitError represents a 429 rate limit error from the Perplexity API.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from the Perplexity API.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from the Perplexity API.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// failureReason classifies an error into a short label for logs.
func failureReason(err error) string {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return "rate_limited"
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return "client_error"
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return "server_error"
	}

	if errors.Is(err, ErrEmptyContent) {
		return "empty_content"
	}

	if errors.Is(err, ErrInvalidResponse) {
		return "invalid_response"
	}

	return "network_error"
}
