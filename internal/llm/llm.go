// Package llm calls chat-completion models. Providers implement ChatModel;
// cross-cutting concerns (retries, logging) are layered on with Middleware.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hackguide/advisor/internal/chat"
)

// ErrMissingCredential is returned by provider constructors when no API key is configured.
var ErrMissingCredential = errors.New("llm: missing API credential")

// Request is one chat-completion call.
type Request struct {
	Model    string
	Messages []chat.Message
}

// ChatModel produces one completion per call.
type ChatModel interface {
	Complete(ctx context.Context, req Request) (*chat.Completion, error)
}

// APIError is a failed model call. Status is the HTTP status to report to
// the caller; Message is safe to show to end users.
type APIError struct {
	Status  int
	Message string
	// Err is the underlying transport error, nil for upstream error responses.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm: %d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("llm: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsRetryable reports whether a failed call may succeed when repeated:
// transport failures, 408, 429 and 5xx. Context cancellation never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	if apiErr.Err != nil {
		return true
	}
	switch {
	case apiErr.Status == http.StatusRequestTimeout,
		apiErr.Status == http.StatusTooManyRequests,
		apiErr.Status >= 500:
		return true
	}
	return false
}

// StatusOf returns the HTTP status an error should be reported with.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for a failed call.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return internalErrorMessage
}

const internalErrorMessage = "Internal server error"
