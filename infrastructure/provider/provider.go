// Package provider implements AI service clients for embedding and answer
// generation.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedOperation indicates the provider does not support the
// requested operation.
var ErrUnsupportedOperation = errors.New("operation not supported by provider")

// Embedder generates one fixed-dimension vector per input text,
// order-preserving.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest describes one text completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ProviderError wraps a provider failure with the failed operation and the
// upstream HTTP status when known.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a ProviderError.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Operation returns the failed operation name.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the upstream HTTP status, or 0 when unknown.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Message returns the upstream error message.
func (e *ProviderError) Message() string { return e.message }

// Error implements error.
func (e *ProviderError) Error() string {
	if e.statusCode != 0 {
		return fmt.Sprintf("provider %s failed (status %d): %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.operation, e.message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.cause }
