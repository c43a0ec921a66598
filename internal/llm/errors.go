package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// GenerationError means every retry attempt failed. The last underlying
// provider error is wrapped.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedOutputError means the model responded but no valid JSON could
// be extracted. Snippet is capped for log hygiene.
type MalformedOutputError struct {
	Snippet string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("no valid JSON in model output: %v (snippet: %s)", e.Err, e.Snippet)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// ErrNoValidResults means a batch operation produced zero usable items
// after validation.
var ErrNoValidResults = errors.New("no valid results produced")

// IsTransient reports whether err is worth retrying: rate limits,
// provider 5xx, and network failures. Validation and malformed-output
// errors are permanent and fail fast.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var anthErr *anthropic.Error
	if errors.As(err, &anthErr) {
		return anthErr.StatusCode == 429 || anthErr.StatusCode >= 500
	}

	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return oaiErr.HTTPStatusCode == 429 || oaiErr.HTTPStatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
