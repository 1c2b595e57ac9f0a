// Package llmclient wraps the text-generation backend behind a minimal
// interface. Clients focus on the API call itself; cross-cutting concerns
// (rate limiting, retries, logging) are applied via fleetscan/internal/llm
// middleware.
package llmclient

import (
	"context"
	"errors"
)

// ErrEmptyResponse signals a response with no usable text and no policy
// signal. Transient: worth retrying.
var ErrEmptyResponse = errors.New("llmclient: empty response from model")

// ErrBlocked signals a response withheld for policy/safety reasons. Always
// wrapped in a PermanentError; retrying cannot help.
var ErrBlocked = errors.New("llmclient: response withheld by content policy")

// Client is the text-generation boundary. Prompt in, raw text out; the
// payload contract (JSON array of exactly N objects) lives in the prompt.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in its
// chain.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
