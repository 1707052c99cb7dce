// Package llm provides the injected inference capability: a provider-
// agnostic client that accepts a prompt plus a JSON response schema and
// returns text parseable against that schema. The engine treats the
// capability as a black box; overall retry policy belongs to the caller.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the inference capability is unreachable entirely.
// The pipeline recovers globally: analysis completes rule-based only.
var ErrUnavailable = errors.New("inference capability unavailable")

// Client is the minimal interface the pipeline uses to call an inference
// provider.
type Client interface {
	// CompleteWithSchema sends one prompt and the JSON Schema the reply
	// must conform to, returning the raw response text.
	CompleteWithSchema(ctx context.Context, prompt, schema string) (string, error)
}

// Options configures a provider client.
type Options struct {
	Provider string // "openai", "gemini"
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New creates a client for the configured provider.
func New(opts Options) (Client, error) {
	switch opts.Provider {
	case "gemini":
		return NewGeminiClient(opts)
	case "openai", "":
		return NewOpenAIClient(opts), nil
	}
	return nil, errors.New("unknown inference provider: " + opts.Provider)
}
