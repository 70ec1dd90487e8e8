package driven

import "context"

// LLMService is the language model collaborator used for plan
// generation. Only the contract is part of this core: segments in, raw
// text out, or a well-defined failure.
//
// Implementations must respect the caller-supplied context deadline and
// surface unreachability, timeouts and 5xx-equivalent responses as
// domain.ErrUpstreamUnavailable, never by hanging.
type LLMService interface {
	// Generate produces a text completion for a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
