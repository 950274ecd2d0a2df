package ai

import "context"

// Completion is a normalized reply from the completion capability.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Gateway sends a built prompt to an external completion capability.
// Implementations make a single attempt; retry policy belongs to callers.
type Gateway interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (Completion, error)
}

// GatewayError wraps any failure of the remote capability (timeout, auth
// failure, malformed reply) so callers only distinguish success from failure.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "ai gateway: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
