package synthesis

import "context"

// Completer is the opaque LLM capability: generate text given a prompt,
// return text plus usage. The engine never sees provider wire formats.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
