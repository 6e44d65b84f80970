package domain

import "context"

// ModelService is the two-round conversational capability every provider
// implements. FirstAnswer returns the model's raw decision text for a
// prompt; SecondAnswer folds content (tool output, possibly augmented) into
// a final answer shaped by formatPrompt.
//
// The model identifier, system prompt, and credential are bound at
// construction time. Implementations keep no per-request state and are safe
// for concurrent use.
type ModelService interface {
	FirstAnswer(ctx context.Context, prompt string) (string, error)
	SecondAnswer(ctx context.Context, content any, formatPrompt string) (string, error)
}
