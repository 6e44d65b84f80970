package domain

import "context"

// Tool is the interface for agent capabilities (search, scrape, forecast, compute).
// Arguments arrive as a flat list of primitive values, already validated by
// the dispatcher. Execute returns the tool's report as free text. Failures
// are real errors, not string sentinels; the dispatcher captures them into
// the invocation result and keeps the text model-readable.
type Tool interface {
	Name() string
	Description() string
	// Example returns an example invocation, e.g. ["search_tool", ["longest river"]].
	// It is embedded in the system prompt so the model learns the call shape.
	Example() string
	Execute(ctx context.Context, args []any) (string, error)
}
