package domain

import "time"

// RunRecord is one persisted agent execution: the user prompt, the tool the
// model chose, and the final answer.
type RunRecord struct {
	ID        int64
	Prompt    string
	ToolName  string
	ToolInput string // JSON-encoded argument list
	Output    string
	Succeeded bool
	CreatedAt time.Time
}
