package domain

import "errors"

// Failure taxonomy for one agent request. All of these are recoverable: the
// orchestrator converts them into a plain-language answer and the process
// keeps serving.
var (
	// ErrModelUnavailable means the provider call failed or timed out.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMalformedModelOutput means the model's response could not be decoded
	// into a tool decision even after repair.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrToolNotFound means the model named a tool outside the registry, or
	// produced a non-string tool selector.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArgument means argument coercion rejected the model-supplied
	// payload. Only primitive literals and flat sequences are accepted.
	ErrInvalidArgument = errors.New("invalid tool argument")

	// ErrToolExecutionFailed means the tool ran but returned an error or
	// panicked. Captured into the invocation result, never propagated.
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// ErrToolTimeout means the tool did not finish within its deadline.
	ErrToolTimeout = errors.New("tool timed out")

	// ErrFormatNotFound means no format template exists for the chosen tool.
	ErrFormatNotFound = errors.New("format template not found")
)
