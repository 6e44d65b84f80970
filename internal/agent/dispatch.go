package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"answerbot/internal/domain"
	"answerbot/internal/metrics"
	"answerbot/internal/tool"
)

// Invocation is the outcome of one tool call. A tool that ran and failed is
// captured here with Succeeded=false; only pre-invocation problems (unknown
// tool, bad arguments) surface as errors from Dispatch.
type Invocation struct {
	Tool      string
	Args      []any
	Output    string
	Succeeded bool
	Err       error
}

// Dispatcher validates a parsed decision against the registry and runs the
// chosen tool inside a fault boundary: panics are recovered and every call
// carries a deadline.
type Dispatcher struct {
	registry *tool.Registry
	timeout  time.Duration
	logger   *slog.Logger
}

func NewDispatcher(registry *tool.Registry, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{registry: registry, timeout: timeout, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs any) (*Invocation, error) {
	t, err := d.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	args, err := coerceArgs(rawArgs)
	if err != nil {
		return nil, err
	}

	inv := &Invocation{Tool: name, Args: args}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	metrics.ToolExecutions.Inc()

	out, err := d.invoke(callCtx, t, args)
	elapsed := time.Since(start)
	metrics.ToolLatency.Observe(elapsed.Seconds())

	switch {
	case err == nil:
		inv.Succeeded = true
		inv.Output = out
		d.logger.Info("tool executed", "tool", name, "duration", elapsed)
	case callCtx.Err() == context.DeadlineExceeded:
		inv.Err = fmt.Errorf("%w: %s did not finish within %s", domain.ErrToolTimeout, name, d.timeout)
		metrics.ToolFailures.Inc()
		d.logger.Warn("tool timed out", "tool", name, "timeout", d.timeout)
	default:
		inv.Err = fmt.Errorf("%w: %v", domain.ErrToolExecutionFailed, err)
		metrics.ToolFailures.Inc()
		d.logger.Warn("tool failed", "tool", name, "err", err)
	}
	return inv, nil
}

// invoke runs the tool on its own goroutine so a hung tool cannot block the
// pipeline past the deadline, and so a panicking tool is converted into an
// error instead of taking the process down.
func (d *Dispatcher) invoke(ctx context.Context, t domain.Tool, args []any) (out string, err error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		o, e := t.Execute(ctx, args)
		done <- result{out: o, err: e}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// coerceArgs turns the model-supplied argument payload into a flat argument
// list. Only data is accepted: nil, a single JSON primitive, or a flat array
// of primitives. Maps and nested arrays are rejected; there is no expression
// evaluation of any kind.
func coerceArgs(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string, float64, bool:
		return []any{v}, nil
	case []any:
		for i, elem := range v {
			switch elem.(type) {
			case string, float64, bool:
			default:
				return nil, fmt.Errorf("%w: argument %d is %T, want a primitive", domain.ErrInvalidArgument, i, elem)
			}
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unsupported argument payload %T", domain.ErrInvalidArgument, raw)
	}
}
