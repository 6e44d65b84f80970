package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"answerbot/internal/domain"
	"answerbot/internal/metrics"
	"answerbot/internal/tool"
)

// Result is the terminal outcome of one Execute call. Output always holds a
// human-readable answer, even when the pipeline failed; ToolName and
// ToolInput carry whatever was known at the point of failure.
type Result struct {
	Output    string
	ToolName  string
	ToolInput []any
}

// RunStore persists finished executions. Persistence is best-effort; a store
// failure never affects the answer.
type RunStore interface {
	SaveRun(ctx context.Context, rec domain.RunRecord) error
}

// Agent drives the two-round tool protocol: ask the model which tool to use,
// parse and dispatch the call, augment the raw output with reasoning and
// verification passes, then ask the model to phrase the final answer.
//
// An Agent is immutable after construction and safe for concurrent Execute
// calls; each call is purely sequential and keeps no state behind.
type Agent struct {
	model      domain.ModelService
	registry   *tool.Registry
	dispatcher *Dispatcher
	augmenter  *Augmenter
	formats    *FormatTable
	store      RunStore // may be nil
	logger     *slog.Logger
}

type Options struct {
	Model       domain.ModelService
	Registry    *tool.Registry
	Formats     *FormatTable
	Store       RunStore
	ToolTimeout time.Duration
	Logger      *slog.Logger
}

func New(opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		model:      opts.Model,
		registry:   opts.Registry,
		dispatcher: NewDispatcher(opts.Registry, opts.ToolTimeout, logger),
		augmenter:  NewAugmenter(opts.Model, logger),
		formats:    opts.Formats,
		store:      opts.Store,
		logger:     logger,
	}
}

// Execute runs one prompt through the full pipeline. Every failure mode
// returns a normal Result with a plain-language message; the caller never
// sees an error from a single request.
func (a *Agent) Execute(ctx context.Context, prompt string) Result {
	start := time.Now()
	metrics.RequestsTotal.Inc()

	res, succeeded := a.run(ctx, prompt)
	if !succeeded {
		metrics.RequestsFailed.Inc()
	}
	metrics.RequestLatency.Observe(time.Since(start).Seconds())

	a.persist(ctx, prompt, res, succeeded)
	return res
}

func (a *Agent) run(ctx context.Context, prompt string) (Result, bool) {
	// Round one: which tool answers this prompt.
	metrics.ModelCallsTotal.Inc()
	first, err := a.model.FirstAnswer(ctx, prompt)
	if err != nil {
		a.logger.Error("model decision call failed", "err", err)
		return Result{Output: fmt.Sprintf("I could not reach the language model to handle your request: %v. Please try again shortly.", err)}, false
	}

	decision, err := ParseDecision(first)
	if err != nil {
		a.logger.Warn("could not parse model decision", "err", err, "response", truncateForError(first))
		if errors.Is(err, domain.ErrToolNotFound) {
			return Result{Output: "The model produced a tool choice I could not recognize. Please try rephrasing your question."}, false
		}
		return Result{Output: "I couldn't determine which tool to use or what input to provide. Please try rephrasing your question."}, false
	}

	inv, err := a.dispatcher.Dispatch(ctx, decision.Tool, decision.RawArgs)
	if err != nil {
		a.logger.Warn("dispatch rejected", "tool", decision.Tool, "err", err)
		switch {
		case errors.Is(err, domain.ErrToolNotFound):
			return Result{
				Output:   fmt.Sprintf("The model asked for a tool named %q, which I don't have. Available tools: %v.", decision.Tool, a.registry.Names()),
				ToolName: decision.Tool,
			}, false
		case errors.Is(err, domain.ErrInvalidArgument):
			return Result{
				Output:   fmt.Sprintf("The model produced arguments I couldn't safely use for %s. Please try rephrasing your question.", decision.Tool),
				ToolName: decision.Tool,
			}, false
		default:
			return Result{Output: fmt.Sprintf("Something went wrong preparing the %s tool: %v.", decision.Tool, err), ToolName: decision.Tool}, false
		}
	}

	// Tool ran but failed: fold the failure into the answer text and keep
	// going, so the user still gets a phrased response.
	var content string
	toolSucceeded := inv.Succeeded
	if !inv.Succeeded {
		content = fmt.Sprintf("The %s tool could not complete the request: %v", inv.Tool, inv.Err)
	} else {
		content = a.augmenter.Augment(ctx, prompt, inv.Tool, inv.Output)
	}

	formatPrompt, err := a.formats.FormatFor(inv.Tool)
	if err != nil {
		a.logger.Error("no format template", "tool", inv.Tool)
		return Result{
			Output:    fmt.Sprintf("I got a result from %s but have no answer format configured for it. This is a configuration problem, not something rephrasing will fix.", inv.Tool),
			ToolName:  inv.Tool,
			ToolInput: inv.Args,
		}, false
	}

	metrics.ModelCallsTotal.Inc()
	final, err := a.model.SecondAnswer(ctx, content, formatPrompt)
	if err != nil {
		a.logger.Warn("final formatting call failed", "err", err)
		// The tool output is still useful; return it raw with a note.
		return Result{
			Output:    content + "\n\n(Note: the language model was unavailable to phrase a final answer, so the raw result is shown above.)",
			ToolName:  inv.Tool,
			ToolInput: inv.Args,
		}, toolSucceeded
	}

	return Result{
		Output:    ParseFinal(final),
		ToolName:  inv.Tool,
		ToolInput: inv.Args,
	}, toolSucceeded
}

func (a *Agent) persist(ctx context.Context, prompt string, res Result, succeeded bool) {
	if a.store == nil {
		return
	}
	input := ""
	if res.ToolInput != nil {
		if b, err := json.Marshal(res.ToolInput); err == nil {
			input = string(b)
		}
	}
	rec := domain.RunRecord{
		Prompt:    prompt,
		ToolName:  res.ToolName,
		ToolInput: input,
		Output:    res.Output,
		Succeeded: succeeded,
		CreatedAt: time.Now(),
	}
	if err := a.store.SaveRun(ctx, rec); err != nil {
		a.logger.Warn("failed to persist run", "err", err)
	}
}
