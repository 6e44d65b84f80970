package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"answerbot/internal/domain"
	"answerbot/internal/metrics"
)

const reasoningTemplate = `You are a reasoning agent. The user asked: "%s"

The %s tool provided this information:
%s

Please:
1. Analyze the reliability and completeness of this information
2. Identify any potential gaps or uncertainties
3. Suggest if cross-verification might be needed
4. Provide a reasoned assessment of the answer quality

If this is search results, check for consistency between different sources mentioned.`

const verificationTemplate = `You are a fact-checking agent. Analyze these search results for the query "%s":

%s

Please evaluate:
1. Consistency: Do multiple sources agree on key facts?
2. Source quality: Are there reputable sources mentioned?
3. Completeness: Does the information fully address the query?
4. Potential biases or contradictions

Provide a brief verification summary with a confidence level (High/Medium/Low) and highlight any concerns.`

// Augmenter layers model-generated critique blocks on top of raw tool
// output before final formatting. Both passes are best-effort: a failed
// model call becomes an inline error placeholder, never a pipeline failure.
type Augmenter struct {
	model  domain.ModelService
	logger *slog.Logger
}

func NewAugmenter(model domain.ModelService, logger *slog.Logger) *Augmenter {
	return &Augmenter{model: model, logger: logger}
}

// Augment appends the reasoning analysis and, for clean search results, a
// source verification block to the tool output.
func (a *Augmenter) Augment(ctx context.Context, prompt, toolName, toolOutput string) string {
	out := toolOutput + a.reason(ctx, prompt, toolName, toolOutput)
	if shouldVerify(toolName, toolOutput) {
		out += a.verify(ctx, prompt, toolOutput)
	}
	return out
}

func (a *Augmenter) reason(ctx context.Context, prompt, toolName, toolOutput string) string {
	metrics.ModelCallsTotal.Inc()
	reasoning, err := a.model.FirstAnswer(ctx, fmt.Sprintf(reasoningTemplate, prompt, toolName, toolOutput))
	if err != nil {
		a.logger.Warn("reasoning pass failed", "tool", toolName, "err", err)
		return fmt.Sprintf("\n--- Reasoning Error: %v ---\n", err)
	}
	return fmt.Sprintf("\n--- Reasoning Analysis ---\n%s\n--- End Analysis ---\n", reasoning)
}

func (a *Augmenter) verify(ctx context.Context, prompt, searchResults string) string {
	metrics.ModelCallsTotal.Inc()
	metrics.VerifyPassesRun.Inc()
	verification, err := a.model.FirstAnswer(ctx, fmt.Sprintf(verificationTemplate, prompt, searchResults))
	if err != nil {
		a.logger.Warn("verification pass failed", "err", err)
		return fmt.Sprintf("\n--- Verification Error: %v ---\n", err)
	}
	return fmt.Sprintf("\n--- Source Verification ---\n%s\n--- End Verification ---\n", verification)
}

// shouldVerify gates the verification pass: search results only, and only
// when the output carries no error marker.
func shouldVerify(toolName, toolOutput string) bool {
	if toolName != "search_tool" {
		return false
	}
	return !strings.Contains(strings.ToLower(toolOutput), "error")
}
