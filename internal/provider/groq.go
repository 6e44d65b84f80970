package provider

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"answerbot/internal/domain"
)

const groqAPIBase = "https://api.groq.com/openai/v1"

// Groq implements domain.ModelService through Groq's OpenAI-compatible chat
// completions endpoint. Any OpenAI-compatible gateway works by overriding
// APIBase, which is also how the factory handles unknown provider names.
type Groq struct {
	client       *openai.Client
	model        string
	systemPrompt string
	logger       *slog.Logger
}

type GroqConfig struct {
	APIKey       string
	APIBase      string
	Model        string
	SystemPrompt string
	Logger       *slog.Logger
}

func NewGroq(cfg GroqConfig) *Groq {
	if cfg.APIBase == "" {
		cfg.APIBase = groqAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-70b-versatile"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.APIBase
	return &Groq{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		logger:       cfg.Logger,
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) FirstAnswer(ctx context.Context, prompt string) (string, error) {
	return g.chat(ctx, g.systemPrompt, prompt)
}

func (g *Groq) SecondAnswer(ctx context.Context, content any, formatPrompt string) (string, error) {
	return g.chat(ctx, formatPrompt, stringifyContent(content))
}

func (g *Groq) chat(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: groq: %v", domain.ErrModelUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: groq: empty response", domain.ErrModelUnavailable)
	}

	g.logger.Debug("groq chat completed",
		"model", g.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}
