package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"answerbot/internal/domain"
)

// Gemini implements domain.ModelService with the official Google SDK.
// The SDK client needs a context to dial, so it is created lazily on the
// first call and reused afterwards.
type Gemini struct {
	apiKey       string
	model        string
	systemPrompt string
	logger       *slog.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

type GeminiConfig struct {
	APIKey       string
	Model        string
	SystemPrompt string
	Logger       *slog.Logger
}

func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Gemini{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		logger:       cfg.Logger,
	}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) FirstAnswer(ctx context.Context, prompt string) (string, error) {
	// The system prompt and the user prompt travel as one joined text part.
	return g.generate(ctx, []string{g.systemPrompt, prompt})
}

func (g *Gemini) SecondAnswer(ctx context.Context, content any, formatPrompt string) (string, error) {
	return g.generate(ctx, []string{formatPrompt, stringifyContent(content)})
}

func (g *Gemini) generate(ctx context.Context, parts []string) (string, error) {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = fmt.Errorf("gemini: missing API key")
			return
		}
		g.client, g.initErr = genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	})
	if g.initErr != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, g.initErr)
	}

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(strings.Join(parts, "\n\n")))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrModelUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini: empty response", domain.ErrModelUnavailable)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: gemini: non-text response part", domain.ErrModelUnavailable)
	}
	return strings.TrimSpace(string(text)), nil
}
