package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"answerbot/internal/domain"
)

// Mistral implements domain.ModelService against the native Mistral chat API.
type Mistral struct {
	apiKey       string
	apiBase      string
	model        string
	systemPrompt string
	client       *http.Client
	retry        retryPolicy
	logger       *slog.Logger
}

type MistralConfig struct {
	APIKey       string
	APIBase      string
	Model        string
	SystemPrompt string
	MaxAttempts  int // HTTP attempts per call, 0 for the default
	Logger       *slog.Logger
}

func NewMistral(cfg MistralConfig) *Mistral {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "open-mistral-7b"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Mistral{
		apiKey:       cfg.APIKey,
		apiBase:      cfg.APIBase,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		client:       &http.Client{Timeout: defaultHTTPTimeout},
		retry:        newRetryPolicy(cfg.MaxAttempts, cfg.Logger),
		logger:       cfg.Logger,
	}
}

func (m *Mistral) Name() string { return "mistral" }

func (m *Mistral) FirstAnswer(ctx context.Context, prompt string) (string, error) {
	return m.chat(ctx, m.systemPrompt, prompt)
}

func (m *Mistral) SecondAnswer(ctx context.Context, content any, formatPrompt string) (string, error) {
	return m.chat(ctx, formatPrompt, stringifyContent(content))
}

type mistralRequest struct {
	Model    string           `json:"model"`
	Messages []mistralMessage `json:"messages"`
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralResponse struct {
	Choices []struct {
		Message mistralMessage `json:"message"`
	} `json:"choices"`
}

func (m *Mistral) chat(ctx context.Context, system, user string) (string, error) {
	body := mistralRequest{
		Model: m.model,
		Messages: []mistralMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	buildReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", m.apiBase+"/chat/completions", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
		return req, nil
	}

	resp, err := m.retry.do(ctx, m.client, buildReq)
	if err != nil {
		return "", fmt.Errorf("mistral: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: mistral %d: %s", domain.ErrModelUnavailable, resp.StatusCode, string(respBody))
	}

	var out mistralResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: mistral decode: %v", domain.ErrModelUnavailable, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: mistral: empty response", domain.ErrModelUnavailable)
	}

	return out.Choices[0].Message.Content, nil
}
