package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	searchTimeout   = 15 * time.Second
	serperEndpoint  = "https://google.serper.dev/search"
	userAgentString = "answerbot/0.1"
)

// SearchTool searches Google through the Serper API.
type SearchTool struct {
	apiKey string
	client *http.Client
}

func NewSearchTool(apiKey string) *SearchTool {
	return &SearchTool{
		apiKey: apiKey,
		client: &http.Client{Timeout: searchTimeout},
	}
}

func (t *SearchTool) Name() string { return "search_tool" }
func (t *SearchTool) Description() string {
	return "Search the given query on Google. Use for current events, facts, or anything you're unsure about."
}
func (t *SearchTool) Example() string {
	return `["search_tool", ["longest river in the world"]]`
}

func (t *SearchTool) Execute(ctx context.Context, args []any) (string, error) {
	query, err := FirstString(args)
	if err != nil {
		return "", fmt.Errorf("search_tool: %w", err)
	}

	if t.apiKey == "" {
		// Recoverable: surfaces to the model as a plain explanation.
		return "", fmt.Errorf("SERPER_API_KEY not configured; set tools.search.serperApiKey or the SERPER_API_KEY environment variable")
	}

	endpoint := fmt.Sprintf("%s?q=%s&api_key=%s", serperEndpoint, url.QueryEscape(query), url.QueryEscape(t.apiKey))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgentString)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("search returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse search response: %w", err)
	}

	return formatSearchResults(query, result), nil
}

// formatSearchResults joins organic snippets, one per line, the shape the
// verification pass expects to cross-check.
func formatSearchResults(query string, result serperResponse) string {
	if len(result.Organic) == 0 {
		return fmt.Sprintf("No search results found for: %s", query)
	}

	var sb strings.Builder
	for _, r := range result.Organic {
		snippet := r.Snippet
		if snippet == "" {
			snippet = "No snippet available"
		}
		sb.WriteString(snippet)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

type serperResponse struct {
	Organic []serperResult `json:"organic"`
}

type serperResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
