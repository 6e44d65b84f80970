package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// RedditTool fetches the top posts of a subreddit through reddit's public
// JSON endpoint. No credentials required.
type RedditTool struct {
	client    *http.Client
	postLimit int
}

func NewRedditTool(postLimit int) *RedditTool {
	if postLimit <= 0 {
		postLimit = 5
	}
	return &RedditTool{
		client:    &http.Client{Timeout: searchTimeout},
		postLimit: postLimit,
	}
}

func (t *RedditTool) Name() string { return "reddit_scrapper" }
func (t *RedditTool) Description() string {
	return "Get the current top posts of a subreddit, with title, score and body."
}
func (t *RedditTool) Example() string {
	return `["reddit_scrapper", ["golang"]]`
}

func (t *RedditTool) Execute(ctx context.Context, args []any) (string, error) {
	sub, err := FirstString(args)
	if err != nil {
		return "", fmt.Errorf("reddit_scrapper: %w", err)
	}
	sub = strings.TrimPrefix(strings.TrimPrefix(sub, "/r/"), "r/")

	endpoint := fmt.Sprintf("https://www.reddit.com/r/%s/top.json?limit=%d&t=day",
		url.PathEscape(sub), t.postLimit)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgentString)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reddit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit returned HTTP %d for r/%s", resp.StatusCode, sub)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return "", fmt.Errorf("parse reddit response: %w", err)
	}

	return formatRedditPosts(sub, listing), nil
}

// formatRedditPosts renders posts as Title/Score/Body blocks separated by
// blank lines.
func formatRedditPosts(sub string, listing redditListing) string {
	if len(listing.Data.Children) == 0 {
		return fmt.Sprintf("No posts found in r/%s today.", sub)
	}

	var blocks []string
	for _, child := range listing.Data.Children {
		p := child.Data
		body := strings.TrimSpace(p.SelfText)
		if len(body) > 500 {
			body = body[:500] + "..."
		}
		blocks = append(blocks, fmt.Sprintf("Title: %s\nScore: %d\nBody: %s", p.Title, p.Score, body))
	}
	return strings.Join(blocks, "\n\n")
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title    string `json:"title"`
	Score    int    `json:"score"`
	SelfText string `json:"selftext"`
	URL      string `json:"url"`
}
