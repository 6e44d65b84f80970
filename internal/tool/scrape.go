package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	scrapeTimeout  = 20 * time.Second
	fetchMaxBytes  = 512 * 1024
	maxParagraphs  = 8
	maxHeadings    = 5
	minContentSize = 400 // below this the static fetch likely hit a JS-only page
)

// PageRenderer renders a page in a real browser and returns its visible text.
// Used as a fallback for JavaScript-heavy sites; nil disables the fallback.
type PageRenderer interface {
	RenderText(ctx context.Context, url string) (string, error)
}

// ScrapeTool extracts metadata, headings, and main content from a webpage.
type ScrapeTool struct {
	client   *http.Client
	renderer PageRenderer
}

func NewScrapeTool(renderer PageRenderer) *ScrapeTool {
	return &ScrapeTool{
		client:   &http.Client{Timeout: scrapeTimeout},
		renderer: renderer,
	}
}

func (t *ScrapeTool) Name() string { return "scrape_tool" }
func (t *ScrapeTool) Description() string {
	return "Extract the content of a webpage: title, description, key topics and main text."
}
func (t *ScrapeTool) Example() string {
	return `["scrape_tool", ["https://en.wikipedia.org/wiki/Estelle,_Louisiana"]]`
}

func (t *ScrapeTool) Execute(ctx context.Context, args []any) (string, error) {
	raw, err := FirstString(args)
	if err != nil {
		return "", fmt.Errorf("scrape_tool: %w", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		raw = "https://" + raw
		parsed, err = url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL: missing host")
	}

	html, err := t.fetch(ctx, raw)
	if err != nil {
		return "", err
	}

	content := extractContent(html)

	// JS-heavy pages leave almost nothing behind after tag stripping; render
	// them in a real browser when a renderer is configured.
	if len(content) < minContentSize && t.renderer != nil {
		if rendered, rerr := t.renderer.RenderText(ctx, raw); rerr == nil && len(rendered) > len(content) {
			content = "Content:\n" + trimParagraphText(rendered)
		}
	}

	var sb strings.Builder
	sb.WriteString("=== Web Scraping Results ===\n")
	fmt.Fprintf(&sb, "URL: %s\n", raw)
	fmt.Fprintf(&sb, "Scraped at: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if meta := extractMetadata(html); meta != "" {
		sb.WriteString("=== Page Information ===\n")
		sb.WriteString(meta)
		sb.WriteString("\n")
	}

	sb.WriteString("=== Main Content ===\n")
	if content == "" {
		content = "No substantial content found."
	}
	sb.WriteString(content)
	sb.WriteString("\n=== End of Scraping Results ===")
	return sb.String(), nil
}

func (t *ScrapeTool) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; answerbot/0.1)")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error while accessing %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchMaxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe = regexp.MustCompile(`(?is)<meta\s+[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`)
	headingRe  = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	paraRe     = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	scriptRe   = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
)

// extractMetadata pulls the title and meta description out of raw HTML.
func extractMetadata(html string) string {
	var sb strings.Builder
	if m := titleRe.FindStringSubmatch(html); m != nil {
		if title := cleanFragment(m[1]); title != "" {
			fmt.Fprintf(&sb, "Title: %s\n", title)
		}
	}
	if m := metaDescRe.FindStringSubmatch(html); m != nil {
		if desc := cleanFragment(m[1]); desc != "" {
			fmt.Fprintf(&sb, "Description: %s\n", desc)
		}
	}
	return sb.String()
}

// extractContent collects headings for structure and substantial paragraphs
// for body text.
func extractContent(html string) string {
	html = scriptRe.ReplaceAllString(html, "")

	var sb strings.Builder

	var headings []string
	for _, m := range headingRe.FindAllStringSubmatch(html, maxHeadings) {
		if h := cleanFragment(m[1]); len(h) > 5 {
			headings = append(headings, h)
		}
	}
	if len(headings) > 0 {
		sb.WriteString("Key Topics:\n")
		for _, h := range headings {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
		sb.WriteString("\n")
	}

	var paragraphs []string
	for _, m := range paraRe.FindAllStringSubmatch(html, -1) {
		if p := cleanFragment(m[1]); len(p) > 50 {
			paragraphs = append(paragraphs, p)
			if len(paragraphs) >= maxParagraphs {
				break
			}
		}
	}
	if len(paragraphs) > 0 {
		sb.WriteString("Content:\n")
		for _, p := range paragraphs {
			sb.WriteString(p)
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// cleanFragment strips residual tags and collapses whitespace in an HTML fragment.
func cleanFragment(s string) string {
	s = stripHTMLTags(s)
	return strings.Join(strings.Fields(s), " ")
}

func trimParagraphText(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
		if len(kept) >= 40 {
			break
		}
	}
	return strings.Join(kept, "\n")
}

// stripHTMLTags removes HTML tags from a string (simple approach).
func stripHTMLTags(s string) string {
	var result strings.Builder
	inTag := false
	for _, r := range s {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	text := result.String()
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
