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

// WeatherTool looks up current weather from free web sources, no API key
// required. DuckDuckGo's Instant Answer API is tried first, then its HTML
// results page as a fallback.
type WeatherTool struct {
	client *http.Client
}

func NewWeatherTool() *WeatherTool {
	return &WeatherTool{
		client: &http.Client{Timeout: searchTimeout},
	}
}

func (t *WeatherTool) Name() string { return "weather_forecaster" }
func (t *WeatherTool) Description() string {
	return "Get current weather for the specified location using free web sources."
}
func (t *WeatherTool) Example() string {
	return `["weather_forecaster", ["London"]]`
}

func (t *WeatherTool) Execute(ctx context.Context, args []any) (string, error) {
	city, err := FirstString(args)
	if err != nil {
		return "", fmt.Errorf("weather_forecaster: %w", err)
	}

	queries := []string{
		fmt.Sprintf("weather %s today temperature", city),
		fmt.Sprintf("current weather %s", city),
	}

	var report string
	for _, q := range queries {
		if report = t.instantAnswer(ctx, q, city); report != "" {
			break
		}
		if report = t.htmlResults(ctx, q, city); report != "" {
			break
		}
	}
	if report == "" {
		return "", fmt.Errorf("unable to find weather information for %s; check the city name", city)
	}

	report += fmt.Sprintf("\nRetrieved at: %s", time.Now().Format("2006-01-02 15:04:05"))
	report += "\nNote: weather data obtained from free web sources. For the most accurate information, check official weather services."
	return report, nil
}

func (t *WeatherTool) instantAnswer(ctx context.Context, query, city string) string {
	endpoint := fmt.Sprintf("https://api.duckduckgo.com/?q=%s&format=json&no_html=1&skip_disambig=1",
		url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgentString)

	resp, err := t.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var ddg ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddg); err != nil {
		return ""
	}

	if ddg.Answer != "" {
		return fmt.Sprintf("Weather in %s:\n%s\n(Source: DuckDuckGo)", city, ddg.Answer)
	}
	if ddg.Abstract != "" {
		return fmt.Sprintf("Weather in %s:\n%s\n(Source: DuckDuckGo)", city, ddg.Abstract)
	}
	return ""
}

// htmlResults scrapes the DDG HTML results page and keeps only lines that
// actually talk about weather.
func (t *WeatherTool) htmlResults(ctx context.Context, query, city string) string {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgentString)

	resp, err := t.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchMaxBytes))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Weather information for %s:\n", city)
	found := false
	for _, line := range strings.Split(stripHTMLTags(string(body)), "\n") {
		if !weatherRelevant(line) {
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", strings.TrimSpace(line))
		found = true
		if strings.Count(sb.String(), "\n") > 4 {
			break
		}
	}
	if !found {
		return ""
	}
	return strings.TrimRight(sb.String(), "\n")
}

func weatherRelevant(line string) bool {
	l := strings.ToLower(line)
	if len(strings.TrimSpace(l)) < 20 {
		return false
	}
	for _, w := range []string{"temperature", "weather", "°", "celsius", "fahrenheit", "forecast"} {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

type ddgResponse struct {
	Abstract    string `json:"Abstract"`
	AbstractURL string `json:"AbstractURL"`
	Heading     string `json:"Heading"`
	Answer      string `json:"Answer"`
}
