package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"answerbot/internal/domain"
)

// defaultFormats maps each tool name to the instruction given to the model
// in round two, telling it how to shape the final answer for that tool's
// output.
var defaultFormats = map[string]string{
	"search_tool": `You are given web search results, possibly followed by a reasoning analysis and a source verification block. Summarize the findings into a clear, direct answer to the user's question. Mention the confidence level if a verification block is present. Plain text only.`,

	"weather_forecaster": `You are given raw weather information for a location. Present it as a short, friendly weather report: current conditions first, then anything notable. Keep units as given. Plain text only.`,

	"scrape_tool": `You are given the extracted content of a webpage (title, description, key topics, main text), possibly followed by a reasoning analysis. Write a concise summary of what the page is about and its key points. Plain text only.`,

	"reddit_scrapper": `You are given the top posts from a subreddit as Title/Score/Body blocks, possibly followed by a reasoning analysis. Present them as a readable digest: one short paragraph per post, leading with the title. Plain text only.`,

	"basic_calculator": `You are given an arithmetic expression and its computed result. State the result plainly, restating the expression. Do not recompute. Plain text only.`,
}

// FormatTable resolves the per-tool format prompt for round two. Lookup must
// succeed for every tool the model may legitimately choose; a miss fails
// closed rather than falling back to some arbitrary default.
type FormatTable struct {
	formats map[string]string
}

// NewFormatTable returns the built-in table, optionally overlaid with
// entries from a YAML file (tool name -> template string). Unknown keys in
// the file are accepted so operators can add formats for custom tools.
func NewFormatTable(overridePath string) (*FormatTable, error) {
	formats := make(map[string]string, len(defaultFormats))
	for k, v := range defaultFormats {
		formats[k] = v
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read formats file: %w", err)
		}
		var overrides map[string]string
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse formats file %s: %w", overridePath, err)
		}
		for k, v := range overrides {
			formats[k] = v
		}
	}

	return &FormatTable{formats: formats}, nil
}

func (ft *FormatTable) FormatFor(tool string) (string, error) {
	f, ok := ft.formats[tool]
	if !ok {
		return "", fmt.Errorf("%w: no format template for tool %q", domain.ErrFormatNotFound, tool)
	}
	return f, nil
}
