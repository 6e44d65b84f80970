package tool

import (
	"strings"
	"testing"
)

func TestFormatSearchResults(t *testing.T) {
	result := serperResponse{Organic: []serperResult{
		{Title: "Nile", Snippet: "The Nile is the longest river in Africa."},
		{Title: "Congo", Snippet: ""},
		{Title: "Niger", Snippet: "The Niger is West Africa's main river."},
	}}

	out := formatSearchResults("rivers in Africa", result)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), out)
	}
	if lines[0] != "The Nile is the longest river in Africa." {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "No snippet available" {
		t.Errorf("empty snippet should be substituted, got %q", lines[1])
	}
}

func TestFormatSearchResults_Empty(t *testing.T) {
	out := formatSearchResults("obscure query", serperResponse{})
	if !strings.Contains(out, "No search results found") {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(out, "obscure query") {
		t.Errorf("query should be echoed: %q", out)
	}
}

func TestFormatRedditPosts(t *testing.T) {
	listing := redditListing{}
	listing.Data.Children = []struct {
		Data redditPost `json:"data"`
	}{
		{Data: redditPost{Title: "Go 1.25 released", Score: 420, SelfText: "Release notes inside."}},
		{Data: redditPost{Title: "Long post", Score: 7, SelfText: strings.Repeat("x", 600)}},
	}

	out := formatRedditPosts("golang", listing)
	if !strings.Contains(out, "Title: Go 1.25 released") {
		t.Errorf("title missing: %q", out)
	}
	if !strings.Contains(out, "Score: 420") {
		t.Errorf("score missing: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("x", 500)+"...") {
		t.Error("long bodies should be truncated at 500 chars")
	}
	if strings.Contains(out, strings.Repeat("x", 501)) {
		t.Error("body exceeded the truncation limit")
	}
}

func TestFormatRedditPosts_Empty(t *testing.T) {
	out := formatRedditPosts("emptysub", redditListing{})
	if !strings.Contains(out, "No posts found in r/emptysub") {
		t.Errorf("out = %q", out)
	}
}

func TestWeatherRelevant(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"The temperature today is 18 degrees in central Paris", true},
		{"Weather forecast for the coming week looks mild", true},
		{"Currently 18°C with light rain expected this evening", true},
		{"Buy cheap flights to Paris now", false},
		{"temp", false}, // too short
	}
	for _, tt := range tests {
		if got := weatherRelevant(tt.line); got != tt.want {
			t.Errorf("weatherRelevant(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
