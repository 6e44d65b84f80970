package agent

import (
	"errors"
	"testing"

	"answerbot/internal/domain"
)

func TestParseDecision_Clean(t *testing.T) {
	d, err := ParseDecision(`["search_tool", ["rivers in Africa"]]`)
	if err != nil {
		t.Fatalf("ParseDecision failed: %v", err)
	}
	if d.Tool != "search_tool" {
		t.Errorf("tool = %q", d.Tool)
	}
	args, ok := d.RawArgs.([]any)
	if !ok || len(args) != 1 || args[0] != "rivers in Africa" {
		t.Errorf("args = %#v", d.RawArgs)
	}
}

func TestParseDecision_SingleQuotes(t *testing.T) {
	d, err := ParseDecision(`['weather_forecaster', ['Paris']]`)
	if err != nil {
		t.Fatalf("ParseDecision failed: %v", err)
	}
	if d.Tool != "weather_forecaster" {
		t.Errorf("tool = %q", d.Tool)
	}
}

func TestParseDecision_CodeFence(t *testing.T) {
	raw := "```json\n[\"basic_calculator\", [\"2 + 2\"]]\n```"
	d, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("ParseDecision failed: %v", err)
	}
	if d.Tool != "basic_calculator" {
		t.Errorf("tool = %q", d.Tool)
	}
}

func TestParseDecision_SurroundingProse(t *testing.T) {
	raw := "Sure, I'll use a tool.\n[\"search_tool\", [\"go generics\"]]\nThat should work."
	d, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("ParseDecision failed: %v", err)
	}
	if d.Tool != "search_tool" {
		t.Errorf("tool = %q", d.Tool)
	}
}

func TestParseDecision_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"I don't know which tool to use.",
		`["search_tool", ["unterminated`,
		`{"tool": "search_tool"}`,
	} {
		if _, err := ParseDecision(raw); !errors.Is(err, domain.ErrMalformedModelOutput) {
			t.Errorf("ParseDecision(%q) err = %v, want ErrMalformedModelOutput", raw, err)
		}
	}
}

func TestParseDecision_NonStringSelector(t *testing.T) {
	_, err := ParseDecision(`[42, ["Paris"]]`)
	if !errors.Is(err, domain.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
}

func TestParseDecision_NoArgs(t *testing.T) {
	d, err := ParseDecision(`["weather_forecaster"]`)
	if err != nil {
		t.Fatalf("ParseDecision failed: %v", err)
	}
	if d.RawArgs != nil {
		t.Errorf("RawArgs = %#v, want nil", d.RawArgs)
	}
}

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`['Paris']`, `["Paris"]`},
		{`what's the weather`, `what's the weather`},
		{`['what's up']`, `["what's up"]`},
		{`''`, `""`},
		{`["already fine"]`, `["already fine"]`},
	}
	for _, tt := range tests {
		if got := NormalizeQuotes(tt.in); got != tt.want {
			t.Errorf("NormalizeQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeQuotes_Idempotent(t *testing.T) {
	inputs := []string{`['Paris']`, `what's up`, `['don't stop', 'go']`}
	for _, in := range inputs {
		once := NormalizeQuotes(in)
		twice := NormalizeQuotes(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestParseFinal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"The answer is 14."`, "The answer is 14."},
		{"The answer is 14.", "The answer is 14."},
		{"```\nThe answer is 14.\n```", "The answer is 14."},
		{`  padded  `, "padded"},
	}
	for _, tt := range tests {
		if got := ParseFinal(tt.in); got != tt.want {
			t.Errorf("ParseFinal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindJSONBounds_IgnoresBracketsInStrings(t *testing.T) {
	s := `noise ["search_tool", ["a [bracketed] query"]] trailing`
	start, end := findJSONBounds(s)
	if start < 0 {
		t.Fatal("no bounds found")
	}
	if got := s[start:end]; got != `["search_tool", ["a [bracketed] query"]]` {
		t.Errorf("bounds = %q", got)
	}
}
