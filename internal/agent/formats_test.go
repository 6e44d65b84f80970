package agent

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"answerbot/internal/domain"
)

func TestFormatTable_Defaults(t *testing.T) {
	ft, err := NewFormatTable("")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"search_tool", "weather_forecaster", "scrape_tool", "reddit_scrapper", "basic_calculator"} {
		if _, err := ft.FormatFor(name); err != nil {
			t.Errorf("FormatFor(%q) failed: %v", name, err)
		}
	}
}

func TestFormatTable_FailsClosed(t *testing.T) {
	ft, err := NewFormatTable("")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ft.FormatFor("time_machine")
	if !errors.Is(err, domain.ErrFormatNotFound) {
		t.Fatalf("err = %v, want ErrFormatNotFound", err)
	}
}

func TestFormatTable_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formats.yaml")
	content := "search_tool: custom search format\ncustom_tool: custom format\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ft, err := NewFormatTable(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ft.FormatFor("search_tool")
	if err != nil || got != "custom search format" {
		t.Errorf("override not applied: %q, %v", got, err)
	}
	if _, err := ft.FormatFor("custom_tool"); err != nil {
		t.Errorf("new key from override file should resolve: %v", err)
	}
	if _, err := ft.FormatFor("weather_forecaster"); err != nil {
		t.Errorf("untouched defaults should survive: %v", err)
	}
}

func TestFormatTable_BadFile(t *testing.T) {
	if _, err := NewFormatTable("/nonexistent/formats.yaml"); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(": [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFormatTable(path); err == nil {
		t.Error("unparseable file should fail")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt("search_tool: search the web\n  Example: [\"search_tool\", [\"x\"]]")
	if !strings.Contains(p, "search_tool: search the web") {
		t.Error("tool listing not embedded")
	}
	if strings.Contains(p, "{{TOOLS}}") {
		t.Error("placeholder left unreplaced")
	}
}
