package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"answerbot/internal/domain"
)

type memStore struct {
	records []domain.RunRecord
}

func (s *memStore) SaveRun(ctx context.Context, rec domain.RunRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func newTestAgent(t *testing.T, model domain.ModelService, store RunStore, tools ...domain.Tool) *Agent {
	t.Helper()
	formats, err := NewFormatTable("")
	if err != nil {
		t.Fatalf("NewFormatTable: %v", err)
	}
	return New(Options{
		Model:       model,
		Registry:    newTestRegistry(tools...),
		Formats:     formats,
		Store:       store,
		ToolTimeout: time.Second,
		Logger:      testLogger(),
	})
}

func TestExecute_WeatherScenario(t *testing.T) {
	weather := &stubTool{name: "weather_forecaster", output: "Temperature: 18°C"}
	model := &stubModel{
		firstFn: func(prompt string) (string, error) {
			if strings.Contains(prompt, "reasoning agent") {
				return "complete and reliable", nil
			}
			return `["weather_forecaster", ["Paris"]]`, nil
		},
		secondFn: func(content any, formatPrompt string) (string, error) {
			return fmt.Sprintf("%v", content), nil
		},
	}
	store := &memStore{}
	a := newTestAgent(t, model, store, weather)

	res := a.Execute(context.Background(), "What's the weather in Paris?")

	if res.ToolName != "weather_forecaster" {
		t.Errorf("ToolName = %q", res.ToolName)
	}
	if len(res.ToolInput) != 1 || res.ToolInput[0] != "Paris" {
		t.Errorf("ToolInput = %#v", res.ToolInput)
	}
	if !strings.Contains(res.Output, "Temperature: 18°C") {
		t.Errorf("Output = %q", res.Output)
	}
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	rec := store.records[0]
	if !rec.Succeeded || rec.ToolName != "weather_forecaster" || rec.ToolInput != `["Paris"]` {
		t.Errorf("record = %+v", rec)
	}
}

func TestExecute_MalformedDecision(t *testing.T) {
	weather := &stubTool{name: "weather_forecaster", output: "Temperature: 18°C"}
	model := &stubModel{firstFn: func(prompt string) (string, error) {
		return "I have no idea which tool to use.", nil
	}}
	a := newTestAgent(t, model, nil, weather)

	res := a.Execute(context.Background(), "What's the weather in Paris?")

	if res.ToolName != "" {
		t.Errorf("ToolName = %q, want empty", res.ToolName)
	}
	if weather.called {
		t.Error("no tool may run on a malformed decision")
	}
	if res.Output == "" || !strings.Contains(res.Output, "rephras") {
		t.Errorf("Output should ask the user to rephrase: %q", res.Output)
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	weather := &stubTool{name: "weather_forecaster"}
	model := &stubModel{firstFn: func(prompt string) (string, error) {
		return `["time_machine", ["1985"]]`, nil
	}}
	a := newTestAgent(t, model, nil, weather)

	res := a.Execute(context.Background(), "take me back")

	if res.ToolName != "time_machine" {
		t.Errorf("ToolName = %q, want the requested name preserved", res.ToolName)
	}
	if !strings.Contains(res.Output, "time_machine") {
		t.Errorf("Output should name the missing tool: %q", res.Output)
	}
	if weather.called {
		t.Error("registered tool must not run")
	}
}

func TestExecute_ModelUnavailable(t *testing.T) {
	model := &stubModel{firstFn: func(prompt string) (string, error) {
		return "", fmt.Errorf("%w: connection refused", domain.ErrModelUnavailable)
	}}
	a := newTestAgent(t, model, nil, &stubTool{name: "weather_forecaster"})

	res := a.Execute(context.Background(), "anything")

	if res.ToolName != "" || res.ToolInput != nil {
		t.Errorf("nothing was known at failure: %+v", res)
	}
	if strings.Contains(res.Output, "panic") || res.Output == "" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestExecute_ToolFailureStillAnswers(t *testing.T) {
	broken := &stubTool{name: "search_tool", err: fmt.Errorf("serper quota exceeded")}
	model := &stubModel{
		firstFn: func(prompt string) (string, error) {
			return `["search_tool", ["rivers"]]`, nil
		},
		secondFn: func(content any, formatPrompt string) (string, error) {
			return fmt.Sprintf("%v", content), nil
		},
	}
	store := &memStore{}
	a := newTestAgent(t, model, store, broken)

	res := a.Execute(context.Background(), "rivers in Africa")

	if res.ToolName != "search_tool" {
		t.Errorf("ToolName = %q", res.ToolName)
	}
	if !strings.Contains(res.Output, "could not complete") {
		t.Errorf("Output should explain the tool failure: %q", res.Output)
	}
	if len(store.records) != 1 || store.records[0].Succeeded {
		t.Errorf("failed run should persist as unsuccessful: %+v", store.records)
	}
}

func TestExecute_FormatMissing(t *testing.T) {
	custom := &stubTool{name: "custom_tool", output: "data"}
	model := &stubModel{firstFn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "reasoning agent") {
			return "fine", nil
		}
		return `["custom_tool", ["x"]]`, nil
	}}
	a := newTestAgent(t, model, nil, custom)

	res := a.Execute(context.Background(), "use the custom tool")

	if !strings.Contains(res.Output, "configuration") {
		t.Errorf("Output should flag a configuration problem: %q", res.Output)
	}
	if model.secondCalls != 0 {
		t.Error("round two must not run without a format template")
	}
}

func TestExecute_SecondAnswerFailureReturnsRawOutput(t *testing.T) {
	weather := &stubTool{name: "weather_forecaster", output: "Temperature: 18°C"}
	model := &stubModel{
		firstFn: func(prompt string) (string, error) {
			if strings.Contains(prompt, "reasoning agent") {
				return "fine", nil
			}
			return `["weather_forecaster", ["Paris"]]`, nil
		},
		secondFn: func(content any, formatPrompt string) (string, error) {
			return "", fmt.Errorf("%w: timeout", domain.ErrModelUnavailable)
		},
	}
	a := newTestAgent(t, model, nil, weather)

	res := a.Execute(context.Background(), "weather in Paris")

	if !strings.Contains(res.Output, "Temperature: 18°C") {
		t.Errorf("raw tool output should be preserved: %q", res.Output)
	}
	if res.ToolName != "weather_forecaster" {
		t.Errorf("ToolName = %q", res.ToolName)
	}
}
