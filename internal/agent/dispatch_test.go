package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"answerbot/internal/domain"
	"answerbot/internal/tool"
)

// stubTool records invocations and returns canned output.
type stubTool struct {
	name     string
	output   string
	err      error
	panics   bool
	sleep    time.Duration
	called   bool
	lastArgs []any
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Example() string     { return `["` + s.name + `", ["x"]]` }
func (s *stubTool) Execute(ctx context.Context, args []any) (string, error) {
	s.called = true
	s.lastArgs = args
	if s.panics {
		panic("stub tool exploded")
	}
	if s.sleep > 0 {
		select {
		case <-time.After(s.sleep):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.output, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(tools ...domain.Tool) *tool.Registry {
	r := tool.NewRegistry(testLogger())
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func TestDispatch_Success(t *testing.T) {
	st := &stubTool{name: "weather_forecaster", output: "Temperature: 18°C"}
	d := NewDispatcher(newTestRegistry(st), time.Second, testLogger())

	inv, err := d.Dispatch(context.Background(), "weather_forecaster", []any{"Paris"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !inv.Succeeded {
		t.Fatalf("invocation failed: %v", inv.Err)
	}
	if inv.Output != "Temperature: 18°C" {
		t.Errorf("output = %q", inv.Output)
	}
	if len(st.lastArgs) != 1 || st.lastArgs[0] != "Paris" {
		t.Errorf("args = %#v", st.lastArgs)
	}
}

func TestDispatch_UnknownToolNeverInvokes(t *testing.T) {
	st := &stubTool{name: "weather_forecaster"}
	d := NewDispatcher(newTestRegistry(st), time.Second, testLogger())

	_, err := d.Dispatch(context.Background(), "Weather_Forecaster", []any{"Paris"})
	if !errors.Is(err, domain.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
	if st.called {
		t.Error("tool must not run when the name does not resolve")
	}
}

func TestDispatch_RejectsNonPrimitiveArgs(t *testing.T) {
	st := &stubTool{name: "search_tool"}
	d := NewDispatcher(newTestRegistry(st), time.Second, testLogger())

	for _, raw := range []any{
		map[string]any{"q": "x"},
		[]any{[]any{"nested"}},
		[]any{map[string]any{}},
	} {
		_, err := d.Dispatch(context.Background(), "search_tool", raw)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Dispatch(%#v) err = %v, want ErrInvalidArgument", raw, err)
		}
	}
	if st.called {
		t.Error("tool must not run on rejected arguments")
	}
}

func TestDispatch_ToolErrorCaptured(t *testing.T) {
	st := &stubTool{name: "search_tool", err: fmt.Errorf("backend down")}
	d := NewDispatcher(newTestRegistry(st), time.Second, testLogger())

	inv, err := d.Dispatch(context.Background(), "search_tool", []any{"x"})
	if err != nil {
		t.Fatalf("tool failure must not propagate as error: %v", err)
	}
	if inv.Succeeded {
		t.Fatal("invocation should be marked failed")
	}
	if !errors.Is(inv.Err, domain.ErrToolExecutionFailed) {
		t.Errorf("inv.Err = %v, want ErrToolExecutionFailed", inv.Err)
	}
}

func TestDispatch_PanicRecovered(t *testing.T) {
	st := &stubTool{name: "search_tool", panics: true}
	d := NewDispatcher(newTestRegistry(st), time.Second, testLogger())

	inv, err := d.Dispatch(context.Background(), "search_tool", []any{"x"})
	if err != nil {
		t.Fatalf("panic must not propagate as error: %v", err)
	}
	if inv.Succeeded {
		t.Fatal("invocation should be marked failed")
	}
	if !errors.Is(inv.Err, domain.ErrToolExecutionFailed) {
		t.Errorf("inv.Err = %v", inv.Err)
	}
}

func TestDispatch_Timeout(t *testing.T) {
	st := &stubTool{name: "search_tool", sleep: 500 * time.Millisecond}
	d := NewDispatcher(newTestRegistry(st), 20*time.Millisecond, testLogger())

	inv, err := d.Dispatch(context.Background(), "search_tool", []any{"x"})
	if err != nil {
		t.Fatalf("timeout must not propagate as error: %v", err)
	}
	if inv.Succeeded {
		t.Fatal("invocation should be marked failed")
	}
	if !errors.Is(inv.Err, domain.ErrToolTimeout) {
		t.Errorf("inv.Err = %v, want ErrToolTimeout", inv.Err)
	}
}

func TestCoerceArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		wantLen int
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"single string", "Paris", 1, false},
		{"single number", 42.0, 1, false},
		{"single bool", true, 1, false},
		{"flat list", []any{"a", 1.5, false}, 3, false},
		{"map", map[string]any{}, 0, true},
		{"nested list", []any{[]any{}}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceArgs(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}
