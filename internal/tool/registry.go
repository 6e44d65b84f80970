package tool

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"answerbot/internal/domain"
)

// Registry holds all available tools and resolves them by name. It is built
// once per agent session and treated as immutable afterwards; reads are safe
// for concurrent Execute calls.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]domain.Tool
	order  []string
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]domain.Tool),
		logger: logger,
	}
}

func (r *Registry) Register(t domain.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
	r.logger.Debug("registered tool", "name", t.Name())
}

// Resolve returns the tool registered under name. The match is exact and
// case-sensitive; a miss is a recoverable condition, not a crash.
func (r *Registry) Resolve(name string) (domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", domain.ErrToolNotFound, name, strings.Join(r.order, ", "))
	}
	return t, nil
}

// Describe renders a model-readable listing of every registered tool, in
// registration order, for embedding in the system prompt.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	for _, name := range r.order {
		t := r.tools[name]
		fmt.Fprintf(&sb, "%s: %s\n", t.Name(), t.Description())
		fmt.Fprintf(&sb, "  Example: %s\n", t.Example())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// FirstString extracts the first argument as a non-empty string. Most tools
// take exactly one positional argument (a query, a URL, a location).
func FirstString(args []any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("missing argument")
	}
	s, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("expected a string argument, got %T", args[0])
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty argument")
	}
	return s, nil
}
