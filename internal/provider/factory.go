package provider

import (
	"fmt"
	"log/slog"
	"sync"

	"answerbot/internal/config"
	"answerbot/internal/domain"
)

// Constructor creates a model service from a config entry. The system prompt
// is bound at construction time, so every service built by one factory shares
// the same tool-aware prompt for its session.
type Constructor func(pc config.ProviderConfig, systemPrompt string, logger *slog.Logger) domain.ModelService

// Factory creates and caches model services from config. Selection happens by
// name at construction time, never by runtime type inspection.
type Factory struct {
	cfg          *config.Config
	systemPrompt string
	logger       *slog.Logger
	constructors map[string]Constructor
	cache        map[string]domain.ModelService
	mu           sync.RWMutex
}

// NewFactory creates a provider factory with the built-in constructors registered.
func NewFactory(cfg *config.Config, systemPrompt string, logger *slog.Logger) *Factory {
	f := &Factory{
		cfg:          cfg,
		systemPrompt: systemPrompt,
		logger:       logger,
		constructors: make(map[string]Constructor),
		cache:        make(map[string]domain.ModelService),
	}
	f.registerDefaults()
	return f
}

// RegisterConstructor adds (or replaces) a constructor by name. Tests use this
// to inject stub services.
func (f *Factory) RegisterConstructor(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[name] = ctor
}

func (f *Factory) registerDefaults() {
	f.constructors["groq"] = func(pc config.ProviderConfig, sys string, logger *slog.Logger) domain.ModelService {
		return NewGroq(GroqConfig{APIKey: pc.APIKey, APIBase: pc.APIBase, Model: pc.DefaultModel, SystemPrompt: sys, Logger: logger})
	}
	f.constructors["gemini"] = func(pc config.ProviderConfig, sys string, logger *slog.Logger) domain.ModelService {
		return NewGemini(GeminiConfig{APIKey: pc.APIKey, Model: pc.DefaultModel, SystemPrompt: sys, Logger: logger})
	}
	f.constructors["mistral"] = func(pc config.ProviderConfig, sys string, logger *slog.Logger) domain.ModelService {
		return NewMistral(MistralConfig{APIKey: pc.APIKey, APIBase: pc.APIBase, Model: pc.DefaultModel, SystemPrompt: sys, Logger: logger})
	}
}

// Get returns the model service with the given name, or the default if name
// is empty. Created services are cached so the same instance is reused.
// Uses double-check locking to avoid TOCTOU races.
func (f *Factory) Get(name string) (domain.ModelService, error) {
	if name == "" {
		name = f.cfg.General.DefaultProvider
	}

	f.mu.RLock()
	if cached, ok := f.cache[name]; ok {
		f.mu.RUnlock()
		return cached, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Re-check under write lock (another goroutine may have created it).
	if cached, ok := f.cache[name]; ok {
		return cached, nil
	}

	pc, ok := f.cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	if !pc.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", name)
	}

	ctor, found := f.constructors[name]

	var svc domain.ModelService
	if found {
		svc = ctor(pc, f.systemPrompt, f.logger)
	} else if pc.APIBase != "" && pc.APIKey != "" {
		// Fallback: treat unknown providers as OpenAI-compatible.
		svc = NewGroq(GroqConfig{APIKey: pc.APIKey, APIBase: pc.APIBase, Model: pc.DefaultModel, SystemPrompt: f.systemPrompt, Logger: f.logger})
	} else {
		return nil, fmt.Errorf("provider %s: no constructor registered and no API base/key configured", name)
	}

	f.cache[name] = svc
	return svc, nil
}

// DefaultService returns the configured default model service.
func (f *Factory) DefaultService() (domain.ModelService, error) {
	return f.Get("")
}
