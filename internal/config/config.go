package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for answerbot. Credentials live here and
// are threaded through constructors explicitly; nothing reads process-wide
// environment variables at request time.
type Config struct {
	General   GeneralConfig             `json:"general"`
	Providers map[string]ProviderConfig `json:"providers"`
	Tools     ToolsConfig               `json:"tools"`
	Memory    MemoryConfig              `json:"memory"`
	Channels  ChannelsConfig            `json:"channels"`
	Metrics   MetricsConfig             `json:"metrics"`
}

type GeneralConfig struct {
	LogLevel        string `json:"logLevel"`
	DefaultProvider string `json:"defaultProvider"`
	FormatsFile     string `json:"formatsFile,omitempty"` // optional YAML overrides for per-tool format prompts
}

type ProviderConfig struct {
	Enabled      bool   `json:"enabled"`
	APIKey       string `json:"apiKey,omitempty"`
	APIBase      string `json:"apiBase,omitempty"`
	DefaultModel string `json:"defaultModel,omitempty"`
}

type ToolsConfig struct {
	TimeoutSeconds int          `json:"timeoutSeconds"` // per-tool-call deadline
	Search         SearchConfig `json:"search"`
	Scrape         ScrapeConfig `json:"scrape"`
	Reddit         RedditConfig `json:"reddit"`
}

type SearchConfig struct {
	SerperAPIKey string `json:"serperApiKey,omitempty"`
}

type ScrapeConfig struct {
	// BrowserFallback renders the page in headless Chrome when the static
	// fetch yields too little text (JS-heavy sites).
	BrowserFallback bool   `json:"browserFallback"`
	ProfileDir      string `json:"profileDir,omitempty"`
}

type RedditConfig struct {
	PostLimit int `json:"postLimit"`
}

type MemoryConfig struct {
	Enabled       bool   `json:"enabled"`
	DBPath        string `json:"dbPath"`
	RetentionDays int    `json:"retentionDays"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
	ParseMode string   `json:"parseMode"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// DefaultConfigDir returns the default config directory (~/.answerbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".answerbot"
	}
	return filepath.Join(home, ".answerbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Memory.DBPath = ExpandPath(cfg.Memory.DBPath)
	cfg.Tools.Scrape.ProfileDir = ExpandPath(cfg.Tools.Scrape.ProfileDir)
	cfg.General.FormatsFile = ExpandPath(cfg.General.FormatsFile)

	cfg.ExpandCredentials()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// ExpandCredentials expands ${VAR} references in credential fields and blanks
// any that remain unresolved, so a missing env var reads as "no key" instead
// of a literal placeholder. Load calls this; call it manually when using
// Defaults() without a config file.
func (c *Config) ExpandCredentials() {
	for name, pc := range c.Providers {
		pc.APIKey = stripUnresolved(ExpandEnvVars(pc.APIKey))
		c.Providers[name] = pc
	}
	c.Tools.Search.SerperAPIKey = stripUnresolved(ExpandEnvVars(c.Tools.Search.SerperAPIKey))
	c.Channels.Telegram.Token = stripUnresolved(ExpandEnvVars(c.Channels.Telegram.Token))
}

func stripUnresolved(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return ""
	}
	return s
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.General.DefaultProvider == "" {
		errs = append(errs, "general.defaultProvider must be set")
	} else if _, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok {
		errs = append(errs, fmt.Sprintf("general.defaultProvider references unknown provider: %s", cfg.General.DefaultProvider))
	}

	if cfg.Tools.TimeoutSeconds < 1 {
		errs = append(errs, "tools.timeoutSeconds must be >= 1")
	}
	if cfg.Tools.Reddit.PostLimit < 1 || cfg.Tools.Reddit.PostLimit > 25 {
		errs = append(errs, "tools.reddit.postLimit must be between 1 and 25")
	}

	if cfg.Memory.Enabled && cfg.Memory.DBPath == "" {
		errs = append(errs, "memory.dbPath must be set when memory is enabled")
	}
	if cfg.Memory.RetentionDays < 0 {
		errs = append(errs, "memory.retentionDays must be >= 0 (0 keeps runs forever)")
	}

	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		errs = append(errs, "metrics.port must be between 0 and 65535")
	}

	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token == "" {
		errs = append(errs, "channels.telegram.token must be set when telegram is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
