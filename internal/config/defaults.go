package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:        "info",
			DefaultProvider: "groq",
		},
		Providers: map[string]ProviderConfig{
			"groq": {
				Enabled:      true,
				APIKey:       "${GROQ_API_KEY}",
				APIBase:      "https://api.groq.com/openai/v1",
				DefaultModel: "llama-3.1-70b-versatile",
			},
			"gemini": {
				Enabled:      false,
				APIKey:       "${GOOGLE_API_KEY}",
				DefaultModel: "gemini-1.5-flash",
			},
			"mistral": {
				Enabled:      false,
				APIKey:       "${MISTRAL_API_KEY}",
				APIBase:      "https://api.mistral.ai/v1",
				DefaultModel: "open-mistral-7b",
			},
		},
		Tools: ToolsConfig{
			TimeoutSeconds: 30,
			Search: SearchConfig{
				SerperAPIKey: "${SERPER_API_KEY}",
			},
			Scrape: ScrapeConfig{
				BrowserFallback: false,
				ProfileDir:      "~/.answerbot/chrome-profile",
			},
			Reddit: RedditConfig{
				PostLimit: 5,
			},
		},
		Memory: MemoryConfig{
			Enabled:       true,
			DBPath:        "~/.answerbot/runs.db",
			RetentionDays: 90,
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				Enabled:   false,
				ParseMode: "Markdown",
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9090,
		},
	}
}
