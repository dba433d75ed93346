package llm

import "ContentStudio/internal/config"

func configForTest() config.ProvidersConfig {
	return config.ProvidersConfig{
		DeepSeek: config.ProviderConfig{APIKey: "k", Model: "deepseek-chat"},
		OpenAI:   config.ProviderConfig{APIKey: "k", Model: "gpt-4o-mini"},
		Gemini:   config.ProviderConfig{Model: "gemini-1.5-flash"},
	}
}
