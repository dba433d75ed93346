package llm

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ContentStudio/internal/config"
)

// ProviderSpec describes one OpenAI-compatible vendor.
type ProviderSpec struct {
	Name           string
	Label          string
	KeySetting     string
	LimiterKey     string
	ModelPrefix    string
	APIKey         string
	BaseURL        string
	DefaultModel   string
	FallbackModels []string
	JSONMode       bool
	Temperature    float32
}

// Candidates lists models to try: the preferred model when it belongs to this
// vendor, otherwise the default, then the fallbacks, without duplicates.
func (s ProviderSpec) Candidates(preferred string) []string {
	first := s.DefaultModel
	if preferred != "" && s.ModelPrefix != "" && strings.HasPrefix(preferred, s.ModelPrefix) {
		first = preferred
	}
	ordered := make([]string, 0, len(s.FallbackModels)+1)
	ordered = append(ordered, first)
	ordered = append(ordered, s.FallbackModels...)

	seen := map[string]bool{}
	out := ordered[:0]
	for _, m := range ordered {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Specs builds the three supported vendors from configuration.
func Specs(cfg config.ProvidersConfig) []ProviderSpec {
	return []ProviderSpec{
		newSpec(cfg.DeepSeek, ProviderSpec{
			Name: config.ProviderDeepSeek, Label: "DeepSeek", KeySetting: "DEEPSEEK_API_KEY",
			LimiterKey: "deepseek-api", ModelPrefix: "deepseek", JSONMode: true,
		}),
		newSpec(cfg.OpenAI, ProviderSpec{
			Name: config.ProviderOpenAI, Label: "OpenAI", KeySetting: "OPENAI_API_KEY",
			LimiterKey: "openai-api", ModelPrefix: "gpt", JSONMode: true,
		}),
		newSpec(cfg.Gemini, ProviderSpec{
			Name: config.ProviderGemini, Label: "Gemini", KeySetting: "GEMINI_API_KEY",
			LimiterKey: "gemini-api", ModelPrefix: "gemini",
		}),
	}
}

func newSpec(cfg config.ProviderConfig, spec ProviderSpec) ProviderSpec {
	spec.APIKey = cfg.APIKey
	spec.BaseURL = cfg.BaseURL
	spec.DefaultModel = cfg.Model
	spec.FallbackModels = cfg.FallbackModels
	spec.Temperature = 0.7
	if cfg.JSONMode != nil {
		spec.JSONMode = *cfg.JSONMode
	}
	return spec
}

// NewClient builds a go-openai client pointed at the vendor's endpoint.
func NewClient(spec ProviderSpec) *openai.Client {
	clientCfg := openai.DefaultConfig(spec.APIKey)
	if spec.BaseURL != "" {
		clientCfg.BaseURL = spec.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
