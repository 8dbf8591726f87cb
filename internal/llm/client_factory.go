package llm

import (
	"context"
	"fmt"

	"focusbuddy/internal/config"
)

// Provider identifies a supported LLM provider.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// NewClientFromConfig creates an LLM client from the loaded config.
// Priority: explicit provider setting, then OpenAI key, then Gemini key.
func NewClientFromConfig(ctx context.Context, cfg config.Config) (Client, error) {
	switch Provider(cfg.Provider) {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("provider is openai but no API key configured")
		}
		return newOpenAI(cfg), nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("provider is gemini but no API key configured")
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "":
		// Auto-detect from available keys.
		if cfg.OpenAIAPIKey != "" {
			return newOpenAI(cfg), nil
		}
		if cfg.GeminiAPIKey != "" {
			return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
		}
		return nil, fmt.Errorf("no API key found; set openai_api_key or gemini_api_key in config.json, or OPENAI_API_KEY / GEMINI_API_KEY in the environment")
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func newOpenAI(cfg config.Config) *OpenAIClient {
	c := DefaultOpenAIConfig(cfg.OpenAIAPIKey)
	if cfg.Model != "" {
		c.Model = cfg.Model
	}
	return NewOpenAIClientWithConfig(c)
}
