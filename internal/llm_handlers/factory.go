package llmHandlers

import (
	"context"
	"fmt"
)

type Provider string

const (
	ProviderNone      Provider = ""
	ProviderLangChain Provider = "langchain" // openai / groq / llama etc.
	ProviderGemini    Provider = "gemini"
)

type Config struct {
	Provider Provider

	// LangChain config
	LangChain LangChainConfig

	// Gemini config
	Gemini GeminiConfig
}

// NewLLMClient builds the configured provider. ProviderNone returns a nil
// client and no error.
func NewLLMClient(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderLangChain:
		if cfg.LangChain.Model == "" {
			cfg.LangChain.Model = "gpt-4.1"
		}
		return NewLangChainClient(cfg.LangChain)
	case ProviderGemini:
		return NewGenaiGeminiClient(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unknown provider %s", cfg.Provider)
	}
}
