package factory

import (
	"fmt"

	"ai-fitness-be/pkg/llm"
	"ai-fitness-be/pkg/llm/gemini"
	"ai-fitness-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, geminiApiKey string) (llm.Provider, error) {
	switch providerType {
	case "gemini":
		return gemini.NewGeminiProvider(geminiApiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// NewToolProvider returns a provider able to run bound-tool conversations.
// Only backends with native function calling qualify.
func NewToolProvider(providerType, modelName, geminiApiKey string) (llm.ToolProvider, error) {
	switch providerType {
	case "gemini":
		return gemini.NewGeminiProvider(geminiApiKey, modelName), nil
	default:
		return nil, fmt.Errorf("provider %s has no tool-calling support", providerType)
	}
}
