package factory

import (
	"fmt"

	"sales-assistant-be/pkg/llm"
	"sales-assistant-be/pkg/llm/gemini"
	"sales-assistant-be/pkg/llm/huggingface"
	"sales-assistant-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, geminiKey, huggingFaceKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiKey, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(huggingFaceKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
