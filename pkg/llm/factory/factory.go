package factory

import (
	"fmt"

	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/llm/gemini"
	"legal-analyzer-be/pkg/llm/ollama"
	"legal-analyzer-be/pkg/llm/openai"
)

// Settings selects and configures one LLM backend.
type Settings struct {
	Provider    string // "gemini", "ollama", "openai"
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "gemini", "":
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(s.APIKey, s.Model, s.Temperature), nil
	case "ollama":
		return ollama.NewOllamaProvider(s.BaseURL, s.Model, s.Temperature), nil
	case "openai":
		return openai.NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model, s.Temperature), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
