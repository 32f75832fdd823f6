package embedding

import "fmt"

// Settings selects one embedding backend.
type Settings struct {
	Provider string // "openai", "gemini", "ollama", "jina"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewEmbeddingProvider(s Settings) (EmbeddingProvider, error) {
	switch s.Provider {
	case "openai", "":
		return NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model), nil
	case "gemini":
		return NewGeminiProvider(s.APIKey, s.Model), nil
	case "ollama":
		return NewOllamaProvider(s.BaseURL, s.Model), nil
	case "jina":
		return NewJinaProvider(s.APIKey, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", s.Provider)
	}
}
