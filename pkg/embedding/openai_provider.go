package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OpenAIProvider calls an OpenAI-compatible /embeddings endpoint.
// Jina AI exposes the same wire format.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(apiKey, baseURL, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIProvider{apiKey: apiKey, baseURL: baseURL, model: model, client: &http.Client{}}
}

func NewJinaProvider(apiKey, model string) EmbeddingProvider {
	if model == "" {
		model = "jina-embeddings-v2-base-en"
	}
	return NewOpenAIProvider(apiKey, "https://api.jina.ai/v1", model)
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	jsonData, err := json.Marshal(openAIEmbeddingRequest{Model: p.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp openAIEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("embedding api returned error: %s", embResp.Error.Message)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("empty embeddings from %s", p.baseURL)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: embResp.Data[0].Embedding},
	}, nil
}
