package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type GeminiProvider struct {
	ApiKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestPart `json:"parts"`
}

type geminiEmbeddingRequest struct {
	Model    string               `json:"model"`
	Content  geminiRequestContent `json:"content"`
	TaskType string               `json:"task_type,omitempty"`
}

func NewGeminiProvider(apiKey, model string) EmbeddingProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiProvider{
		ApiKey:  apiKey,
		Model:   model,
		BaseURL: "https://generativelanguage.googleapis.com/v1",
		Client:  &http.Client{},
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	geminiReq := geminiEmbeddingRequest{
		Model:    p.Model,
		Content:  geminiRequestContent{Parts: []geminiRequestPart{{Text: text}}},
		TaskType: taskType,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, p.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var resEmbedding EmbeddingResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}
	return &resEmbedding, nil
}
