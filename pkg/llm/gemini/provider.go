package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legal-analyzer-be/pkg/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider talks to the generateContent REST endpoint.
type GeminiProvider struct {
	ApiKey      string
	BaseURL     string
	ModelName   string
	Temperature float64
	Client      *http.Client
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string, temperature float64) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		ApiKey:      apiKey,
		BaseURL:     defaultBaseURL,
		ModelName:   modelName,
		Temperature: temperature,
		Client:      &http.Client{Timeout: 120 * time.Second},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature        float64        `json:"temperature"`
	MaxOutputTokens    int            `json:"maxOutputTokens,omitempty"`
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseJSONSchema map[string]any `json:"responseJsonSchema,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.NewOptions(llm.Options{Temperature: p.Temperature, Model: p.ModelName}, opts...)

	reqBody := generateRequest{
		GenerationConfig: generationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
	}
	if options.ResponseSchema != nil {
		reqBody.GenerationConfig.ResponseMimeType = "application/json"
		reqBody.GenerationConfig.ResponseJSONSchema = options.ResponseSchema
	}

	// Gemini takes system prompts separately and calls the assistant "model".
	var system []string
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			reqBody.Contents = append(reqBody.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			reqBody.Contents = append(reqBody.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: strings.Join(system, "\n\n")}}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.BaseURL, options.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s", genResp.PromptFeedback.BlockReason)
	}
	if len(genResp.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, pt := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	return sb.String(), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
