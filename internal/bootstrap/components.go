package bootstrap

import (
	"fmt"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/embedding"
	"legal-analyzer-be/pkg/extract"
	"legal-analyzer-be/pkg/legal"
	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/llm/factory"
	"legal-analyzer-be/pkg/prompt"
	"legal-analyzer-be/pkg/workflow/document"
)

// Components are the reasoning pieces shared by the HTTP server and the CLI.
type Components struct {
	LLM       llm.LLMProvider
	Prompts   *prompt.Set
	Extractor *extract.Extractor
	Validator *legal.Validator
	Analyzer  *legal.Analyzer
	Rejecter  *legal.RejectionReasoner
	Document  *document.Workflow
}

func NewComponents(cfg *config.Config, log logger.ILogger) (*Components, error) {
	llmProvider, err := NewLLMProvider(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("bootstrap", "Using LLM provider", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	prompts, err := prompt.NewSet(cfg.App.PromptDir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	legalCfg := LegalConfig(cfg)
	c := &Components{
		LLM:     llmProvider,
		Prompts: prompts,
		Extractor: extract.NewExtractor(extract.Config{
			MaxFileSizeMB: cfg.Limits.MaxFileSizeMB,
			PDFTimeout:    cfg.Limits.PDFTimeout,
			DOCXTimeout:   cfg.Limits.DOCXTimeout,
		}, log),
		Validator: legal.NewValidator(legalCfg, llmProvider, prompts, log),
		Analyzer:  legal.NewAnalyzer(legalCfg, llmProvider, prompts, log),
		Rejecter:  legal.NewRejectionReasoner(legalCfg, llmProvider, prompts, log),
	}
	c.Document = document.New(c.Extractor, c.Validator, c.Analyzer, c.Rejecter, log)
	return c, nil
}

func LegalConfig(cfg *config.Config) legal.Config {
	lc := legal.DefaultConfig()
	lc.ValidateTimeout = cfg.Ai.ValidateTimeout
	lc.AnalyzeTimeout = cfg.Ai.AnalyzeTimeout
	lc.RejectTimeout = cfg.Ai.RejectTimeout
	lc.Temperature = cfg.Ai.Temperature
	return lc
}

func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	key := ""
	switch cfg.Ai.LLMProvider {
	case "gemini":
		key = cfg.Keys.GoogleGemini
	case "openai":
		key = cfg.Keys.OpenAI
	}
	p, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     cfg.Ai.LLMBaseURL,
		APIKey:      key,
		Temperature: cfg.Ai.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return p, nil
}

func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	key := ""
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		key = cfg.Keys.OpenAI
	case "gemini":
		key = cfg.Keys.GoogleGemini
	case "jina":
		key = cfg.Keys.Jina
	}
	p, err := embedding.NewEmbeddingProvider(embedding.Settings{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  cfg.Ai.EmbeddingBaseURL,
		APIKey:   key,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize embedding provider: %w", err)
	}
	return p, nil
}
