package legal

import (
	"context"
	"errors"
	"fmt"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/prompt"
)

const (
	TruncationMarker = "\n\n[Document truncated for analysis]"
	UnknownType      = "Unknown"
)

var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"document_type": map[string]any{"type": "string", "minLength": 1, "description": "Type of legal document"},
		"summary":       map[string]any{"type": "string", "minLength": 1, "description": "detailed summary of the document"},
		"important_clauses": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"minItems":    3,
			"maxItems":    5,
			"description": "3-5 important clauses explained in simple terms",
		},
	},
	"required":             []any{"document_type", "summary", "important_clauses"},
	"additionalProperties": false,
}

// Analyzer produces the structured analysis of an accepted document.
type Analyzer struct {
	cfg     Config
	llm     llm.LLMProvider
	prompts *prompt.Set
	logger  logger.ILogger
}

func NewAnalyzer(cfg Config, provider llm.LLMProvider, prompts *prompt.Set, log logger.ILogger) *Analyzer {
	return &Analyzer{cfg: cfg, llm: provider, prompts: prompts, logger: log}
}

// Analyze always returns a usable result; failures yield an "Unknown" result
// whose summary and clauses describe what went wrong.
func (a *Analyzer) Analyze(ctx context.Context, text string) *AnalysisResult {
	if n := len([]rune(text)); n > a.cfg.AnalyzerMaxChars {
		a.logger.Info("analyzer", "Document too long, truncating", map[string]interface{}{"length": n, "max": a.cfg.AnalyzerMaxChars})
		text = prefix(text, a.cfg.AnalyzerMaxChars) + TruncationMarker
	}

	msg, err := a.prompts.Render(prompt.Analyzer, map[string]any{"text": text})
	if err != nil {
		return analysisFailed(err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.AnalyzeTimeout)
	defer cancel()

	var out AnalysisResult
	err = llm.GenerateStructured(ctx, a.llm, []llm.Message{{Role: llm.RoleUser, Content: msg}},
		"analyzer_response", analysisSchema, &out, llm.WithTemperature(a.cfg.Temperature))
	switch {
	case err == nil:
		a.logger.Info("analyzer", "Analysis completed", map[string]interface{}{"document_type": out.DocumentType})
		return &out
	case isTimeout(ctx, err):
		a.logger.Error("analyzer", "Document analysis timed out", map[string]interface{}{"timeout": a.cfg.AnalyzeTimeout.String()})
		return analysisTimedOut()
	case errors.Is(err, llm.ErrNoStructuredOutput):
		a.logger.Warn("analyzer", "Structured output missing or invalid, using fallback", map[string]interface{}{"error": err})
		return analysisMissing()
	default:
		a.logger.Error("analyzer", "Analysis failed", map[string]interface{}{"error": err})
		return analysisFailed(err)
	}
}

func analysisMissing() *AnalysisResult {
	return &AnalysisResult{
		DocumentType: UnknownType,
		Summary:      "Analysis could not be completed due to structured output failure.",
		ImportantClauses: []string{
			"No structured response received from analyzer",
			"Please try uploading the document again",
			"If issue persists, contact support",
		},
	}
}

func analysisTimedOut() *AnalysisResult {
	return &AnalysisResult{
		DocumentType: UnknownType,
		Summary:      "Document analysis timed out. Please try with a smaller document.",
		ImportantClauses: []string{
			"Analysis timed out due to document complexity or size",
			"Try uploading a smaller document",
			"Consider breaking large documents into sections",
		},
	}
}

func analysisFailed(err error) *AnalysisResult {
	return &AnalysisResult{
		DocumentType: UnknownType,
		Summary:      fmt.Sprintf("Document analysis failed: %v. Please try again or consult a legal professional.", err),
		ImportantClauses: []string{
			"Analysis encountered an error",
			"Document may require manual review",
			"Consider consulting a legal professional",
		},
	}
}
