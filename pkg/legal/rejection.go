package legal

import (
	"context"
	"errors"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/prompt"
)

const (
	ReasonNotLegal      = "This document was rejected because it does not appear to be a legal document."
	ReasonDuringProcess = "Document was rejected during validation process"
)

var rejectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"reason": map[string]any{"type": "string", "minLength": 1, "description": "Cause for rejection"},
	},
	"required":             []any{"reason"},
	"additionalProperties": false,
}

// RejectionReasoner explains to the user why a document was turned away.
type RejectionReasoner struct {
	cfg     Config
	llm     llm.LLMProvider
	prompts *prompt.Set
	logger  logger.ILogger
}

func NewRejectionReasoner(cfg Config, provider llm.LLMProvider, prompts *prompt.Set, log logger.ILogger) *RejectionReasoner {
	return &RejectionReasoner{cfg: cfg, llm: provider, prompts: prompts, logger: log}
}

// Explain never fails; it falls back to a canned reason.
func (r *RejectionReasoner) Explain(ctx context.Context, text string) *RejectionResult {
	msg, err := r.prompts.Render(prompt.Rejection, map[string]any{
		"text":  prefix(text, r.cfg.RejectionPrefix),
		"limit": r.cfg.RejectionPrefix,
	})
	if err != nil {
		r.logger.Error("rejection", "Prompt render failed", map[string]interface{}{"error": err})
		return &RejectionResult{Reason: ReasonDuringProcess}
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RejectTimeout)
	defer cancel()

	var out RejectionResult
	err = llm.GenerateStructured(ctx, r.llm, []llm.Message{{Role: llm.RoleUser, Content: msg}},
		"rejection_response", rejectionSchema, &out, llm.WithTemperature(r.cfg.Temperature))
	switch {
	case err == nil:
		return &out
	case errors.Is(err, llm.ErrNoStructuredOutput):
		r.logger.Warn("rejection", "No rejection reason returned, using default", map[string]interface{}{"error": err})
		return &RejectionResult{Reason: ReasonNotLegal}
	default:
		r.logger.Error("rejection", "Rejection reason generation failed", map[string]interface{}{"error": err})
		return &RejectionResult{Reason: ReasonDuringProcess}
	}
}
