package legal

import (
	"context"
	"errors"
	"strings"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/prompt"
)

var decisionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"decision": map[string]any{
			"type":        "string",
			"enum":        []any{string(Accept), string(Reject)},
			"description": "Decision to accept or reject the document either 'accept' or 'reject'",
		},
	},
	"required":             []any{"decision"},
	"additionalProperties": false,
}

// Validator decides whether a text is a legal document. It fails closed.
type Validator struct {
	cfg     Config
	llm     llm.LLMProvider
	prompts *prompt.Set
	logger  logger.ILogger
}

func NewValidator(cfg Config, provider llm.LLMProvider, prompts *prompt.Set, log logger.ILogger) *Validator {
	return &Validator{cfg: cfg, llm: provider, prompts: prompts, logger: log}
}

// Classify returns Accept only when the reasoning service positively says so.
func (v *Validator) Classify(ctx context.Context, text string) Decision {
	if len([]rune(strings.TrimSpace(text))) < v.cfg.MinTextLength {
		v.logger.Info("validator", "Document too short, rejecting", map[string]interface{}{"length": len(text)})
		return Reject
	}

	msg, err := v.prompts.Render(prompt.Validator, map[string]any{"text": prefix(text, v.cfg.ValidatorPrefix)})
	if err != nil {
		v.logger.Error("validator", "Prompt render failed", map[string]interface{}{"error": err})
		return Reject
	}

	ctx, cancel := context.WithTimeout(ctx, v.cfg.ValidateTimeout)
	defer cancel()

	var out struct {
		Decision Decision `json:"decision"`
	}
	err = llm.GenerateStructured(ctx, v.llm, []llm.Message{{Role: llm.RoleUser, Content: msg}},
		"validator_response", decisionSchema, &out, llm.WithTemperature(v.cfg.Temperature))
	switch {
	case err == nil:
		v.logger.Info("validator", "Validation result", map[string]interface{}{"decision": out.Decision})
		if out.Decision == Accept {
			return Accept
		}
		return Reject
	case isTimeout(ctx, err):
		v.logger.Error("validator", "Document validation timed out", map[string]interface{}{"timeout": v.cfg.ValidateTimeout.String()})
	case errors.Is(err, llm.ErrNoStructuredOutput):
		v.logger.Warn("validator", "Structured output missing or invalid, defaulting to reject", map[string]interface{}{"error": err})
	default:
		v.logger.Error("validator", "Error in document validation", map[string]interface{}{"error": err})
	}
	return Reject
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
