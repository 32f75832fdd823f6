// Package response answers questions about the session's indexed document.
package response

import (
	"context"
	"strings"
	"time"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/prompt"
	"legal-analyzer-be/pkg/rag/index"
)

const (
	MsgNoDocument   = "No document has been processed for this session."
	MsgAnswerFailed = "I encountered an error while processing your legal query. Please try again."
)

// Retriever returns the chunks of h most relevant to question.
type Retriever interface {
	Retrieve(ctx context.Context, h index.Handle, question string, k int) ([]index.Match, error)
}

type Config struct {
	TopK        int
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{TopK: 3, Temperature: 0.7, Timeout: 60 * time.Second}
}

// Answerer grounds chat replies on retrieved document chunks.
type Answerer struct {
	cfg       Config
	llm       llm.LLMProvider
	retriever Retriever
	prompts   *prompt.Set
	logger    logger.ILogger
}

func NewAnswerer(cfg Config, provider llm.LLMProvider, retriever Retriever, prompts *prompt.Set, log logger.ILogger) *Answerer {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	return &Answerer{cfg: cfg, llm: provider, retriever: retriever, prompts: prompts, logger: log}
}

// Answer returns the reply and the updated history. On failure the reply is
// an apology and history comes back unchanged.
func (a *Answerer) Answer(ctx context.Context, question string, h index.Handle, history []llm.Message) (string, []llm.Message) {
	if h == nil {
		return MsgNoDocument, history
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	matches, err := a.retriever.Retrieve(ctx, h, question, a.cfg.TopK)
	if err != nil {
		a.logger.Error("answerer", "Retrieval failed", map[string]interface{}{"error": err})
		return MsgAnswerFailed, history
	}

	system, err := a.prompts.Render(prompt.Answer, map[string]any{
		"refusal": prompt.Refusal,
		"context": joinMatches(matches),
	})
	if err != nil {
		a.logger.Error("answerer", "Prompt render failed", map[string]interface{}{"error": err})
		return MsgAnswerFailed, history
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	reply, err := a.llm.Chat(ctx, messages, llm.WithTemperature(a.cfg.Temperature))
	if err != nil {
		a.logger.Error("answerer", "Error generating response", map[string]interface{}{"error": err})
		return MsgAnswerFailed, history
	}

	a.logger.Debug("answerer", "Answer generated", map[string]interface{}{
		"chunks":  len(matches),
		"history": len(history),
	})

	updated := make([]llm.Message, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
	return reply, updated
}

func joinMatches(matches []index.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n\n")
}
