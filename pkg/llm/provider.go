package llm

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature    float64
	MaxTokens      int
	Model          string         // Override default model
	ResponseSchema map[string]any // JSON schema the reply must satisfy
	SchemaName     string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithResponseSchema asks the provider for a JSON reply matching schema.
func WithResponseSchema(name string, schema map[string]any) Option {
	return func(o *Options) {
		o.SchemaName = name
		o.ResponseSchema = schema
	}
}

// NewOptions applies opts over the provider defaults.
func NewOptions(defaults Options, opts ...Option) *Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
