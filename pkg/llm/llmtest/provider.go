// Package llmtest provides a scripted LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"legal-analyzer-be/pkg/llm"
)

// Reply is one scripted answer. Block waits until the context is done,
// which lets tests drive timeouts.
type Reply struct {
	Content string
	Err     error
	Block   bool
}

// Provider replays Replies in order and repeats the last one.
type Provider struct {
	mu      sync.Mutex
	replies []Reply
	calls   [][]llm.Message
	options []*llm.Options
}

var _ llm.LLMProvider = &Provider{}

func New(replies ...Reply) *Provider {
	return &Provider{replies: replies}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	idx := len(p.calls)
	p.calls = append(p.calls, append([]llm.Message(nil), history...))
	p.options = append(p.options, llm.NewOptions(llm.Options{}, opts...))
	var r Reply
	if len(p.replies) > 0 {
		if idx >= len(p.replies) {
			idx = len(p.replies) - 1
		}
		r = p.replies[idx]
	}
	p.mu.Unlock()

	if r.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.Content, r.Err
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Calls returns how many times the provider was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Messages returns the history sent on call i.
func (p *Provider) Messages(i int) []llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[i]
}

// Options returns the resolved options of call i.
func (p *Provider) Options(i int) *llm.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.options[i]
}
