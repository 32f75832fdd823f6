package llm_test

import (
	"context"
	"errors"
	"testing"

	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"decision": map[string]any{"type": "string", "enum": []any{"accept", "reject"}},
	},
	"required":             []any{"decision"},
	"additionalProperties": false,
}

type decision struct {
	Decision string `json:"decision"`
}

func TestGenerateStructured(t *testing.T) {
	tests := []struct {
		name    string
		reply   llmtest.Reply
		want    string
		wantErr error
	}{
		{name: "plain json", reply: llmtest.Reply{Content: `{"decision":"accept"}`}, want: "accept"},
		{name: "fenced json", reply: llmtest.Reply{Content: "```json\n{\"decision\":\"reject\"}\n```"}, want: "reject"},
		{name: "empty reply", reply: llmtest.Reply{Content: "  "}, wantErr: llm.ErrNoStructuredOutput},
		{name: "null reply", reply: llmtest.Reply{Content: "null"}, wantErr: llm.ErrNoStructuredOutput},
		{name: "schema violation", reply: llmtest.Reply{Content: `{"decision":"maybe"}`}, wantErr: llm.ErrNoStructuredOutput},
		{name: "not json", reply: llmtest.Reply{Content: "I think it is legal"}, wantErr: llm.ErrNoStructuredOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := llmtest.New(tt.reply)
			var out decision
			err := llm.GenerateStructured(context.Background(), p, []llm.Message{{Role: llm.RoleUser, Content: "classify"}}, "decision", decisionSchema, &out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Decision)
			assert.Equal(t, "decision", p.Options(0).SchemaName)
			assert.NotNil(t, p.Options(0).ResponseSchema)
		})
	}
}

func TestGenerateStructuredProviderError(t *testing.T) {
	boom := errors.New("boom")
	p := llmtest.New(llmtest.Reply{Err: boom})

	var out decision
	err := llm.GenerateStructured(context.Background(), p, nil, "decision", decisionSchema, &out)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, llm.ErrNoStructuredOutput)
}
