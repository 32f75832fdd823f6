package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoStructuredOutput is returned when the model reply is empty, null or
// does not satisfy the requested schema.
var ErrNoStructuredOutput = errors.New("no structured output")

// GenerateStructured sends messages with a response schema and decodes the
// validated reply into out.
func GenerateStructured(ctx context.Context, p LLMProvider, messages []Message, name string, schema map[string]any, out any, opts ...Option) error {
	opts = append(opts, WithResponseSchema(name, schema))
	raw, err := p.Chat(ctx, messages, opts...)
	if err != nil {
		return err
	}

	data := []byte(stripCodeFence(raw))
	if len(data) == 0 || string(data) == "null" {
		return ErrNoStructuredOutput
	}
	if err := ValidateJSONAgainstSchema(schema, data); err != nil {
		return fmt.Errorf("%w: %v", ErrNoStructuredOutput, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrNoStructuredOutput, err)
	}
	return nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Some models wrap JSON in ```json fences even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
