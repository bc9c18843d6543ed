package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupPath(t *testing.T) {
	root := map[string]any{
		"success": true,
		"output": map[string]any{
			"summary": "done",
			"nested":  map[string]any{"depth": 3},
		},
	}

	value, ok := LookupPath(root, "success")
	assert.True(t, ok)
	assert.Equal(t, true, value)

	value, ok = LookupPath(root, "output.summary")
	assert.True(t, ok)
	assert.Equal(t, "done", value)

	value, ok = LookupPath(root, "output.nested.depth")
	assert.True(t, ok)
	assert.Equal(t, 3, value)

	_, ok = LookupPath(root, "output.missing")
	assert.False(t, ok)

	// Descending through a non-map value fails.
	_, ok = LookupPath(root, "success.x")
	assert.False(t, ok)

	_, ok = LookupPath(nil, "anything")
	assert.False(t, ok)
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Reference
	}{
		{"context ref", "${context.topic}", Reference{Kind: RefContext, Key: "topic"}},
		{"step ref", "${step.s1.summary}", Reference{Kind: RefStep, StepID: "s1", Key: "summary"}},
		{"step key with dots", "${step.s1.meta.lang}", Reference{Kind: RefStep, StepID: "s1", Key: "meta.lang"}},
		{"plain string", "hello", Reference{}},
		{"non-string", 42, Reference{}},
		{"embedded ref is not a ref", "prefix ${context.topic}", Reference{}},
		{"step without key", "${step.s1}", Reference{}},
		{"empty context key", "${context.}", Reference{}},
		{"unknown namespace", "${result.s1.x}", Reference{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReference(tt.value))
		})
	}
}
