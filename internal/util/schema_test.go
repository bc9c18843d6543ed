package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema(t *testing.T) {
	assert.NoError(t, ValidateSchema(nil))

	valid := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{"type": "string"},
		},
		"required": []string{"topic"},
	}
	assert.NoError(t, ValidateSchema(valid))

	// JSON-decoded schemas carry []any required lists.
	decoded := map[string]any{
		"type":       "object",
		"properties": map[string]any{"topic": map[string]any{"type": "string"}},
		"required":   []any{"topic"},
	}
	assert.NoError(t, ValidateSchema(decoded))

	err := ValidateSchema(map[string]any{"type": "array"})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)

	err = ValidateSchema(map[string]any{"type": "object", "properties": "nope"})
	assert.Error(t, err)

	err = ValidateSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
		"required":   []string{"b"},
	})
	assert.Error(t, err)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
			"ratio": map[string]any{"type": "number"},
		},
		"required": []string{"name"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"name": "x", "count": 2}, schema))

	// JSON-decoded integers arrive as float64.
	assert.NoError(t, ValidateParameters(map[string]any{"name": "x", "count": 2.0}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"name": "x", "count": 2.5}, schema))

	assert.Error(t, ValidateParameters(map[string]any{"count": 2}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"name": 42}, schema))

	// Unknown fields pass through.
	assert.NoError(t, ValidateParameters(map[string]any{"name": "x", "extra": true}, schema))
}

func TestCreateSchema(t *testing.T) {
	type input struct {
		Topic    string  `json:"topic" description:"what to research"`
		Depth    int     `json:"depth,omitempty"`
		Score    float64 `json:"score"`
		Internal string  `json:"-"`
		hidden   bool
	}
	_ = input{hidden: false}

	schema := CreateSchema(input{})
	assert.Equal(t, "object", schema["type"])

	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, properties, 3)

	topic := properties["topic"].(map[string]any)
	assert.Equal(t, "string", topic["type"])
	assert.Equal(t, "what to research", topic["description"])

	assert.Equal(t, map[string]any{"type": "integer"}, properties["depth"])
	assert.Equal(t, map[string]any{"type": "number"}, properties["score"])

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"topic", "score"}, required)

	// Pointer input resolves to the element type.
	assert.Equal(t, schema, CreateSchema(&input{}))
}
