package util

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError reports a schema or parameter validation failure with the
// offending field and value.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateSchema structurally checks a capability input/output schema. A nil
// schema is valid (unconstrained). Otherwise the schema must declare type
// "object", properties must be a map of per-field schemas and required must
// list known property names.
func ValidateSchema(schema map[string]any) error {
	if schema == nil {
		return nil
	}
	if t, ok := schema["type"].(string); ok && t != "object" {
		return &ValidationError{Field: "type", Value: t, Message: "capability schemas must describe objects"}
	}
	properties, _ := schema["properties"].(map[string]any)
	if raw, present := schema["properties"]; present && properties == nil {
		return &ValidationError{Field: "properties", Value: raw, Message: "properties must be an object"}
	}
	for name, prop := range properties {
		if _, ok := prop.(map[string]any); !ok {
			return &ValidationError{Field: name, Value: prop, Message: "property schema must be an object"}
		}
	}
	for _, req := range requiredFields(schema) {
		if _, ok := properties[req]; !ok {
			return &ValidationError{Field: req, Message: "required field is not declared in properties"}
		}
	}
	return nil
}

// ValidateParameters validates a parameter map against a schema produced by
// CreateSchema or declared by hand. Required fields must be present; typed
// fields must match their declared JSON type. Unknown fields are allowed.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, req := range requiredFields(schema) {
		if _, exists := params[req]; !exists {
			return &ValidationError{Field: req, Message: "required field is missing"}
		}
	}
	properties, _ := schema["properties"].(map[string]any)
	for name, value := range params {
		propMap, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		expectedType, _ := propMap["type"].(string)
		if !matchesJSONType(value, expectedType) {
			return &ValidationError{
				Field:   name,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expectedType, value),
			}
		}
	}
	return nil
}

// CreateSchema derives a minimal JSON-Schema-like map from a Go struct using
// reflection. Fields without omitempty are marked required; "description"
// struct tags are carried into the property schema.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	properties := make(map[string]any)
	var required []string
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			jsonTag := field.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			name := field.Name
			tagParts := strings.Split(jsonTag, ",")
			if tagParts[0] != "" {
				name = tagParts[0]
			}
			prop := map[string]any{"type": jsonType(field.Type)}
			if desc := field.Tag.Get("description"); desc != "" {
				prop["description"] = desc
			}
			properties[name] = prop
			if !hasOmitEmpty(tagParts) && field.Type.Kind() != reflect.Ptr {
				required = append(required, name)
			}
		}
	}
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// requiredFields extracts the required field names tolerating both []string
// (hand-written schemas) and []any (JSON-decoded schemas).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		fields := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

// jsonType maps a Go type onto its JSON schema type name.
func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}

func hasOmitEmpty(tagParts []string) bool {
	for _, part := range tagParts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

// matchesJSONType checks a runtime value against a JSON schema type name.
// nil is accepted for any type; JSON-decoded numbers arrive as float64 and
// are accepted as integers when they carry no fractional part.
func matchesJSONType(value any, expectedType string) bool {
	if value == nil {
		return true
	}
	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
