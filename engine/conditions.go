package engine

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/internal/util"
)

// EvaluateConditions reports whether every declared condition holds against
// the execution result (logical AND). No conditions evaluates vacuously true.
func EvaluateConditions(conditions []core.Condition, result *core.ExecutionResult) bool {
	for _, condition := range conditions {
		if !evaluateCondition(condition, result) {
			return false
		}
	}
	return true
}

// evaluateCondition resolves the condition field as a dot path into the
// result document (e.g. "output.success", "confidence") and applies the
// operator. An unknown operator fails the condition.
func evaluateCondition(condition core.Condition, result *core.ExecutionResult) bool {
	value, _ := util.LookupPath(resultDocument(result), condition.Field)

	switch condition.Operator {
	case core.OpEquals:
		return equalValues(value, condition.Value)
	case core.OpNotEquals:
		return !equalValues(value, condition.Value)
	case core.OpContains:
		return containsValue(value, condition.Value)
	case core.OpGreaterThan:
		left, lok := toFloat(value)
		right, rok := toFloat(condition.Value)
		return lok && rok && left > right
	case core.OpLessThan:
		left, lok := toFloat(value)
		right, rok := toFloat(condition.Value)
		return lok && rok && left < right
	default:
		return false
	}
}

// resultDocument exposes the execution result as a navigable map so condition
// paths address it uniformly.
func resultDocument(result *core.ExecutionResult) map[string]any {
	if result == nil {
		return map[string]any{}
	}
	return map[string]any{
		"success":         result.Success,
		"output":          result.Output,
		"error":           result.Error,
		"confidence":      result.Confidence,
		"review_required": result.ReviewRequired,
	}
}

// equalValues compares strictly, normalizing numeric types first so that an
// int produced by an agent equals a float64 decoded from plan JSON.
func equalValues(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// containsValue checks substring containment over string-coerced operands.
func containsValue(haystack, needle any) bool {
	h := coerceString(haystack)
	n := coerceString(needle)
	if n == "" {
		return true
	}
	return strings.Contains(h, n)
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// toFloat coerces numeric values (and numeric strings) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
