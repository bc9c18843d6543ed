package util

import "strings"

// LookupPath resolves a dot-separated path (e.g. "output.success") against
// nested map[string]any values. The boolean reports whether every segment
// resolved; a missing segment yields (nil, false).
func LookupPath(root map[string]any, path string) (any, bool) {
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// ReferenceKind classifies a deferred input reference.
type ReferenceKind int

const (
	// RefNone marks a value that is not a reference and passes through unchanged.
	RefNone ReferenceKind = iota
	// RefContext marks a "${context.<key>}" reference into the workflow context.
	RefContext
	// RefStep marks a "${step.<id>.<key>}" reference into a prior step's output.
	RefStep
)

// Reference describes a deferred input value recognized by ParseReference.
type Reference struct {
	Kind   ReferenceKind
	StepID string // set for RefStep
	Key    string // context key or step output key
}

// ParseReference recognizes input values of the exact form "${context.<key>}"
// or "${step.<id>.<key>}". Any other value (including strings merely
// containing such a substring) yields RefNone.
func ParseReference(v any) Reference {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return Reference{}
	}
	body := s[2 : len(s)-1]
	if key, ok := strings.CutPrefix(body, "context."); ok && key != "" {
		return Reference{Kind: RefContext, Key: key}
	}
	if rest, ok := strings.CutPrefix(body, "step."); ok {
		// The step id may not contain dots; the remainder is the output key.
		stepID, key, found := strings.Cut(rest, ".")
		if found && stepID != "" && key != "" {
			return Reference{Kind: RefStep, StepID: stepID, Key: key}
		}
	}
	return Reference{}
}
