// Package completion defines the external text-generation collaborator used
// for planning. Providers adapt their native APIs behind the small Service
// interface; MockService offers deterministic canned completions for tests
// and examples.
package completion

import (
	"context"
	"fmt"
	"strings"
)

// Format selects the response shape requested from the provider.
type Format string

const (
	// FormatText requests free-form text output.
	FormatText Format = "text"
	// FormatJSON requests output that parses as a single JSON object.
	// Callers treat a non-JSON response as a failure.
	FormatJSON Format = "json_object"
)

// Request captures the normalized completion input. Zero Temperature and
// MaxTokens defer to provider defaults.
type Request struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
	Format      Format  `json:"response_format,omitempty"`
}

// Service is the minimal interface required to drive plan generation.
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// MockService is a lightweight in-memory Service useful for tests & examples.
// Responses are matched by prompt substring in registration order; unmatched
// prompts yield the fallback response.
type MockService struct {
	keys      []string
	responses map[string]string
	fallback  string
	calls     int
}

// NewMockService constructs a MockService with an optional fallback response.
func NewMockService(fallback string) *MockService {
	return &MockService{responses: make(map[string]string), fallback: fallback}
}

// AddResponse registers a canned completion returned when the prompt contains
// the given substring.
func (m *MockService) AddResponse(promptContains, response string) {
	if _, exists := m.responses[promptContains]; !exists {
		m.keys = append(m.keys, promptContains)
	}
	m.responses[promptContains] = response
}

// Calls returns how many completions have been served.
func (m *MockService) Calls() int { return m.calls }

// Complete implements Service.
func (m *MockService) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.calls++
	for _, key := range m.keys {
		if strings.Contains(req.Prompt, key) {
			return m.responses[key], nil
		}
	}
	if m.fallback == "" {
		return "", fmt.Errorf("no canned response for prompt")
	}
	return m.fallback, nil
}
