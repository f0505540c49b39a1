// Package mock implements an offline llm.Provider for tests and
// development without an API key.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Provider returns canned responses and records the prompts it saw.
type Provider struct {
	mu       sync.Mutex
	Text     string
	JSON     string
	Err      error
	Prompts  []string
	Profiles map[string]string
}

// New creates a mock provider with a default text response.
func New() *Provider {
	return &Provider{Text: "mock response"}
}

// GenerateText returns the canned text response.
func (p *Provider) GenerateText(ctx context.Context, intent, prompt string) (string, error) {
	p.mu.Lock()
	p.Prompts = append(p.Prompts, prompt)
	p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	return p.Text, nil
}

// GenerateJSON unmarshals the canned JSON response into target.
func (p *Provider) GenerateJSON(ctx context.Context, intent, prompt string, target any) error {
	p.mu.Lock()
	p.Prompts = append(p.Prompts, prompt)
	p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.JSON == "" {
		return fmt.Errorf("mock provider has no JSON response configured")
	}
	return json.Unmarshal([]byte(p.JSON), target)
}

// HealthCheck always succeeds.
func (p *Provider) HealthCheck(ctx context.Context) error {
	return p.Err
}

// HasProfile reports whether a profile was configured on the mock.
func (p *Provider) HasProfile(intent string) bool {
	_, ok := p.Profiles[intent]
	return ok
}
