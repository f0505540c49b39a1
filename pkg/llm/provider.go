// Package llm defines the provider interface for text generation and
// the factory that builds the configured provider.
package llm

import "context"

// Provider is the interface enrichment talks to.
type Provider interface {
	// GenerateText sends a prompt for the given intent and returns the
	// text response.
	GenerateText(ctx context.Context, intent, prompt string) (string, error)

	// GenerateJSON sends a prompt and unmarshals the response into target.
	GenerateJSON(ctx context.Context, intent, prompt string, target any) error

	// HealthCheck verifies that the provider is configured and reachable.
	HealthCheck(ctx context.Context) error

	// HasProfile reports whether a dedicated model is configured for
	// the intent.
	HasProfile(intent string) bool
}
