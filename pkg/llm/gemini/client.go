// Package gemini implements the LLM provider backed by Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"periplo/pkg/config"
	"periplo/pkg/llm"
	"periplo/pkg/tracker"
)

// Client implements llm.Provider for Google Gemini.
type Client struct {
	genaiClient *genai.Client
	apiKey      string
	modelName   string
	profiles    map[string]string // intent -> model name
	tracker     *tracker.Tracker

	mu sync.RWMutex
}

// NewClient creates a Gemini client from configuration.
func NewClient(cfg config.LLMConfig, t *tracker.Tracker) (*Client, error) {
	c := &Client{tracker: t}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings.
func (c *Client) Configure(cfg config.LLMConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = cfg.Key
	c.modelName = cfg.Model
	c.profiles = cfg.Profiles

	if c.modelName == "" {
		c.modelName = "gemini-2.0-flash"
	}
	if c.apiKey == "" {
		c.genaiClient = nil
		return nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client

	// Lazy validation: a flaky API at startup must not block serving,
	// invalid keys surface on the first generation call.
	if err := c.validateModel(context.Background()); err != nil {
		slog.Warn("Gemini model validation failed (proceeding anyway)", "error", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genaiClient = nil
}

// GenerateText sends a prompt and returns the text response.
func (c *Client) GenerateText(ctx context.Context, intent, prompt string) (string, error) {
	c.mu.RLock()
	client := c.genaiClient
	c.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("gemini client not configured")
	}

	modelName := c.resolveModel(intent)
	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{})
	if err != nil {
		c.trackFailure()
		return "", fmt.Errorf("generate text error: %w", err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.trackFailure()
		return "", err
	}
	c.trackSuccess()
	return text, nil
}

// GenerateJSON sends a prompt in JSON mode and unmarshals the response.
func (c *Client) GenerateJSON(ctx context.Context, intent, prompt string, target any) error {
	c.mu.RLock()
	client := c.genaiClient
	c.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("gemini client not configured")
	}

	modelName := c.resolveModel(intent)
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		c.trackFailure()
		return fmt.Errorf("generate json error: %w", err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.trackFailure()
		return err
	}

	cleaned := llm.CleanJSONBlock(text)
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		c.trackFailure()
		return fmt.Errorf("failed to unmarshal JSON response: %w. Response: %s", err, cleaned)
	}
	c.trackSuccess()
	return nil
}

// HealthCheck verifies the configured model is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	client := c.genaiClient
	name := c.modelName
	c.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("gemini client not configured (missing API key)")
	}
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}
	if _, err := client.Models.Get(ctx, name, nil); err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// HasProfile reports whether a dedicated model is configured for the intent.
func (c *Client) HasProfile(intent string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	model, ok := c.profiles[intent]
	return ok && model != ""
}

// resolveModel returns the model for the intent, falling back to the default.
func (c *Client) resolveModel(intent string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if model, ok := c.profiles[intent]; ok && model != "" {
		return model
	}
	return c.modelName
}

func (c *Client) trackSuccess() {
	if c.tracker != nil {
		c.tracker.TrackAPISuccess("gemini")
	}
}

func (c *Client) trackFailure() {
	if c.tracker != nil {
		c.tracker.TrackAPIFailure("gemini")
	}
}

func getResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// validateModel checks the configured model against the key, listing
// alternatives when it is missing.
func (c *Client) validateModel(ctx context.Context) error {
	name := c.modelName
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	_, err := c.genaiClient.Models.Get(ctx, name, nil)
	if err == nil {
		slog.Debug("Gemini model validation success", "model", c.modelName)
		return nil
	}

	slog.Warn("Gemini model validation failed, fetching available models", "model", c.modelName, "error", err)

	iter, listErr := c.genaiClient.Models.List(ctx, nil)
	if listErr != nil {
		slog.Warn("Failed to list models for recovery", "error", listErr)
		return nil
	}

	var available []string
	for {
		resp, nextErr := iter.Next(ctx)
		if nextErr == iterator.Done {
			break
		}
		if nextErr != nil {
			break
		}
		if strings.Contains(strings.ToLower(resp.Name), "gemini") {
			available = append(available, resp.Name)
		}
	}

	slog.Error("Configured model not found", "configured", c.modelName, "available", strings.Join(available, ", "))
	return nil
}
