package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider(t *testing.T) {
	p := New()
	p.JSON = `{"description":"a quiet cove"}`

	text, err := p.GenerateText(context.Background(), "enrichment", "describe")
	require.NoError(t, err)
	assert.Equal(t, "mock response", text)

	var out struct {
		Description string `json:"description"`
	}
	require.NoError(t, p.GenerateJSON(context.Background(), "enrichment", "describe", &out))
	assert.Equal(t, "a quiet cove", out.Description)

	assert.Equal(t, []string{"describe", "describe"}, p.Prompts)
	assert.NoError(t, p.HealthCheck(context.Background()))
}

func TestProviderError(t *testing.T) {
	p := New()
	p.Err = assert.AnError

	_, err := p.GenerateText(context.Background(), "enrichment", "x")
	assert.Error(t, err)
	assert.Error(t, p.HealthCheck(context.Background()))
}
