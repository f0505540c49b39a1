package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
	}

	cleanup, err := Init(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.FileExists(t, serverLog)
	assert.FileExists(t, requestLog)
	assert.NotNil(t, RequestLogger)
}

func TestInitRotatesExisting(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	cfg := &config.LogConfig{
		Server:   config.LogSettings{Path: serverLog, Level: "INFO"},
		Requests: config.LogSettings{Path: requestLog, Level: "INFO"},
	}

	cleanup, err := Init(cfg)
	require.NoError(t, err)
	cleanup()

	cleanup, err = Init(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.FileExists(t, serverLog+".old")
}

func TestThrottler(t *testing.T) {
	th := NewThrottler()
	now := time.Now()
	th.now = func() time.Time { return now }

	assert.True(t, th.allow("provider failed"))
	assert.False(t, th.allow("provider failed"))
	assert.True(t, th.allow("a different message"))

	// After the window the message passes again.
	now = now.Add(throttleWindow + time.Second)
	assert.True(t, th.allow("provider failed"))
}
