package startup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"periplo/pkg/llm"
	"periplo/pkg/overpass"
	"periplo/pkg/store"
)

// CacheDirWritable verifies the result cache directory exists and
// accepts writes.
func CacheDirWritable(dir string) Check {
	return Check{
		Name:     "cache_dir",
		Critical: true,
		Fn: func(ctx context.Context) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create cache dir: %w", err)
			}
			p := filepath.Join(dir, ".write_check")
			if err := os.WriteFile(p, []byte("ok"), 0o644); err != nil {
				return fmt.Errorf("cache dir not writable: %w", err)
			}
			return os.Remove(p)
		},
	}
}

// StoreRoundTrip verifies the request cache database accepts reads and
// writes.
func StoreRoundTrip(s *store.SQLiteStore) Check {
	return Check{
		Name:     "request_store",
		Critical: true,
		Fn: func(ctx context.Context) error {
			if err := s.SetState(ctx, "startup_check", "ok"); err != nil {
				return err
			}
			if _, ok := s.GetState(ctx, "startup_check"); !ok {
				return fmt.Errorf("state written but not readable")
			}
			return s.DeleteState(ctx, "startup_check")
		},
	}
}

// OverpassReachable issues a trivial query against the Overpass
// endpoint. Not critical: the engine degrades to the other providers.
func OverpassReachable(c *overpass.Client) Check {
	return Check{
		Name: "overpass",
		Fn: func(ctx context.Context) error {
			_, err := c.Execute(ctx, "[out:json][timeout:5];out count;")
			return err
		},
	}
}

// LLMHealthy asks the enrichment provider for a health check. Not
// critical: enrichment is optional per request.
func LLMHealthy(p llm.Provider) Check {
	return Check{
		Name: "llm",
		Fn: func(ctx context.Context) error {
			return p.HealthCheck(ctx)
		},
	}
}
