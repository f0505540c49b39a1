// Package startup runs checks against the services the engine depends
// on before it starts serving. Critical failures abort startup; the
// rest degrade the corresponding provider at runtime.
package startup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultTimeout = 5 * time.Second

// CheckFunc performs one health check. Nil means the check passed.
type CheckFunc func(ctx context.Context) error

// Check is a single startup check.
type Check struct {
	Name     string
	Fn       CheckFunc
	Critical bool
	// Timeout overrides the default per-check timeout when positive.
	Timeout time.Duration
}

// Result is the outcome of one check.
type Result struct {
	Name     string
	Critical bool
	Err      error
	Duration time.Duration
}

// Run executes the checks in order, each under its own timeout.
func Run(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		err := c.Fn(checkCtx)
		cancel()

		results = append(results, Result{
			Name:     c.Name,
			Critical: c.Critical,
			Err:      err,
			Duration: time.Since(start),
		})
	}
	return results
}

// Summarize logs every result and returns a joined error when any
// critical check failed.
func Summarize(log *slog.Logger, results []Result) error {
	var critical []error

	for _, r := range results {
		switch {
		case r.Err == nil:
			log.Info("startup check passed", "check", r.Name, "duration", r.Duration.Round(time.Millisecond))
		case r.Critical:
			log.Error("startup check failed", "check", r.Name, "error", r.Err)
			critical = append(critical, fmt.Errorf("%s: %w", r.Name, r.Err))
		default:
			log.Warn("startup check failed, continuing without", "check", r.Name, "error", r.Err)
		}
	}

	if len(critical) > 0 {
		return errors.Join(critical...)
	}
	return nil
}
