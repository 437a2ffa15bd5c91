package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bankmetrics/internal/port"
	"bankmetrics/internal/provider"
)

// circuitState tracks rate-limit backoff for a single interpreter.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackInterpreter tries interpreters in order, skipping those with open circuits.
// It implements port.Interpreter.
type FallbackInterpreter struct {
	interpreters []port.Interpreter
	circuits     []*circuitState
	names        []string
	logger       *slog.Logger
}

// NewFallbackInterpreter creates a FallbackInterpreter from an ordered list of interpreters and their names.
func NewFallbackInterpreter(interpreters []port.Interpreter, names []string, logger *slog.Logger) *FallbackInterpreter {
	circuits := make([]*circuitState, len(interpreters))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackInterpreter{
		interpreters: interpreters,
		circuits:     circuits,
		names:        names,
		logger:       logger.With("component", "interpreter.fallback"),
	}
}

func (f *FallbackInterpreter) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, in := range f.interpreters {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Info("skipping interpreter, circuit open", "provider", f.names[i], "until", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := in.Complete(ctx, input)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("interpreter failed", "provider", f.names[i], "error", err)
		lastErr = err

		var rlErr *provider.RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, provider.NewRateLimitError("all", fmt.Errorf("all interpreters rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all interpreters failed: %w", lastErr)
}
