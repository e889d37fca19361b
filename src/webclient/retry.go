package webclient

import (
	"context"
	"log"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// RetryPolicy bounds how a caller retries a transient failure.
type RetryPolicy struct {
	Attempts     uint
	InitialDelay time.Duration
	MaxJitter    time.Duration
	// Retryable decides whether an error is transient. Nil retries everything.
	Retryable func(error) bool
	// Label prefixes retry log lines.
	Label string
}

// DoWithRetry runs fn until it succeeds, returns a permanent error, the
// attempts run out or ctx ends.
func DoWithRetry[T any](ctx context.Context, p RetryPolicy, fn func() (T, error)) (T, error) {
	if p.Attempts == 0 {
		p.Attempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 2 * time.Second
	}
	if p.MaxJitter <= 0 {
		p.MaxJitter = 100 * time.Millisecond
	}
	retryIf := p.Retryable
	if retryIf == nil {
		retryIf = func(error) bool { return true }
	}

	return retry.DoWithData(
		fn,
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(p.InitialDelay),
		retry.MaxJitter(p.MaxJitter),
		retry.RetryIf(retryIf),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if p.Label != "" {
				log.Printf("%s: attempt %d failed, retrying: %v", p.Label, n+1, err)
			}
		}),
	)
}
