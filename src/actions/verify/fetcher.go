package verify

import (
	"context"

	"github.com/startcommunity/startbot/src/forum"
	"github.com/startcommunity/startbot/src/verify"
	"github.com/startcommunity/startbot/src/webclient"
)

// RetryingFetcher retries transient forum failures before handing the
// result to the verification service.
type RetryingFetcher struct {
	Fetcher verify.Fetcher
	Policy  webclient.RetryPolicy
}

func (f *RetryingFetcher) FetchProfile(ctx context.Context, username string) (*forum.ProfileSnapshot, error) {
	policy := f.Policy
	if policy.Retryable == nil {
		policy.Retryable = forum.IsRetryable
	}
	return webclient.DoWithRetry(ctx, policy, func() (*forum.ProfileSnapshot, error) {
		return f.Fetcher.FetchProfile(ctx, username)
	})
}

func (f *RetryingFetcher) ProfileURL(username string) string {
	return f.Fetcher.ProfileURL(username)
}
