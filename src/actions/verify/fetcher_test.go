package verify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/startcommunity/startbot/src/forum"
	"github.com/startcommunity/startbot/src/webclient"
	"github.com/stretchr/testify/require"
)

type scriptedFetcher struct {
	errs  []error
	calls int
}

func (f *scriptedFetcher) FetchProfile(_ context.Context, username string) (*forum.ProfileSnapshot, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &forum.ProfileSnapshot{Exists: true}, nil
}

func (f *scriptedFetcher) ProfileURL(username string) string {
	return "https://forum.test/start/profile/" + username
}

func fastPolicy() webclient.RetryPolicy {
	return webclient.RetryPolicy{Attempts: 3, InitialDelay: time.Millisecond, MaxJitter: time.Millisecond}
}

func TestRetryingFetcherRetriesTransient(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{&forum.FetchError{Username: "alice", StatusCode: http.StatusBadGateway}}}
	f := &RetryingFetcher{Fetcher: inner, Policy: fastPolicy()}

	snap, err := f.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	if !snap.Exists {
		t.Error("snapshot lost")
	}
	if inner.calls != 2 {
		t.Errorf("fetches = %d, want 2", inner.calls)
	}
	if got := f.ProfileURL("alice"); got != "https://forum.test/start/profile/alice" {
		t.Errorf("ProfileURL = %q", got)
	}
}

func TestRetryingFetcherStopsOnPermanent(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{&forum.FetchError{Username: "alice", StatusCode: http.StatusForbidden}}}
	f := &RetryingFetcher{Fetcher: inner, Policy: fastPolicy()}

	_, err := f.FetchProfile(context.Background(), "alice")
	if !errors.Is(err, forum.ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}
	if inner.calls != 1 {
		t.Errorf("fetches = %d, want 1", inner.calls)
	}
}
