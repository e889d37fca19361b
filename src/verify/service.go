package verify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/startcommunity/startbot/src/forum"
	"github.com/startcommunity/startbot/src/metrics"
)

// Fetcher loads forum profiles.
type Fetcher interface {
	FetchProfile(ctx context.Context, username string) (*forum.ProfileSnapshot, error)
	ProfileURL(username string) string
}

// Request identifies who asks to be linked to which forum profile.
type Request struct {
	ForumUsername   string
	RequesterHandle string
	// DiscordUserID is recorded with the link when present.
	DiscordUserID string
}

// Service runs a whole verification attempt.
type Service struct {
	fetcher    Fetcher
	reconciler *Reconciler
	metrics    metrics.Recorder
}

// Option tweaks a Service.
type Option func(*Service)

// WithMetrics records outcomes and fetch timings.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// NewService builds a Service. Each attempt fetches the profile at most
// once; wrap fetcher to retry transient failures.
func NewService(fetcher Fetcher, store Store, opts ...Option) *Service {
	s := &Service{
		fetcher:    fetcher,
		reconciler: NewReconciler(store),
		metrics:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconciler exposes the record reconciler for callers that only look up.
func (s *Service) Reconciler() *Reconciler { return s.reconciler }

// Verify decides the outcome for req and persists a Verified link. The
// returned error is non-nil only for FetchFailed and StoreFailed outcomes.
func (s *Service) Verify(ctx context.Context, req Request) (Outcome, error) {
	out, err := s.verify(ctx, req)
	s.metrics.VerifyOutcome(out.Kind.String())
	return out, err
}

func (s *Service) verify(ctx context.Context, req Request) (Outcome, error) {
	forumUsername := strings.TrimSpace(req.ForumUsername)
	base := Outcome{
		ForumUsername:   forumUsername,
		RequesterHandle: req.RequesterHandle,
		ProfileURL:      s.fetcher.ProfileURL(forumUsername),
	}

	self, err := s.reconciler.LookupBySelf(ctx, req.RequesterHandle)
	if err != nil {
		return storeFailed(base, err)
	}
	if self != nil {
		return Decide(Input{
			ForumUsername:        forumUsername,
			RequesterHandle:      req.RequesterHandle,
			ProfileURL:           base.ProfileURL,
			ExistingForRequester: self,
		}), nil
	}

	owner, err := s.reconciler.LookupByForum(ctx, forumUsername)
	if err != nil {
		return storeFailed(base, err)
	}
	if owner != nil {
		return Decide(Input{
			ForumUsername:    forumUsername,
			RequesterHandle:  req.RequesterHandle,
			ProfileURL:       base.ProfileURL,
			ExistingForForum: owner,
		}), nil
	}

	snap, err := s.fetch(ctx, forumUsername)
	if err != nil {
		base.Kind = FetchFailed
		return base, err
	}

	out := Decide(Input{
		ForumUsername:   forumUsername,
		RequesterHandle: req.RequesterHandle,
		ProfileURL:      base.ProfileURL,
		Snapshot:        *snap,
		Classification:  ClassifyComments(forumUsername, snap.Comments),
	})
	if !out.Kind.Mutates() {
		return out, nil
	}

	if _, err := s.reconciler.Claim(ctx, req.RequesterHandle, forumUsername, req.DiscordUserID); err != nil {
		if errors.Is(err, ErrClaimed) {
			return s.resolveRace(ctx, base, out)
		}
		return storeFailed(base, err)
	}
	log.Printf("verify: linked %s to forum user %s", req.RequesterHandle, forumUsername)
	return out, nil
}

func (s *Service) fetch(ctx context.Context, forumUsername string) (*forum.ProfileSnapshot, error) {
	start := time.Now()
	snap, err := s.fetcher.FetchProfile(ctx, forumUsername)
	s.metrics.FetchDuration(time.Since(start), err)
	if err != nil {
		if !errors.Is(err, forum.ErrFetchFailed) {
			err = fmt.Errorf("%w: %v", forum.ErrFetchFailed, err)
		}
		log.Printf("verify: fetch %s failed: %v", forumUsername, err)
		return nil, err
	}
	return snap, nil
}

// resolveRace re-reads the store after a lost claim so the caller sees who won.
func (s *Service) resolveRace(ctx context.Context, base, decided Outcome) (Outcome, error) {
	self, err := s.reconciler.LookupBySelf(ctx, base.RequesterHandle)
	if err != nil {
		return storeFailed(base, err)
	}
	owner, err := s.reconciler.LookupByForum(ctx, base.ForumUsername)
	if err != nil {
		return storeFailed(base, err)
	}
	if self == nil && owner == nil {
		return storeFailed(base, fmt.Errorf("%w: claim conflict without a visible owner", ErrStore))
	}
	out := Decide(Input{
		ForumUsername:        base.ForumUsername,
		RequesterHandle:      base.RequesterHandle,
		ProfileURL:           base.ProfileURL,
		ExistingForRequester: self,
		ExistingForForum:     owner,
	})
	if out.Kind != AlreadyLinkedSelf && out.Kind != AlreadyLinkedOther {
		return storeFailed(base, fmt.Errorf("%w: claim conflict with %s does not match the stored records", ErrStore, base.RequesterHandle))
	}
	out.PictureURL = decided.PictureURL
	log.Printf("verify: claim for %s lost to an earlier writer (%s)", base.RequesterHandle, out.Kind)
	return out, nil
}

func storeFailed(base Outcome, err error) (Outcome, error) {
	base.Kind = StoreFailed
	if !errors.Is(err, ErrStore) {
		err = fmt.Errorf("%w: %v", ErrStore, err)
	}
	log.Printf("verify: %v", err)
	return base, err
}
