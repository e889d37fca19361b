package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/startcommunity/startbot/src/data"
)

var (
	// ErrClaimed means the handle or forum username was linked first by someone else.
	ErrClaimed = errors.New("verify: already claimed")
	// ErrStore wraps failures of the record store.
	ErrStore = errors.New("verify: record store failure")
)

// Store is the slice of the member store the reconciler needs.
type Store interface {
	Get(ctx context.Context, discordHandle string) (*data.Member, error)
	GetByForumUsername(ctx context.Context, forumUsername string) (*data.Member, error)
	Create(ctx context.Context, m *data.Member) error
}

// Reconciler checks and writes the link between a Discord handle and a forum profile.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// LookupBySelf returns the record for a Discord handle, or nil when there is
// none. Handles compare case-sensitively even when the store's collation
// does not.
func (r *Reconciler) LookupBySelf(ctx context.Context, discordHandle string) (*data.Member, error) {
	m, err := found(r.store.Get(ctx, discordHandle))
	if err != nil || m == nil || m.DiscordHandle != discordHandle {
		return nil, err
	}
	return m, nil
}

// LookupByForum returns the record that claimed a forum username, or nil.
func (r *Reconciler) LookupByForum(ctx context.Context, forumUsername string) (*data.Member, error) {
	m, err := r.store.GetByForumUsername(ctx, forumUsername)
	return found(m, err)
}

// Claim links discordHandle to forumUsername if neither side is linked yet.
func (r *Reconciler) Claim(ctx context.Context, discordHandle, forumUsername, discordUserID string) (*data.Member, error) {
	m := &data.Member{
		DiscordHandle: discordHandle,
		ForumUsername: strings.TrimSpace(forumUsername),
		DiscordUserID: discordUserID,
		Hardware:      data.StringSet{},
		Projects:      data.ProjectList{},
	}
	if err := r.store.Create(ctx, m); err != nil {
		if errors.Is(err, data.ErrAlreadyExists) {
			return nil, ErrClaimed
		}
		return nil, fmt.Errorf("%w: create %s: %v", ErrStore, discordHandle, err)
	}
	return m, nil
}

func found(m *data.Member, err error) (*data.Member, error) {
	if errors.Is(err, data.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return m, nil
}
