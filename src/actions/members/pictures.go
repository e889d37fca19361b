package members

import (
	"context"
	"log"

	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/forum"
)

// ProfileFetcher loads forum profiles.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, username string) (*forum.ProfileSnapshot, error)
}

// Pictures resolves a member's forum picture, going to the forum only on a
// cache miss.
type Pictures struct {
	Cache *data.PictureCache
	Forum ProfileFetcher
}

// URL returns the picture for forumUsername or "" when there is none.
func (p *Pictures) URL(ctx context.Context, forumUsername string) string {
	if p == nil || forumUsername == "" {
		return ""
	}
	if p.Cache != nil {
		url, ok, err := p.Cache.Get(ctx, forumUsername)
		if err != nil {
			log.Printf("members: picture cache get %s: %v", forumUsername, err)
		} else if ok {
			return url
		}
	}
	if p.Forum == nil {
		return ""
	}

	snap, err := p.Forum.FetchProfile(ctx, forumUsername)
	if err != nil {
		log.Printf("members: fetch picture for %s: %v", forumUsername, err)
		return ""
	}
	if snap.ProfilePictureURL != "" && p.Cache != nil {
		if err := p.Cache.Set(ctx, forumUsername, snap.ProfilePictureURL); err != nil {
			log.Printf("members: picture cache set %s: %v", forumUsername, err)
		}
	}
	return snap.ProfilePictureURL
}
