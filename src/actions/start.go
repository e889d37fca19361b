package actions

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	adminmodule "github.com/startcommunity/startbot/src/actions/admin"
	"github.com/startcommunity/startbot/src/actions/core"
	eventsmodule "github.com/startcommunity/startbot/src/actions/events"
	membersmodule "github.com/startcommunity/startbot/src/actions/members"
	verifymodule "github.com/startcommunity/startbot/src/actions/verify"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/events"
	"github.com/startcommunity/startbot/src/forum"
	"github.com/startcommunity/startbot/src/members"
	"github.com/startcommunity/startbot/src/metrics"
	"github.com/startcommunity/startbot/src/verify"
	"github.com/startcommunity/startbot/src/webclient"
	"gorm.io/gorm"
)

// StartAll wires up enabled action modules and starts the manager. rdb may
// be nil, in which case caches and cooldowns stay in memory and API
// registrations are not onboarded.
func StartAll(ctx context.Context, db *gorm.DB, rdb *redis.Client, recorder metrics.Recorder) (*core.Manager, error) {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	mgr := core.NewManager()
	memberStore := data.NewMemberStore(db)

	var pictures *data.PictureCache
	membersCfg := sharedconfig.LoadMembersConfig(db)
	if rdb != nil {
		pictures = data.NewPictureCache(rdb, membersCfg.PictureTTL)
	}

	verifyCfg := sharedconfig.LoadVerifyConfig(db)
	forumClient := forum.NewClient(verifyCfg.Forum.ClientOptions())
	if verifyCfg.Enabled {
		fetcher := &verifymodule.RetryingFetcher{
			Fetcher: forumClient,
			Policy: webclient.RetryPolicy{
				Attempts:     uint(verifyCfg.Forum.RetryAttempts),
				InitialDelay: verifyCfg.Forum.RetryDelay,
				Label:        "verify: forum fetch",
			},
		}
		svc := verify.NewService(fetcher, memberStore, verify.WithMetrics(recorder))
		var cooldown core.Cooldown = core.NewRateLimiter(verifyCfg.Cooldown)
		if rdb != nil {
			cooldown = data.NewRedisCooldown(rdb, "verify", verifyCfg.Cooldown)
		}
		handler := &verifymodule.Handler{
			Config:   &verifyCfg,
			Service:  svc,
			Members:  memberStore,
			Cooldown: cooldown,
			Pictures: pictures,
			Metrics:  recorder,
		}
		mod, err := verifymodule.NewModule(&verifyCfg, handler)
		if err != nil {
			return nil, fmt.Errorf("actions: init verify module: %w", err)
		}
		if err := mgr.Add(mod); err != nil {
			return nil, fmt.Errorf("actions: add verify module: %w", err)
		}
	} else {
		log.Printf("actions: verify module disabled via configuration")
	}

	if membersCfg.Enabled {
		handler := &membersmodule.Handler{
			Config:   &membersCfg,
			Store:    memberStore,
			Service:  members.NewService(memberStore),
			Pictures: &membersmodule.Pictures{Cache: pictures, Forum: forumClient},
			Metrics:  recorder,
		}
		var stream *data.MemberEvents
		if rdb != nil {
			stream = data.NewMemberEvents(rdb, "bot")
		}
		mod, err := membersmodule.NewModule(&membersCfg, handler, stream)
		if err != nil {
			return nil, fmt.Errorf("actions: init members module: %w", err)
		}
		if err := mgr.Add(mod); err != nil {
			return nil, fmt.Errorf("actions: add members module: %w", err)
		}
	} else {
		log.Printf("actions: members module disabled via configuration")
	}

	eventsCfg := sharedconfig.LoadEventsConfig(db)
	if eventsCfg.Enabled {
		handler := &eventsmodule.Handler{
			Members: memberStore,
			Service: events.NewService(data.NewEventStore(db)),
			Metrics: recorder,
		}
		mod, err := eventsmodule.NewModule(&eventsCfg, handler)
		if err != nil {
			return nil, fmt.Errorf("actions: init events module: %w", err)
		}
		if err := mgr.Add(mod); err != nil {
			return nil, fmt.Errorf("actions: add events module: %w", err)
		}
	} else {
		log.Printf("actions: events module disabled via configuration")
	}

	adminCfg := sharedconfig.LoadAdminConfig(db)
	if adminCfg.Enabled {
		mod, err := adminmodule.NewModule(&adminCfg, &adminmodule.Handler{Config: &adminCfg, Metrics: recorder})
		if err != nil {
			return nil, fmt.Errorf("actions: init admin module: %w", err)
		}
		if err := mgr.Add(mod); err != nil {
			return nil, fmt.Errorf("actions: add admin module: %w", err)
		}
	} else {
		log.Printf("actions: admin module disabled via configuration")
	}

	if err := mgr.Start(ctx); err != nil {
		return nil, err
	}
	log.Printf("actions: started %v", mgr.Names())
	return mgr, nil
}
