package data

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	picturePrefix  = "forumpic:"
	cooldownPrefix = "cooldown:"
	// StreamMembers carries membership events for downstream consumers.
	StreamMembers = "startbot.members"

	EventNewMember = "NewMember"
)

func MustRedis(url string) *redis.Client {
	rdb, err := ConnectRedis(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return rdb
}

// ConnectRedis parses url and returns a client without dialing.
func ConnectRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// MemberEvents publishes membership changes to a redis stream.
type MemberEvents struct {
	rdb       *redis.Client
	publisher string
}

func NewMemberEvents(rdb *redis.Client, publisher string) *MemberEvents {
	return &MemberEvents{rdb: rdb, publisher: publisher}
}

// Publish appends one event and returns its message id.
func (e *MemberEvents) Publish(ctx context.Context, eventType string, payload map[string]interface{}) (string, error) {
	values := map[string]interface{}{
		"id":        uuid.NewString(),
		"eventType": eventType,
		"publisher": e.publisher,
		"ts":        strconv.FormatInt(time.Now().Unix(), 10),
	}
	for k, v := range payload {
		values[k] = v
	}
	return e.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamMembers,
		Values: values,
	}).Result()
}

// MemberEvent is one entry of the members stream.
type MemberEvent struct {
	StreamID      string
	Type          string
	Publisher     string
	DiscordHandle string
	ForumUsername string
	StartTrack    string
}

func memberEventFrom(msg redis.XMessage) MemberEvent {
	field := func(name string) string {
		v, _ := msg.Values[name].(string)
		return v
	}
	return MemberEvent{
		StreamID:      msg.ID,
		Type:          field("eventType"),
		Publisher:     field("publisher"),
		DiscordHandle: field("discordHandle"),
		ForumUsername: field("forumUsername"),
		StartTrack:    field("startTrack"),
	}
}

// Read returns events after lastID, blocking up to block for new ones. The
// returned id is where the next read should continue.
func (e *MemberEvents) Read(ctx context.Context, lastID string, block time.Duration) ([]MemberEvent, string, error) {
	streams, err := e.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{StreamMembers, lastID},
		Count:   10,
		Block:   block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, err
	}

	var out []MemberEvent
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			out = append(out, memberEventFrom(msg))
			lastID = msg.ID
		}
	}
	return out, lastID, nil
}

// Listen feeds events published after the call to fn until ctx ends.
func (e *MemberEvents) Listen(ctx context.Context, fn func(MemberEvent)) {
	lastID := "$"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events, next, err := e.Read(ctx, lastID, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("redis: reading %s: %v", StreamMembers, err)
			time.Sleep(time.Second)
			continue
		}
		for _, ev := range events {
			fn(ev)
		}
		lastID = next
	}
}

// PictureCache remembers forum profile pictures so embeds do not refetch the forum.
type PictureCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPictureCache(rdb *redis.Client, ttl time.Duration) *PictureCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PictureCache{rdb: rdb, ttl: ttl}
}

func pictureKey(forumUsername string) string {
	h := xxhash.NewS64(0)
	h.Write([]byte(ForumKey(forumUsername)))
	return picturePrefix + strconv.FormatUint(h.Sum64(), 16)
}

// Get returns the cached picture URL; ok is false on a miss.
func (c *PictureCache) Get(ctx context.Context, forumUsername string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, pictureKey(forumUsername)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *PictureCache) Set(ctx context.Context, forumUsername, pictureURL string) error {
	return c.rdb.Set(ctx, pictureKey(forumUsername), pictureURL, c.ttl).Err()
}

// RedisCooldown limits how often one user may run a command, across bot instances.
type RedisCooldown struct {
	rdb    *redis.Client
	scope  string
	period time.Duration
}

func NewRedisCooldown(rdb *redis.Client, scope string, period time.Duration) *RedisCooldown {
	return &RedisCooldown{rdb: rdb, scope: scope, period: period}
}

func (c *RedisCooldown) key(userID string) string {
	return cooldownPrefix + c.scope + ":" + strings.TrimSpace(userID)
}

// CanUse claims the cooldown slot for userID. Redis errors fail open.
func (c *RedisCooldown) CanUse(userID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := c.rdb.SetNX(ctx, c.key(userID), "1", c.period).Result()
	if err != nil {
		log.Printf("redis: cooldown %s: %v", c.scope, err)
		return true
	}
	return ok
}

// TimeUntilNext returns how long userID must wait.
func (c *RedisCooldown) TimeUntilNext(userID string) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ttl, err := c.rdb.PTTL(ctx, c.key(userID)).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}
