package data_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/startcommunity/startbot/src/data"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := data.ConnectRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestPictureCache(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	cache := data.NewPictureCache(rdb, time.Minute)

	_, ok, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	if ok {
		t.Fatal("empty cache reported a hit")
	}

	require.NoError(t, cache.Set(ctx, "Alice", "https://cdn.example.com/a.png"))
	got, ok, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	if !ok || got != "https://cdn.example.com/a.png" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "alice"); ok {
		t.Error("entry survived its ttl")
	}
}

func TestMemberEventsPublish(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	events := data.NewMemberEvents(rdb, "test")

	id, err := events.Publish(ctx, data.EventNewMember, map[string]interface{}{"discordHandle": "Alice#1234"})
	require.NoError(t, err)
	if id == "" {
		t.Fatal("Publish() returned an empty id")
	}

	msgs, err := rdb.XRange(ctx, data.StreamMembers, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	if msgs[0].Values["eventType"] != data.EventNewMember || msgs[0].Values["discordHandle"] != "Alice#1234" {
		t.Errorf("stream entry = %v", msgs[0].Values)
	}
}

func TestRedisCooldown(t *testing.T) {
	mr, rdb := newRedis(t)
	cd := data.NewRedisCooldown(rdb, "verify", 30*time.Second)

	if !cd.CanUse("u1") {
		t.Fatal("first use should be allowed")
	}
	if cd.CanUse("u1") {
		t.Fatal("second use inside the period should be refused")
	}
	if !cd.CanUse("u2") {
		t.Fatal("other users are independent")
	}
	if wait := cd.TimeUntilNext("u1"); wait <= 0 || wait > 30*time.Second {
		t.Errorf("TimeUntilNext() = %v", wait)
	}

	mr.FastForward(31 * time.Second)
	if !cd.CanUse("u1") {
		t.Error("cooldown should expire")
	}
}

func TestMemberEventsRead(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	events := data.NewMemberEvents(rdb, "api")

	_, err := events.Publish(ctx, data.EventNewMember, map[string]interface{}{
		"discordHandle": "Alice#1234",
		"forumUsername": "alice",
		"startTrack":    "growth",
	})
	require.NoError(t, err)
	_, err = events.Publish(ctx, data.EventNewMember, map[string]interface{}{"discordHandle": "Bob#0001"})
	require.NoError(t, err)

	got, next, err := events.Read(ctx, "0", -1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	if got[0].Type != data.EventNewMember || got[0].Publisher != "api" || got[0].StartTrack != "growth" || got[0].ForumUsername != "alice" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].DiscordHandle != "Bob#0001" || next != got[1].StreamID {
		t.Errorf("second event = %+v, next = %q", got[1], next)
	}

	none, same, err := events.Read(ctx, next, -1)
	require.NoError(t, err)
	if len(none) != 0 || same != next {
		t.Errorf("Read() past the end = %+v, %q", none, same)
	}
}
