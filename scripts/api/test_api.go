// Minimal end-to-end check of a running registration API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/startcommunity/startbot/src/api"
	"github.com/startcommunity/startbot/src/data"
)

var (
	baseURL  = getenv("API_URL", "http://localhost:8080/v1")
	redisURL = getenv("REDIS_URL", "redis://localhost:6379/0")
	secret   = getenv("JWT_SECRET", "")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()
	rdb := mustRedis()
	defer rdb.Close()

	token, err := api.IssueToken([]byte(secret), "smoke-test", []string{api.ScopeMembersWrite, api.ScopeMembersRead}, 10*time.Minute)
	if err != nil {
		log.Fatalf("token: %v", err)
	}

	// Throwaway identity; the discriminator keeps it inside the handle grammar.
	suffix := uuid.New().ID() % 10000
	discordHandle := fmt.Sprintf("Smoke%d#%04d", suffix, suffix)
	forumUser := "smoke-" + strconv.FormatUint(uint64(suffix), 10)

	lastID := streamTail(ctx, rdb)
	register(token, discordHandle, forumUser)
	checkMember(token, discordHandle, forumUser)
	checkDuplicate(token, discordHandle, forumUser)
	checkEvent(ctx, rdb, lastID, discordHandle)

	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- members

func register(tok, discordHandle, forumUser string) {
	doAuth(tok, "POST", "/members", map[string]any{
		"discordHandle": discordHandle,
		"forumUsername": forumUser,
		"startTrack":    "Growth",
	}, nil, http.StatusOK)
}

func checkMember(tok, discordHandle, forumUser string) {
	var m struct {
		ForumUsername string
		StartTrack    string
	}
	doAuth(tok, "GET", "/members/"+url.PathEscape(discordHandle), nil, &m, http.StatusOK)
	if m.ForumUsername != forumUser || m.StartTrack != "growth" {
		log.Fatalf("members: unexpected record %+v", m)
	}
}

func checkDuplicate(tok, discordHandle, forumUser string) {
	doAuth(tok, "POST", "/members", map[string]any{
		"discordHandle": discordHandle,
		"forumUsername": forumUser,
		"startTrack":    "normal",
	}, nil, http.StatusConflict)
}

// ----------------------------- events

func streamTail(ctx context.Context, rdb *redis.Client) string {
	msgs, err := rdb.XRevRangeN(ctx, data.StreamMembers, "+", "-", 1).Result()
	if err != nil || len(msgs) == 0 {
		return "0"
	}
	return msgs[0].ID
}

func checkEvent(ctx context.Context, rdb *redis.Client, lastID, discordHandle string) {
	msgs, err := rdb.XRange(ctx, data.StreamMembers, "("+lastID, "+").Result()
	if err != nil {
		log.Fatalf("redis xrange: %v", err)
	}
	for _, m := range msgs {
		if m.Values["eventType"] == data.EventNewMember && m.Values["discordHandle"] == discordHandle {
			return
		}
	}
	log.Fatal("events: NewMember not published")
}

// ----------------------------- helpers

func mustRedis() *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	return redis.NewClient(opt)
}

func doAuth(token, method, path string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
