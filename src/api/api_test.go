package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/data/datatest"
	"github.com/startcommunity/startbot/src/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type harness struct {
	router  *gin.Engine
	store   *data.MemberStore
	events  *data.MemberEvents
	metrics *metrics.Collector
}

func newHarness(t *testing.T, requestsPerMin int) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := prometheus.NewRegistry()
	h := &harness{
		store:   data.NewMemberStore(datatest.Open(t)),
		events:  data.NewMemberEvents(rdb, "api"),
		metrics: metrics.NewCollector(reg),
	}
	cfg := sharedconfig.APIConfig{JWTSecret: string(testSecret), RequestsPerMin: requestsPerMin}
	h.router = New(cfg, Deps{Members: h.store, Events: h.events, Metrics: h.metrics, Gatherer: reg})
	return h
}

func token(t *testing.T, scopes ...string) string {
	t.Helper()
	tok, err := IssueToken(testSecret, "site", scopes, time.Hour)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func errMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Err string `json:"err"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Err
}

func TestRegisterMember(t *testing.T) {
	h := newHarness(t, 0)
	tok := token(t, ScopeMembersWrite, ScopeMembersRead)

	w := h.do(t, http.MethodPost, "/v1/members", tok, gin.H{
		"discordHandle": "Test#0001",
		"forumUsername": "Test",
		"startTrack":    "Normal",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	m, err := h.store.Get(context.Background(), "Test#0001")
	require.NoError(t, err)
	assert.Equal(t, "Test", m.ForumUsername)
	assert.Equal(t, "normal", m.StartTrack)

	events, _, err := h.events.Read(context.Background(), "0", -1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, data.EventNewMember, events[0].Type)
	assert.Equal(t, "Test#0001", events[0].DiscordHandle)
	assert.Equal(t, "normal", events[0].StartTrack)
	assert.Equal(t, "api", events[0].Publisher)

	assert.Contains(t, h.do(t, http.MethodGet, "/metrics", "", nil).Body.String(), `startbot_member_registrations_total{source="api"} 1`)

	w = h.do(t, http.MethodGet, "/v1/members/Test%230001", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got memberResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, memberResponse{DiscordHandle: "Test#0001", ForumUsername: "Test", StartTrack: "normal", Hardware: []string{}}, got)
}

func TestRegisterConflicts(t *testing.T) {
	h := newHarness(t, 0)
	tok := token(t, ScopeMembersWrite)
	require.NoError(t, h.store.Create(context.Background(), &data.Member{DiscordHandle: "Taken#0001", ForumUsername: "taken"}))

	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{"forum already registered", gin.H{"discordHandle": "New#0001", "forumUsername": "TAKEN", "startTrack": "normal"},
			"This user has already registered their Discord handle before!"},
		{"invalid handle", gin.H{"discordHandle": "everyone#0001", "forumUsername": "fresh", "startTrack": "normal"},
			"'everyone#0001' is not a valid Discord handle!"},
		{"handle exists", gin.H{"discordHandle": "Taken#0001", "forumUsername": "fresh", "startTrack": "normal"},
			"This Discord user is already registered!"},
		{"bad track", gin.H{"discordHandle": "New#0001", "forumUsername": "fresh", "startTrack": "Pro"},
			"The Start Track 'pro' is not valid!"},
		{"missing fields", gin.H{"discordHandle": "New#0001"},
			"Invalid inputs given for the request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/v1/members", tok, tt.body)
			require.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, tt.want, errMessage(t, w))
		})
	}

	n, err := h.store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAuth(t *testing.T) {
	h := newHarness(t, 0)
	body := gin.H{"discordHandle": "Test#0001", "forumUsername": "Test", "startTrack": "normal"}

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/v1/members", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/v1/members", "garbage", body).Code)

	forged, err := IssueToken([]byte("other"), "site", []string{ScopeMembersWrite}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/v1/members", forged, body).Code)

	expired, err := IssueToken(testSecret, "site", []string{ScopeMembersWrite}, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/v1/members", expired, body).Code)

	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPost, "/v1/members", token(t, ScopeMembersRead), body).Code)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/healthz", "", nil).Code)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, 2)
	tok := token(t, ScopeMembersRead)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/v1/members/Nobody%230001", tok, nil).Code)
	}
	w := h.do(t, http.MethodGet, "/v1/members/Nobody%230001", tok, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, 0)
	h.metrics.VerifyOutcome("verified")

	w := h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `startbot_verify_outcomes_total{outcome="verified"} 1`), w.Body.String())
}
