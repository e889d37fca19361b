package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/handle"
	"github.com/startcommunity/startbot/src/metrics"
)

// StartTracks are the programme tracks a developer can join.
var StartTracks = []string{"normal", "growth", "alumni"}

type Members struct {
	store   *data.MemberStore
	events  Publisher
	metrics metrics.Recorder
}

func NewMembers(store *data.MemberStore, events Publisher, recorder metrics.Recorder) Members {
	return Members{store: store, events: events, metrics: recorder}
}

type registerRequest struct {
	DiscordHandle string `json:"discordHandle" binding:"required"`
	ForumUsername string `json:"forumUsername" binding:"required"`
	StartTrack    string `json:"startTrack" binding:"required"`
}

type memberResponse struct {
	DiscordHandle string   `json:"discordHandle"`
	ForumUsername string   `json:"forumUsername"`
	StartTrack    string   `json:"startTrack,omitempty"`
	Hardware      []string `json:"hardware"`
	Projects      int      `json:"projects"`
}

func validTrack(track string) bool {
	for _, t := range StartTracks {
		if t == track {
			return true
		}
	}
	return false
}

// Register records a member signed up through the Start programme site.
func (m Members) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "Invalid inputs given for the request."})
		return
	}
	ctx := c.Request.Context()
	req.DiscordHandle = strings.TrimSpace(req.DiscordHandle)
	req.ForumUsername = strings.TrimSpace(req.ForumUsername)
	track := strings.ToLower(strings.TrimSpace(req.StartTrack))

	switch _, err := m.store.GetByForumUsername(ctx, req.ForumUsername); {
	case err == nil:
		c.JSON(http.StatusConflict, gin.H{"err": "This user has already registered their Discord handle before!"})
		return
	case !errors.Is(err, data.ErrNotFound):
		m.internalError(c, err)
		return
	}

	if !handle.IsValid(req.DiscordHandle) {
		c.JSON(http.StatusConflict, gin.H{"err": fmt.Sprintf("'%s' is not a valid Discord handle!", req.DiscordHandle)})
		return
	}

	switch _, err := m.store.Get(ctx, req.DiscordHandle); {
	case err == nil:
		c.JSON(http.StatusConflict, gin.H{"err": "This Discord user is already registered!"})
		return
	case !errors.Is(err, data.ErrNotFound):
		m.internalError(c, err)
		return
	}

	if !validTrack(track) {
		c.JSON(http.StatusConflict, gin.H{"err": fmt.Sprintf("The Start Track '%s' is not valid!", track)})
		return
	}

	member := &data.Member{
		DiscordHandle: req.DiscordHandle,
		ForumUsername: req.ForumUsername,
		StartTrack:    track,
	}
	if err := m.store.Create(ctx, member); err != nil {
		if errors.Is(err, data.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"err": "This Discord user is already registered!"})
			return
		}
		m.internalError(c, err)
		return
	}
	m.metrics.MemberRegistered("api")
	log.Printf("api: registered %s as %s on the %s track", member.DiscordHandle, member.ForumUsername, track)

	if m.events != nil {
		if _, err := m.events.Publish(ctx, data.EventNewMember, map[string]interface{}{
			"discordHandle": member.DiscordHandle,
			"forumUsername": member.ForumUsername,
			"startTrack":    track,
		}); err != nil {
			log.Printf("api: publish %s for %s: %v", data.EventNewMember, member.DiscordHandle, err)
		}
	}
	c.JSON(http.StatusOK, toResponse(member))
}

// Get returns one member by Discord handle.
func (m Members) Get(c *gin.Context) {
	member, err := m.store.Get(c.Request.Context(), c.Param("handle"))
	if errors.Is(err, data.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"err": "member not found"})
		return
	}
	if err != nil {
		m.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(member))
}

func (m Members) internalError(c *gin.Context, err error) {
	log.Printf("api: %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
}

func toResponse(m *data.Member) memberResponse {
	hw := []string(m.Hardware)
	if hw == nil {
		hw = []string{}
	}
	return memberResponse{
		DiscordHandle: m.DiscordHandle,
		ForumUsername: m.ForumUsername,
		StartTrack:    m.StartTrack,
		Hardware:      hw,
		Projects:      len(m.Projects),
	}
}
