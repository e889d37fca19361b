package verify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/startcommunity/startbot/src/actions/core"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
	"github.com/startcommunity/startbot/src/metrics"
	"github.com/startcommunity/startbot/src/verify"
)

const verifyTimeout = 90 * time.Second

// Handler encapsulates the /verify action.
type Handler struct {
	Config   *sharedconfig.VerifyConfig
	Service  *verify.Service
	Members  *data.MemberStore
	Cooldown core.Cooldown
	Pictures *data.PictureCache
	Metrics  metrics.Recorder
}

// HandleSlash executes the /verify logic.
func (h *Handler) HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := shareddiscord.InteractionUser(i)
	if user == nil || i.GuildID == "" {
		_ = shareddiscord.Respond(s, i.Interaction, "Run /verify from the server you want to be verified in.", true)
		return
	}

	req, problem := requestFor(user, shareddiscord.NewOptions(i.ApplicationCommandData().Options))
	if problem != "" {
		_ = shareddiscord.Respond(s, i.Interaction, problem, true)
		return
	}

	if !h.Cooldown.CanUse(user.ID) {
		wait := h.Cooldown.TimeUntilNext(user.ID).Round(time.Second)
		_ = shareddiscord.Respond(s, i.Interaction, fmt.Sprintf("Please wait %s before trying to verify again.", wait), true)
		return
	}

	if err := shareddiscord.Defer(s, i.Interaction, false); err != nil {
		log.Printf("verify: defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	out, err := h.Service.Verify(ctx, req)
	h.Metrics.CommandHandled(shareddiscord.CommandVerify, err)
	if err != nil {
		log.Printf("verify: %s as %s: %v", req.RequesterHandle, req.ForumUsername, err)
	}

	if err := shareddiscord.EditEmbed(s, i.Interaction, shareddiscord.VerificationEmbed(out)); err != nil {
		log.Printf("verify: respond to %s: %v", req.RequesterHandle, err)
	}

	if out.ShowsPicture() && h.Pictures != nil {
		if err := h.Pictures.Set(ctx, out.ForumUsername, out.PictureURL); err != nil {
			log.Printf("verify: cache picture for %s: %v", out.ForumUsername, err)
		}
	}

	if out.Kind.Success() {
		h.grantVerifiedRoles(s, i.GuildID, user.ID)
	}
}

// requestFor builds a verification request or explains why it cannot.
func requestFor(user *discordgo.User, opts shareddiscord.Options) (verify.Request, string) {
	forumUsername := strings.TrimSpace(opts.String("forum_username"))
	if forumUsername == "" {
		return verify.Request{}, "Give your Oculus forum username, e.g. `/verify forum_username:alice`."
	}
	if strings.ContainsAny(forumUsername, "/?#") {
		return verify.Request{}, "That does not look like a forum username."
	}
	return verify.Request{
		ForumUsername:   forumUsername,
		RequesterHandle: shareddiscord.Handle(user),
		DiscordUserID:   user.ID,
	}, ""
}

func (h *Handler) grantVerifiedRoles(s *discordgo.Session, guildID, userID string) {
	if roleID, ok := shareddiscord.ResolveRole(s, guildID, h.Config.Roles.Verified); ok {
		if err := s.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
			log.Printf("verify: add verified role to %s: %v", userID, err)
		}
	} else {
		log.Printf("verify: verified role %q not found", h.Config.Roles.Verified)
	}
	if roleID, ok := shareddiscord.ResolveRole(s, guildID, h.Config.Roles.Unverified); ok {
		if err := s.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			log.Printf("verify: remove unverified role from %s: %v", userID, err)
		}
	}
}

// HandleMemberJoin marks newcomers unverified, or restores the verified role
// of members who were linked before.
func (h *Handler) HandleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if h.Members != nil {
		_, err := h.Members.GetByDiscordUserID(ctx, m.User.ID)
		if err == nil {
			h.grantVerifiedRoles(s, m.GuildID, m.User.ID)
			return
		}
		if !errors.Is(err, data.ErrNotFound) {
			log.Printf("verify: member lookup for %s: %v", m.User.ID, err)
		}
	}

	roleID, ok := shareddiscord.ResolveRole(s, m.GuildID, h.Config.Roles.Unverified)
	if !ok {
		log.Printf("verify: unverified role %q not found", h.Config.Roles.Unverified)
		return
	}
	if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, roleID); err != nil {
		log.Printf("verify: add unverified role to %s: %v", m.User.ID, err)
	}
}
