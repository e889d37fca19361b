package admin

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
	"github.com/startcommunity/startbot/src/logging"
	"github.com/startcommunity/startbot/src/metrics"
	"golang.org/x/time/rate"
)

// Handler serves /stats and /dm.
type Handler struct {
	Config  *sharedconfig.AdminConfig
	Metrics metrics.Recorder
	// DMRate paces direct messages to stay clear of Discord's limits.
	DMRate rate.Limit
}

func (h *Handler) HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmd := i.ApplicationCommandData().Name
	if !h.isAdmin(s, i) {
		if err := shareddiscord.Respond(s, i.Interaction, "Only admins can use this command.", true); err != nil {
			log.Printf("admin: respond: %v", err)
		}
		return
	}
	if err := shareddiscord.Defer(s, i.Interaction, true); err != nil {
		log.Printf("admin: defer /%s: %v", cmd, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		reply string
		err   error
	)
	switch cmd {
	case shareddiscord.CommandStats:
		reply, err = h.stats(s)
	case shareddiscord.CommandDM:
		reply, err = h.dm(ctx, s, i)
	default:
		return
	}
	h.Metrics.CommandHandled(cmd, err)
	if err != nil {
		log.Printf("admin: /%s: %v", cmd, err)
		reply = "Something went wrong: " + err.Error()
	}

	chunks := shareddiscord.ChunkMessage(reply)
	if len(chunks) == 0 {
		return
	}
	if err := shareddiscord.EditContent(s, i.Interaction, chunks[0]); err != nil {
		log.Printf("admin: edit response: %v", err)
	}
	for _, c := range chunks[1:] {
		if err := shareddiscord.Followup(s, i.Interaction, c); err != nil {
			log.Printf("admin: followup: %v", err)
		}
	}
}

func (h *Handler) isAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	adminID, ok := shareddiscord.ResolveRole(s, h.Config.GuildID, h.Config.Roles.Admin)
	return ok && shareddiscord.MemberHasRole(i.Member, adminID)
}

func (h *Handler) resolveRoles(s *discordgo.Session) roleIDs {
	id := func(role string) string {
		v, _ := shareddiscord.ResolveRole(s, h.Config.GuildID, role)
		return v
	}
	return roleIDs{
		verified:   id(h.Config.Roles.Verified),
		unverified: id(h.Config.Roles.Unverified),
		staff:      id(h.Config.Roles.Staff),
		bot:        id(h.Config.Roles.Bot),
	}
}

func (h *Handler) stats(s *discordgo.Session) (string, error) {
	members, err := guildMembers(s, h.Config.GuildID)
	if err != nil {
		return "", fmt.Errorf("list members: %w", err)
	}
	ids := h.resolveRoles(s)
	t := tally(members, ids)

	if ids.unverified != "" {
		for _, userID := range t.Roleless {
			if err := s.GuildMemberRoleAdd(h.Config.GuildID, userID, ids.unverified); err != nil {
				log.Printf("admin: mark %s unverified: %v", userID, err)
			}
		}
	}
	log.Printf("admin: stats total=%d verified=%d unverified=%d staff=%d bots=%d", t.Total, t.Verified, t.Unverified, t.Staff, t.Bots)
	return t.String(), nil
}

func (h *Handler) dm(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (string, error) {
	opts := shareddiscord.NewOptions(i.ApplicationCommandData().Options)
	roleID := opts.RoleID("role")
	message := strings.TrimSpace(opts.String("message"))
	if roleID == "" || message == "" {
		return "A role and a message are required.", nil
	}

	members, err := guildMembers(s, h.Config.GuildID)
	if err != nil {
		return "", fmt.Errorf("list members: %w", err)
	}
	targets := withRole(members, roleID)

	limit := h.DMRate
	if limit == 0 {
		limit = rate.Every(time.Second)
	}
	limiter := rate.NewLimiter(limit, 1)

	var failed []string
	sent := 0
	for _, m := range targets {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		if err := sendDM(s, m.User.ID, message); err != nil {
			failed = append(failed, shareddiscord.Handle(m.User))
			if !logging.IsForbidden(err) {
				log.Printf("admin: dm %s: %v", shareddiscord.Handle(m.User), err)
			}
			continue
		}
		sent++
	}
	return dmReport(sent, failed), nil
}

func sendDM(s *discordgo.Session, userID, message string) error {
	ch, err := s.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSend(ch.ID, message)
	return err
}

func dmReport(sent int, failed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sent the message to %d member(s).", sent)
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\nCould not reach %d member(s):\n%s", len(failed), strings.Join(failed, "\n"))
	}
	return b.String()
}
