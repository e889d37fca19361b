package members

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
	"github.com/startcommunity/startbot/src/handle"
)

// Onboarding gives members registered through the API their roles once
// they are in the guild.
type Onboarding struct {
	Config *sharedconfig.MembersConfig
	Store  *data.MemberStore
}

// HandleEvent processes one stream entry.
func (o *Onboarding) HandleEvent(ctx context.Context, s *discordgo.Session, ev data.MemberEvent) {
	if ev.Type != data.EventNewMember || ev.DiscordHandle == "" {
		return
	}

	member, err := findGuildMember(s, o.Config.GuildID, ev.DiscordHandle)
	if err != nil {
		log.Printf("members: search guild for %s: %v", ev.DiscordHandle, err)
		return
	}
	if member == nil {
		log.Printf("members: %s registered but is not in the guild yet", ev.DiscordHandle)
		return
	}

	for _, role := range rolesForTrack(o.Config.Roles, ev.StartTrack) {
		roleID, ok := shareddiscord.ResolveRole(s, o.Config.GuildID, role)
		if !ok {
			log.Printf("members: role %q not found", role)
			continue
		}
		if err := s.GuildMemberRoleAdd(o.Config.GuildID, member.User.ID, roleID); err != nil {
			log.Printf("members: add role %q to %s: %v", role, ev.DiscordHandle, err)
		}
	}
	if roleID, ok := shareddiscord.ResolveRole(s, o.Config.GuildID, o.Config.Roles.Unverified); ok {
		if err := s.GuildMemberRoleRemove(o.Config.GuildID, member.User.ID, roleID); err != nil {
			log.Printf("members: remove unverified role from %s: %v", ev.DiscordHandle, err)
		}
	}

	if _, err := o.Store.Update(ctx, ev.DiscordHandle, func(m *data.Member) error {
		m.DiscordUserID = member.User.ID
		return nil
	}); err != nil {
		log.Printf("members: record user id for %s: %v", ev.DiscordHandle, err)
	}
	log.Printf("members: onboarded %s on the %s track", ev.DiscordHandle, ev.StartTrack)
}

// rolesForTrack returns the verified role plus the track's own role.
func rolesForTrack(roles sharedconfig.Roles, track string) []string {
	out := []string{roles.Verified}
	if r := roles.Tracks[strings.ToLower(track)]; r != "" && !strings.EqualFold(r, roles.Verified) {
		out = append(out, r)
	}
	return out
}

func findGuildMember(s *discordgo.Session, guildID, discordHandle string) (*discordgo.Member, error) {
	name, _, ok := handle.Split(discordHandle)
	if !ok {
		name = discordHandle
	}
	found, err := s.GuildMembersSearch(guildID, name, 25)
	if err != nil {
		return nil, err
	}
	return matchMember(found, discordHandle), nil
}

func matchMember(candidates []*discordgo.Member, discordHandle string) *discordgo.Member {
	for _, m := range candidates {
		if m.User != nil && shareddiscord.Handle(m.User) == discordHandle {
			return m
		}
	}
	return nil
}
