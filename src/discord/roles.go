package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HasRole checks whether a user has a role in a guild. Empty roleID always returns true.
func HasRole(s *discordgo.Session, guildID, userID, roleID string) bool {
	if roleID == "" {
		return true
	}
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return false
	}
	return MemberHasRole(member, roleID)
}

// MemberHasRole checks an already loaded member.
func MemberHasRole(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}
	for _, role := range member.Roles {
		if role == roleID {
			return true
		}
	}
	return false
}

// RoleIDByName finds a guild role by case-insensitive name.
func RoleIDByName(roles []*discordgo.Role, name string) (string, bool) {
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r.ID, true
		}
	}
	return "", false
}

// ResolveRole returns roleOrName unchanged when it is a role ID of the guild
// and otherwise looks it up by name.
func ResolveRole(s *discordgo.Session, guildID, roleOrName string) (string, bool) {
	if roleOrName == "" {
		return "", false
	}
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return "", false
	}
	for _, r := range roles {
		if r.ID == roleOrName {
			return r.ID, true
		}
	}
	return RoleIDByName(roles, roleOrName)
}

// Handle renders the legacy name#discriminator form of a user.
func Handle(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// InteractionUser returns the caller of an interaction in a guild or a DM.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
