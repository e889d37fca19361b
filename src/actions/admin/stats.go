package admin

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
)

// roleIDs holds resolved guild role IDs; any may be empty when the guild
// lacks the role.
type roleIDs struct {
	verified   string
	unverified string
	staff      string
	bot        string
}

// Tally counts guild members per managed role. Each member lands in the
// first bucket that matches: unverified, verified, staff, bot.
type Tally struct {
	Total      int
	Verified   int
	Unverified int
	Staff      int
	Bots       int
	// Roleless lists members without any role. They are counted as
	// unverified and get the role assigned.
	Roleless []string
}

func tally(members []*discordgo.Member, ids roleIDs) Tally {
	var t Tally
	for _, m := range members {
		if m == nil || m.User == nil {
			continue
		}
		t.Total++
		switch {
		case has(m, ids.unverified):
			t.Unverified++
		case has(m, ids.verified):
			t.Verified++
		case has(m, ids.staff):
			t.Staff++
		case has(m, ids.bot):
			t.Bots++
		case len(m.Roles) == 0:
			t.Unverified++
			t.Roleless = append(t.Roleless, m.User.ID)
		}
	}
	return t
}

func has(m *discordgo.Member, roleID string) bool {
	return roleID != "" && shareddiscord.MemberHasRole(m, roleID)
}

func (t Tally) String() string {
	return fmt.Sprintf("**Member stats** (%d total)\n\nUnverified: %d\nStart Members: %d\nOculus Staff: %d\nBots: %d\n\nMarked %d role-less member(s) as unverified.",
		t.Total, t.Unverified, t.Verified, t.Staff, t.Bots, len(t.Roleless))
}

// guildMembers pages through every member of the guild.
func guildMembers(s *discordgo.Session, guildID string) ([]*discordgo.Member, error) {
	var (
		all   []*discordgo.Member
		after string
	)
	for {
		page, err := s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < 1000 {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// withRole filters members holding roleID.
func withRole(members []*discordgo.Member, roleID string) []*discordgo.Member {
	var out []*discordgo.Member
	for _, m := range members {
		if m != nil && m.User != nil && !m.User.Bot && shareddiscord.MemberHasRole(m, roleID) {
			out = append(out, m)
		}
	}
	return out
}
