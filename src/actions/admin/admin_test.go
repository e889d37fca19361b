package admin

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: "user" + id}, Roles: roles}
}

func TestTally(t *testing.T) {
	ids := roleIDs{verified: "r-v", unverified: "r-u", staff: "r-s", bot: "r-b"}
	members := []*discordgo.Member{
		member("1", "r-v"),
		member("2", "r-v", "r-s"),
		member("3", "r-u"),
		member("4"),
		member("5", "r-b"),
		member("6", "other"),
		member("7", "r-s"),
		member("8", "r-u", "r-v"),
		nil,
		{User: nil},
	}

	got := tally(members, ids)
	want := Tally{Total: 8, Verified: 2, Unverified: 3, Staff: 1, Bots: 1, Roleless: []string{"4"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tally() mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, got.String(), "Start Members: 2")
}

func TestTallyIgnoresMissingRoles(t *testing.T) {
	got := tally([]*discordgo.Member{member("1", "r-v")}, roleIDs{})
	assert.Equal(t, Tally{Total: 1}, got)
}

func TestWithRole(t *testing.T) {
	bot := member("9", "r-v")
	bot.User.Bot = true
	got := withRole([]*discordgo.Member{member("1", "r-v"), member("2", "r-u"), bot}, "r-v")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "1", got[0].User.ID)
	}
}

func TestDMReport(t *testing.T) {
	assert.Equal(t, "Sent the message to 3 member(s).", dmReport(3, nil))

	report := dmReport(1, []string{"Bob#0001", "Carol"})
	assert.True(t, strings.HasPrefix(report, "Sent the message to 1 member(s).\nCould not reach 2 member(s):"))
	assert.Contains(t, report, "Bob#0001\nCarol")
}
