package verify

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
)

func options(kv ...string) shareddiscord.Options {
	var opts []*discordgo.ApplicationCommandInteractionDataOption
	for i := 0; i+1 < len(kv); i += 2 {
		opts = append(opts, &discordgo.ApplicationCommandInteractionDataOption{
			Name:  kv[i],
			Type:  discordgo.ApplicationCommandOptionString,
			Value: kv[i+1],
		})
	}
	return shareddiscord.NewOptions(opts)
}

func TestRequestFor(t *testing.T) {
	user := &discordgo.User{ID: "42", Username: "Alice", Discriminator: "1234"}

	req, problem := requestFor(user, options("forum_username", "  alice "))
	if problem != "" {
		t.Fatalf("unexpected problem %q", problem)
	}
	if req.ForumUsername != "alice" || req.RequesterHandle != "Alice#1234" || req.DiscordUserID != "42" {
		t.Errorf("requestFor() = %+v", req)
	}

	for _, bad := range []string{"", "   ", "../admin", "alice?x=1"} {
		if _, problem := requestFor(user, options("forum_username", bad)); problem == "" {
			t.Errorf("requestFor(%q) accepted", bad)
		}
	}
}
