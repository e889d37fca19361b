package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
)

var slashCmd = &cobra.Command{
	Use:   "commands",
	Short: "Inspect or clear the bot's guild slash commands.",
}

var slashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the slash commands the bot registers.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Command", "Options", "Description"})
		for _, name := range shareddiscord.CommandNames() {
			def, _ := shareddiscord.Definition(name)
			t.AppendRow(table.Row{"/" + name, len(def.Options), def.Description})
		}
		t.Render()
	},
}

var slashClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every guild slash command; the bot registers them again on its next start.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := sharedconfig.LoadBase(nil)
		if base.Token == "" || base.GuildID == "" {
			return fmt.Errorf("DISCORD_TOKEN and GUILD_ID must be set")
		}
		s, err := discordgo.New("Bot " + base.Token)
		if err != nil {
			return err
		}
		app, err := s.User("@me")
		if err != nil {
			return fmt.Errorf("resolve application: %w", err)
		}
		n, err := shareddiscord.DeleteSlashCommands(s, app.ID, base.GuildID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d command(s) from guild %s\n", n, base.GuildID)
		return nil
	},
}

func init() {
	slashCmd.AddCommand(slashListCmd, slashClearCmd)
}
