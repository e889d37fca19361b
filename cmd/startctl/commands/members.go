package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/startcommunity/startbot/src/hardware"
	"github.com/startcommunity/startbot/src/members"
)

var statusCmd = &cobra.Command{
	Use:   "status <discord_handle>...",
	Short: "Show stored member records.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := memberService()
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Discord", "Forum user", "Track", "Email", "Hardware", "Projects"})
		for _, h := range args {
			m, err := svc.Status(cmd.Context(), h)
			if errors.Is(err, members.ErrNotVerified) {
				t.AppendRow(table.Row{h, "(not verified)"})
				continue
			}
			if err != nil {
				return err
			}
			email := ""
			if m.Email != nil {
				email = *m.Email
			}
			projects := make([]string, 0, len(m.Projects))
			for _, p := range m.Projects {
				projects = append(projects, p.Name)
			}
			t.AppendRow(table.Row{m.DiscordHandle, m.ForumUsername, m.StartTrack, email, hardware.Names(m.Hardware), strings.Join(projects, ", ")})
		}
		t.Render()
		return nil
	},
}

var emailCmd = &cobra.Command{
	Use:   "email <discord_handle> <address>",
	Short: "Set a member's contact email.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := memberService()
		if err != nil {
			return err
		}
		m, err := svc.SetEmail(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: email set to %s\n", m.DiscordHandle, *m.Email)
		return nil
	},
}
