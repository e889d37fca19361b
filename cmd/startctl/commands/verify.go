package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/forum"
	"github.com/startcommunity/startbot/src/verify"
)

var verifyFile string

var verifyCmd = &cobra.Command{
	Use:   "verify <forum_username>...",
	Short: "Fetch forum profiles and report what /verify would read from them. Nothing is stored.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verifyFile != "" {
			if len(args) != 1 {
				return fmt.Errorf("--file takes exactly one forum username")
			}
			f, err := os.Open(verifyFile)
			if err != nil {
				return err
			}
			defer f.Close()
			snap, err := forum.Parse(f, args[0])
			if err != nil {
				return err
			}
			renderProfiles(cmd.OutOrStdout(), []profileReport{reportFor(args[0], &snap, nil)})
			return nil
		}

		cfg := sharedconfig.LoadVerifyConfig(nil)
		client := forum.NewClient(cfg.Forum.ClientOptions())
		reports := make([]profileReport, 0, len(args))
		for _, username := range args {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Forum.Timeout+5*time.Second)
			snap, err := client.FetchProfile(ctx, username)
			cancel()
			reports = append(reports, reportFor(username, snap, err))
		}
		renderProfiles(cmd.OutOrStdout(), reports)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyFile, "file", "f", "", "parse a saved profile page instead of fetching")
}

type profileReport struct {
	Username string
	Err      error
	Snapshot *forum.ProfileSnapshot
	Found    verify.CommentClassification
}

func reportFor(username string, snap *forum.ProfileSnapshot, err error) profileReport {
	r := profileReport{Username: username, Err: err, Snapshot: snap}
	if err == nil && snap != nil {
		r.Found = verify.ClassifyComments(username, snap.Comments)
	}
	return r
}

func renderProfiles(w io.Writer, reports []profileReport) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Forum user", "Exists", "Member", "Handle", "Invalid text", "Other author", "Comments", "Error"})
	for _, r := range reports {
		if r.Err != nil || r.Snapshot == nil {
			t.AppendRow(table.Row{r.Username, "", "", "", "", "", "", fmt.Sprint(r.Err)})
			continue
		}
		s := r.Snapshot
		t.AppendRow(table.Row{
			r.Username,
			strconv.FormatBool(s.Exists),
			strconv.FormatBool(s.IsProgramMember),
			r.Found.MatchedHandle,
			r.Found.InvalidHandleText,
			r.Found.MismatchedAuthor,
			len(s.Comments),
			"",
		})
	}
	t.Render()
}
