package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/startcommunity/startbot/src/api"
	sharedconfig "github.com/startcommunity/startbot/src/config"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <scope>...",
	Short: "Mint a registration API token signed with JWT_SECRET.",
	Long:  fmt.Sprintf("Mint a registration API token signed with JWT_SECRET. Known scopes: %s, %s.", api.ScopeMembersWrite, api.ScopeMembersRead),
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sharedconfig.LoadAPIConfig(nil)
		tok, err := api.IssueToken([]byte(cfg.JWTSecret), tokenSubject, args, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "start-site", "token subject, used as the rate limit key")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime; 0 never expires")
}
