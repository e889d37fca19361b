// Package commands implements startctl, the operator CLI for the Start bot.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/members"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "startctl",
	Short:         "startctl inspects forum profiles and manages Start member records.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(verifyCmd, statusCmd, emailCmd, tokenCmd, slashCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// openDB connects with MYSQL_DSN and loads the settings table.
func openDB() (*gorm.DB, error) {
	dsn, err := data.GetMySQLDSN()
	if err != nil {
		return nil, err
	}
	db, err := data.ConnectMySQL(dsn)
	if err != nil {
		return nil, err
	}
	sharedconfig.LoadBase(db)
	return db, nil
}

// dbFactory is replaced in tests.
var dbFactory = openDB

func memberService() (*data.MemberStore, *members.Service, error) {
	db, err := dbFactory()
	if err != nil {
		return nil, nil, err
	}
	store := data.NewMemberStore(db)
	return store, members.NewService(store), nil
}
