package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/startcommunity/startbot/src/api"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/data/datatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		verifyFile = ""
		tokenSubject = "start-site"
		tokenTTL = 0
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVerifyFromFile(t *testing.T) {
	out, err := run(t, "verify", "--file", "../../../src/forum/testdata/member_profile.html", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Alice#1234")
	assert.Contains(t, out, "true")
}

func TestVerifyFileNeedsOneUser(t *testing.T) {
	_, err := run(t, "verify", "--file", "x.html", "alice", "bob")
	require.Error(t, err)
}

func useDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := datatest.Open(t)
	prev := dbFactory
	dbFactory = func() (*gorm.DB, error) { return db, nil }
	t.Cleanup(func() { dbFactory = prev })
	return db
}

func TestStatusAndEmail(t *testing.T) {
	db := useDB(t)
	store := data.NewMemberStore(db)
	require.NoError(t, store.Create(context.Background(), &data.Member{
		DiscordHandle: "Alice#1234",
		ForumUsername: "alice",
		StartTrack:    "growth",
		Hardware:      data.StringSet{"QUEST"},
	}))

	out, err := run(t, "email", "Alice#1234", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice#1234: email set to alice@example.com\n", out)

	out, err = run(t, "status", "Alice#1234", "Bob#0001")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "growth")
	assert.Contains(t, out, "(not verified)")

	_, err = run(t, "email", "Alice#1234", "not an email")
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := run(t, "token", api.ScopeMembersWrite)
	require.NoError(t, err)
	tok := strings.TrimSpace(out)
	assert.Len(t, strings.Split(tok, "."), 3)
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "token", api.ScopeMembersWrite)
	require.Error(t, err)
}

func TestCommandsList(t *testing.T) {
	out, err := run(t, "commands", "list")
	require.NoError(t, err)
	for _, name := range []string{"/verify", "/hardware", "/project", "/event", "/dm"} {
		assert.Contains(t, out, name)
	}
}

func TestCommandsClearNeedsToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("GUILD_ID", "")
	_, err := run(t, "commands", "clear")
	require.Error(t, err)
}
