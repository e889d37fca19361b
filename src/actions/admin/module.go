package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/startcommunity/startbot/src/actions/core"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
)

var _ core.Module = (*Module)(nil)

// Module runs the admin commands /stats and /dm.
type Module struct {
	cfg     *sharedconfig.AdminConfig
	session *discordgo.Session
	handler *Handler
	cancel  context.CancelFunc
}

func NewModule(cfg *sharedconfig.AdminConfig, handler *Handler) (*Module, error) {
	if cfg == nil || handler == nil {
		return nil, fmt.Errorf("admin: config and handler are required")
	}
	// Listing members needs the privileged members intent.
	session, err := core.NewSession(cfg.Token, discordgo.IntentsGuilds|discordgo.IntentsGuildMembers)
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}
	m := &Module{cfg: cfg, session: session, handler: handler}
	m.session.AddHandler(m.onReady)
	m.session.AddHandler(m.onInteractionCreate)
	return m, nil
}

// Name implements core.Module
func (m *Module) Name() string { return "admin" }

func (m *Module) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("admin: logged in as %s", shareddiscord.Handle(s.State.User))
	if err := shareddiscord.RegisterSlashCommands(s, m.cfg.GuildID, shareddiscord.CommandStats, shareddiscord.CommandDM); err != nil {
		log.Printf("admin: failed to register slash commands: %v", err)
	}
}

func (m *Module) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	switch i.ApplicationCommandData().Name {
	case shareddiscord.CommandStats, shareddiscord.CommandDM:
		m.handler.HandleSlash(s, i)
	}
}

// Start opens the Discord session
func (m *Module) Start(ctx context.Context) error {
	_, cancel, err := core.OpenSession(ctx, m.session)
	if err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	m.cancel = cancel
	return nil
}

// Stop shuts down the Discord session
func (m *Module) Stop(ctx context.Context) {
	if m.cancel != nil {
		m.cancel()
	}
	if m.session != nil {
		m.session.Close()
	}
}
