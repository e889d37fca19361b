package members

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/startcommunity/startbot/src/actions/core"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
)

var _ core.Module = (*Module)(nil)

var commands = []string{
	shareddiscord.CommandStatus,
	shareddiscord.CommandEmail,
	shareddiscord.CommandHW,
	shareddiscord.CommandProject,
}

// Module serves member profile commands and onboards API registrations.
type Module struct {
	cfg        *sharedconfig.MembersConfig
	session    *discordgo.Session
	handler    *Handler
	onboarding *Onboarding
	events     *data.MemberEvents
	cancel     context.CancelFunc
}

// NewModule creates the module. events may be nil when redis is not configured.
func NewModule(cfg *sharedconfig.MembersConfig, handler *Handler, events *data.MemberEvents) (*Module, error) {
	if cfg == nil || handler == nil {
		return nil, fmt.Errorf("members: config and handler are required")
	}
	session, err := core.NewSession(cfg.Token, discordgo.IntentsGuilds|discordgo.IntentsGuildMembers)
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}

	m := &Module{
		cfg:        cfg,
		session:    session,
		handler:    handler,
		onboarding: &Onboarding{Config: cfg, Store: handler.Store},
		events:     events,
	}
	m.session.AddHandler(m.onReady)
	m.session.AddHandler(m.onInteractionCreate)
	return m, nil
}

// Name implements core.Module
func (m *Module) Name() string { return "members" }

func (m *Module) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("members: logged in as %s", shareddiscord.Handle(s.State.User))
	if err := shareddiscord.RegisterSlashCommands(s, m.cfg.GuildID, commands...); err != nil {
		log.Printf("members: failed to register slash commands: %v", err)
	}
}

func (m *Module) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	for _, c := range commands {
		if c == name {
			m.handler.HandleSlash(s, i)
			return
		}
	}
}

// Start opens the Discord session and follows the members stream.
func (m *Module) Start(ctx context.Context) error {
	runCtx, cancel, err := core.OpenSession(ctx, m.session)
	if err != nil {
		return fmt.Errorf("members: %w", err)
	}
	m.cancel = cancel

	if m.events != nil {
		go m.events.Listen(runCtx, func(ev data.MemberEvent) {
			evCtx, done := context.WithTimeout(runCtx, 30*time.Second)
			defer done()
			m.onboarding.HandleEvent(evCtx, m.session, ev)
		})
	} else {
		log.Printf("members: redis not configured, API registrations will not be onboarded")
	}
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
