package members

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
	"github.com/startcommunity/startbot/src/hardware"
	"github.com/startcommunity/startbot/src/members"
	"github.com/startcommunity/startbot/src/metrics"
)

const commandTimeout = 30 * time.Second

// Handler serves the member profile commands.
type Handler struct {
	Config   *sharedconfig.MembersConfig
	Store    *data.MemberStore
	Service  *members.Service
	Pictures *Pictures
	Metrics  metrics.Recorder
}

// HandleSlash dispatches /status, /email, /hardware and /project.
func (h *Handler) HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := shareddiscord.InteractionUser(i)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := i.ApplicationCommandData()
	var err error
	switch cmd.Name {
	case shareddiscord.CommandStatus:
		err = h.status(ctx, s, i, user)
	case shareddiscord.CommandEmail:
		err = h.email(ctx, s, i, user)
	case shareddiscord.CommandHW:
		err = h.hardware(ctx, s, i, user)
	case shareddiscord.CommandProject:
		err = h.project(ctx, s, i, user)
	default:
		return
	}
	h.Metrics.CommandHandled(cmd.Name, err)
	if err != nil {
		log.Printf("members: /%s by %s: %v", cmd.Name, shareddiscord.Handle(user), err)
		if rerr := shareddiscord.Respond(s, i.Interaction, describe(err), true); rerr != nil {
			log.Printf("members: respond: %v", rerr)
		}
	}
}

// handleFor prefers the handle recorded at verification so renamed users
// keep their record.
func (h *Handler) handleFor(ctx context.Context, user *discordgo.User) string {
	if m, err := h.Store.GetByDiscordUserID(ctx, user.ID); err == nil {
		return m.DiscordHandle
	}
	return shareddiscord.Handle(user)
}

// target picks the user named by the "member" option, or the caller.
func target(i *discordgo.InteractionCreate, opts shareddiscord.Options, caller *discordgo.User) *discordgo.User {
	id := opts.UserID("member")
	if id == "" {
		return caller
	}
	if res := i.ApplicationCommandData().Resolved; res != nil {
		if u, ok := res.Users[id]; ok {
			return u
		}
	}
	return caller
}

func (h *Handler) status(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, caller *discordgo.User) error {
	who := target(i, shareddiscord.NewOptions(i.ApplicationCommandData().Options), caller)
	m, err := h.Service.Status(ctx, h.handleFor(ctx, who))
	if err != nil {
		return err
	}
	embed := shareddiscord.StatusEmbed(m, h.Pictures.URL(ctx, m.ForumUsername))
	return shareddiscord.RespondEmbed(s, i.Interaction, embed, false)
}

func (h *Handler) email(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, caller *discordgo.User) error {
	opts := shareddiscord.NewOptions(i.ApplicationCommandData().Options)
	m, err := h.Service.SetEmail(ctx, h.handleFor(ctx, caller), opts.String("address"))
	if err != nil {
		return err
	}
	return shareddiscord.Respond(s, i.Interaction, fmt.Sprintf("Saved `%s` as the contact email for %s.", *m.Email, m.DiscordHandle), true)
}

func (h *Handler) hardware(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, caller *discordgo.User) error {
	sub, opts := shareddiscord.Subcommand(i.ApplicationCommandData())
	if sub == "list" {
		return shareddiscord.Respond(s, i.Interaction, hardware.Supported(), true)
	}

	handle := h.handleFor(ctx, caller)
	code := opts.String("device")
	var (
		m   *data.Member
		err error
	)
	switch sub {
	case "add":
		m, err = h.Service.AddHardware(ctx, handle, code)
	case "remove":
		m, err = h.Service.RemoveHardware(ctx, handle, code)
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}
	if err != nil {
		return err
	}
	owned := "nothing"
	if len(m.Hardware) > 0 {
		owned = hardware.Names(m.Hardware)
	}
	return shareddiscord.Respond(s, i.Interaction, fmt.Sprintf("Updated! You now own: %s", owned), true)
}

func (h *Handler) project(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, caller *discordgo.User) error {
	sub, opts := shareddiscord.Subcommand(i.ApplicationCommandData())
	switch sub {
	case "add":
		p := projectFromOptions(opts)
		if _, err := h.Service.AddProject(ctx, h.handleFor(ctx, caller), p); err != nil {
			return err
		}
		return shareddiscord.Respond(s, i.Interaction, fmt.Sprintf("Added **%s** to your projects.", shareddiscord.CleanText(p.Name, 100)), true)
	case "remove":
		name := opts.String("name")
		if _, err := h.Service.RemoveProject(ctx, h.handleFor(ctx, caller), name); err != nil {
			return err
		}
		return shareddiscord.Respond(s, i.Interaction, fmt.Sprintf("Removed **%s** from your projects.", shareddiscord.CleanText(name, 100)), true)
	case "show":
		who := target(i, opts, caller)
		index := int(opts.Int("index", 1)) - 1
		m, p, err := h.Service.Project(ctx, h.handleFor(ctx, who), index)
		if err != nil {
			return err
		}
		embed := shareddiscord.ProjectEmbed(m.DiscordHandle, h.Pictures.URL(ctx, m.ForumUsername), p)
		return shareddiscord.RespondEmbed(s, i.Interaction, embed, false)
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

func projectFromOptions(opts shareddiscord.Options) data.Project {
	var devices []string
	for _, d := range strings.FieldsFunc(opts.String("devices"), func(r rune) bool { return r == ',' || r == ' ' }) {
		devices = append(devices, d)
	}
	return data.Project{
		Name:        opts.String("name"),
		Description: opts.String("description"),
		LogoURL:     shareddiscord.CleanURL(opts.String("logo")),
		TrailerURL:  shareddiscord.CleanURL(opts.String("trailer")),
		Link:        shareddiscord.CleanURL(opts.String("link")),
		Devices:     devices,
	}
}

// describe turns a service error into a reply for the member.
func describe(err error) string {
	switch {
	case errors.Is(err, members.ErrNotVerified):
		return "You need to verify first. Run `/verify` with your Oculus forum username."
	case errors.Is(err, members.ErrUnknownHardware):
		code := strings.TrimSpace(strings.TrimPrefix(err.Error(), members.ErrUnknownHardware.Error()+":"))
		return hardware.UnknownMessage(code)
	case errors.Is(err, members.ErrDuplicate):
		return "That is already on your profile."
	case errors.Is(err, members.ErrNotListed):
		return "That is not on your profile."
	case errors.Is(err, members.ErrInvalidEmail):
		return "That is not a valid email address."
	case errors.Is(err, members.ErrInvalidProject):
		return "A project needs a name."
	case errors.Is(err, members.ErrNoProject):
		return "There is no project at that position."
	default:
		return "Something went wrong, please try again later."
	}
}
