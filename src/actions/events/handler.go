package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/startcommunity/startbot/src/data"
	shareddiscord "github.com/startcommunity/startbot/src/discord"
	"github.com/startcommunity/startbot/src/events"
	"github.com/startcommunity/startbot/src/metrics"
)

// Handler serves /event.
type Handler struct {
	Members *data.MemberStore
	Service *events.Service
	Metrics metrics.Recorder
}

func (h *Handler) HandleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := shareddiscord.InteractionUser(i)
	if user == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	reply, err := h.run(ctx, user, i.ApplicationCommandData())
	h.Metrics.CommandHandled(shareddiscord.CommandEvent, err)
	if err != nil {
		log.Printf("events: /event by %s: %v", shareddiscord.Handle(user), err)
		reply = describe(err)
	}
	if rerr := shareddiscord.Respond(s, i.Interaction, reply, true); rerr != nil {
		log.Printf("events: respond: %v", rerr)
	}
}

var errNotVerified = errors.New("events: caller is not verified")

func (h *Handler) run(ctx context.Context, user *discordgo.User, cmd discordgo.ApplicationCommandInteractionData) (string, error) {
	member, err := h.Members.GetByDiscordUserID(ctx, user.ID)
	if errors.Is(err, data.ErrNotFound) {
		member, err = h.Members.Get(ctx, shareddiscord.Handle(user))
	}
	if errors.Is(err, data.ErrNotFound) {
		return "", errNotVerified
	}
	if err != nil {
		return "", err
	}

	sub, opts := shareddiscord.Subcommand(cmd)
	name := strings.TrimSpace(opts.String("name"))
	switch sub {
	case "register":
		typ := strings.TrimSpace(opts.String("type"))
		added, err := h.Service.Register(ctx, name, typ, member.DiscordHandle)
		if err != nil {
			return "", err
		}
		if !added {
			return fmt.Sprintf("You are already registered for **%s** as %s.", name, typ), nil
		}
		return fmt.Sprintf("You are registered for **%s** as %s.", name, typ), nil
	case "unregister":
		if err := h.Service.Unregister(ctx, name, member.DiscordHandle); err != nil {
			return "", err
		}
		return fmt.Sprintf("Your registration for **%s** was cancelled.", name), nil
	default:
		return "", fmt.Errorf("unknown subcommand %q", sub)
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, errNotVerified):
		return "Only verified members can register. Run `/verify` first."
	case errors.Is(err, events.ErrEventNotFound):
		return "There is no event with that name."
	case errors.Is(err, events.ErrUnknownRegistrationType):
		return "That registration type does not exist for this event."
	case errors.Is(err, events.ErrRegistrationClosed):
		return "Registration for this event is closed."
	case errors.Is(err, events.ErrEventFull):
		return "Sorry, this event is full."
	case errors.Is(err, events.ErrRegisteredElsewhere):
		return "You are already registered for this event under another type. Unregister first to switch."
	case errors.Is(err, events.ErrNotRegistered):
		return "You are not registered for this event."
	default:
		return "Something went wrong, please try again later."
	}
}
