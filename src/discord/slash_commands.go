package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/startcommunity/startbot/src/hardware"
)

const (
	CommandVerify  = "verify"
	CommandStatus  = "status"
	CommandEmail   = "email"
	CommandHW      = "hardware"
	CommandProject = "project"
	CommandEvent   = "event"
	CommandStats   = "stats"
	CommandDM      = "dm"
)

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func subcommand(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     opts,
	}
}

func hardwareOption() *discordgo.ApplicationCommandOption {
	opt := stringOption("device", "Hardware code", true)
	for _, d := range hardware.All() {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s)", d.Code, d.Name),
			Value: d.Code,
		})
	}
	return opt
}

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandVerify: {
		Name:        CommandVerify,
		Description: "Verify your Discord account against your Oculus Start forum profile",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("forum_username", "Your username on the Oculus forums", true),
		},
	},
	CommandStatus: {
		Name:        CommandStatus,
		Description: "Show the verified profile of you or another member",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to look up (defaults to you)",
			},
		},
	},
	CommandEmail: {
		Name:        CommandEmail,
		Description: "Set the contact email on your Start profile",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("address", "Email address", true),
		},
	},
	CommandHW: {
		Name:        CommandHW,
		Description: "Manage the hardware you own",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add", "Add a device", hardwareOption()),
			subcommand("remove", "Remove a device", hardwareOption()),
			subcommand("list", "List supported devices"),
		},
	},
	CommandProject: {
		Name:        CommandProject,
		Description: "Showcase your projects",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("add", "Add a project",
				stringOption("name", "Project name", true),
				stringOption("description", "Short description", false),
				stringOption("logo", "Logo image URL", false),
				stringOption("trailer", "Trailer video URL", false),
				stringOption("link", "Store or website link", false),
				stringOption("devices", "Comma separated hardware codes", false),
			),
			subcommand("remove", "Remove a project", stringOption("name", "Project name", true)),
			subcommand("show", "Show a project",
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Owner (defaults to you)",
				},
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "index",
					Description: "1 is the most recent project",
				},
			),
		},
	},
	CommandEvent: {
		Name:        CommandEvent,
		Description: "Sign up for community events",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand("register", "Register for an event",
				stringOption("name", "Event name", true),
				stringOption("type", "Registration type", true),
			),
			subcommand("unregister", "Cancel your registration", stringOption("name", "Event name", true)),
		},
	},
	CommandStats: {
		Name:        CommandStats,
		Description: "Count members per role and mark role-less members unverified (admin)",
	},
	CommandDM: {
		Name:        CommandDM,
		Description: "Send a direct message to every member with a role (admin)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role to message",
				Required:    true,
			},
			stringOption("message", "Message to send", true),
		},
	},
}

var defaultCommandOrder = []string{
	CommandVerify,
	CommandStatus,
	CommandEmail,
	CommandHW,
	CommandProject,
	CommandEvent,
	CommandStats,
	CommandDM,
}

// CommandNames lists every known command in registration order.
func CommandNames() []string {
	out := make([]string, len(defaultCommandOrder))
	copy(out, defaultCommandOrder)
	return out
}

// Definition returns the registered shape of a command.
func Definition(name string) (*discordgo.ApplicationCommand, bool) {
	def, ok := commandDefinitions[name]
	return def, ok
}

// RegisterSlashCommands registers the requested slash commands for a guild.
// When no command names are provided, all known commands are registered.
func RegisterSlashCommands(s *discordgo.Session, guildID string, names ...string) error {
	if guildID == "" {
		return fmt.Errorf("discord: guildID is required to register slash commands")
	}

	if len(names) == 0 {
		names = defaultCommandOrder
	}

	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			log.Printf("discord: unknown slash command %q", name)
			continue
		}

		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition)
		if err != nil {
			if isDuplicateCommandError(err) {
				log.Printf("discord: slash command %q already registered", name)
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			log.Printf("discord: failed to register command %q: %v", name, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("discord: slash command registration errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

// DeleteSlashCommands removes every command appID registered in a guild and
// returns how many were deleted. It needs no gateway connection.
func DeleteSlashCommands(s *discordgo.Session, appID, guildID string) (int, error) {
	if appID == "" || guildID == "" {
		return 0, fmt.Errorf("discord: appID and guildID are required to delete slash commands")
	}

	registered, err := s.ApplicationCommands(appID, guildID)
	if err != nil {
		return 0, err
	}
	for n, cmd := range registered {
		if err := s.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			return n, fmt.Errorf("discord: delete /%s: %w", cmd.Name, err)
		}
	}
	return len(registered), nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			msg := strings.ToLower(restErr.Message.Message)
			if strings.Contains(msg, "already exists") {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}
