package discord

import "github.com/bwmarrin/discordgo"

// Options indexes interaction options by name.
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

func NewOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	m := make(Options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// Subcommand unwraps a subcommand invocation into its name and options.
func Subcommand(data discordgo.ApplicationCommandInteractionData) (string, Options) {
	for _, o := range data.Options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			return o.Name, NewOptions(o.Options)
		}
	}
	return "", NewOptions(data.Options)
}

func (o Options) String(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o Options) Int(name string, def int64) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return def
}

func (o Options) UserID(name string) string {
	if opt, ok := o[name]; ok {
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}

func (o Options) RoleID(name string) string {
	return o.UserID(name)
}
