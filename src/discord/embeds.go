package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/hardware"
	"github.com/startcommunity/startbot/src/verify"
)

const (
	EmbedColor    = 0x254f63
	FailureColor  = 0xB03A2E
	DefaultAvatar = "https://cdn.discordapp.com/embed/avatars/0.png"
)

// VerificationEmbed renders a verification outcome for the requester.
func VerificationEmbed(out verify.Outcome) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color: FailureColor,
		URL:   out.ProfileURL,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: DefaultAvatar,
		},
	}
	if out.ShowsPicture() {
		embed.Thumbnail.URL = out.PictureURL
	}
	forumUser := CleanText(out.ForumUsername, 64)

	switch out.Kind {
	case verify.Verified:
		embed.Color = EmbedColor
		embed.Title = "Verified!"
		embed.Description = fmt.Sprintf("Welcome to Oculus Start, %s! Your Discord account is now linked to the forum profile **%s**.", out.RequesterHandle, forumUser)
	case verify.AlreadyLinkedSelf:
		embed.Color = EmbedColor
		embed.Title = "Already verified"
		embed.Description = fmt.Sprintf("%s is already linked to the forum profile **%s**.", out.RequesterHandle, CleanText(out.ExistingForum, 64))
		embed.URL = ""
	case verify.AlreadyLinkedOther:
		embed.Title = "Profile already claimed"
		embed.Description = fmt.Sprintf("The forum profile **%s** is already linked to another Discord account. Contact an admin if this is your profile.", forumUser)
	case verify.ProfileNotFound:
		embed.Title = "Profile not found"
		embed.Description = fmt.Sprintf("Could not find a forum profile named **%s**. Check the spelling of your forum username.", forumUser)
		embed.URL = ""
	case verify.NotAMember:
		embed.Title = "Not an Oculus Start member"
		embed.Description = fmt.Sprintf("**%s** does not have the Oculus Start rank on the forums.", forumUser)
	case verify.HandleMismatch:
		embed.Title = "Discord handle mismatch"
		embed.Description = fmt.Sprintf("The profile of **%s** lists the Discord handle `%s`, but you are `%s`. Update the comment on your profile and try again.", forumUser, CleanText(out.FoundHandle, 40), out.RequesterHandle)
	case verify.InvalidHandleFound:
		embed.Title = "Invalid Discord handle"
		embed.Description = fmt.Sprintf("Found `%s` on the profile of **%s**, which is not a Discord handle. Post your handle exactly as `Name#1234`.", CleanText(out.InvalidText, 64), forumUser)
	case verify.AuthorMismatch:
		embed.Title = "Comment posted by someone else"
		embed.Description = fmt.Sprintf("A Discord handle was found on the profile of **%s**, but it was posted by **%s**. Post it yourself from your own account.", forumUser, CleanText(out.MismatchedAuthor, 64))
	case verify.NoHandleFound:
		embed.Title = "No Discord handle found"
		embed.Description = fmt.Sprintf("Post your Discord handle (`%s`) as a comment on your own forum profile, then run `/verify` again.", out.RequesterHandle)
	case verify.FetchFailed:
		embed.Title = "Forum unavailable"
		embed.Description = "Could not reach the Oculus forums right now. Please try again in a few minutes."
	default:
		embed.Title = "Verification failed"
		embed.Description = "Something went wrong while saving your verification. Please try again later."
	}

	if embed.URL != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Forum profile",
			Value: embed.URL,
		})
	}
	return embed
}

// StatusEmbed summarises a member record.
func StatusEmbed(m *data.Member, pictureURL string) *discordgo.MessageEmbed {
	if pictureURL == "" {
		pictureURL = DefaultAvatar
	}
	embed := &discordgo.MessageEmbed{
		Title:     m.DiscordHandle,
		Color:     EmbedColor,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: pictureURL},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Forum username", Value: CleanText(m.ForumUsername, MaxFieldValueLen), Inline: true},
		},
	}
	if m.StartTrack != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Track", Value: m.StartTrack, Inline: true})
	}
	if len(m.Hardware) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Hardware", Value: hardware.Names(m.Hardware)})
	}
	if len(m.Projects) > 0 {
		names := make([]string, 0, len(m.Projects))
		for i, p := range m.Projects {
			names = append(names, fmt.Sprintf("%d. %s", i+1, p.Name))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Projects",
			Value: CleanText(strings.Join(names, "\n"), MaxFieldValueLen),
		})
	}
	return embed
}

// ProjectEmbed renders one project with its owner as the author line.
func ProjectEmbed(ownerHandle, ownerIcon string, p data.Project) *discordgo.MessageEmbed {
	if ownerIcon == "" {
		ownerIcon = DefaultAvatar
	}
	description := p.Description
	if strings.TrimSpace(description) == "" {
		description = data.DefaultProjectDescription
	}
	embed := &discordgo.MessageEmbed{
		Title:       CleanText(p.Name, MaxTitleLen),
		Description: CleanText(description, MaxDescriptionLen),
		Color:       EmbedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    ownerHandle,
			IconURL: ownerIcon,
		},
	}
	if logo := CleanURL(p.LogoURL); logo != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: logo}
	}
	if len(p.Devices) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Supported Devices", Value: hardware.Names(p.Devices)})
	}
	if link := CleanURL(p.Link); link != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Project Link", Value: link})
	}
	if trailer := CleanURL(p.TrailerURL); trailer != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Video Trailer", Value: trailer})
	}
	return embed
}
