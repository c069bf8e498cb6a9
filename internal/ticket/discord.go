package ticket

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/divine-development/divine/internal/discordutil"
)

const (
	memberAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionAttachFiles
	botAllow = memberAllow |
		discordgo.PermissionManageChannels |
		discordgo.PermissionManageMessages
)

// DiscordGateway implements Gateway over discord session
type DiscordGateway struct {
	Session     *discordgo.Session
	OwnerID     string
	StaffRoleID string
	CategoryID  string
	Color       int
}

func (g *DiscordGateway) botID() string {
	if g.Session.State != nil && g.Session.State.User != nil {
		return g.Session.State.User.ID
	}

	return ""
}

// CreateChannel creates text channel hidden from everyone except submitter, owner, staff and bot
func (g *DiscordGateway) CreateChannel(guildID, name, submitterID string) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    submitterID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow,
		},
	}

	if id := g.botID(); id != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    id,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: botAllow,
		})
	}

	if g.OwnerID != "" && g.OwnerID != submitterID {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    g.OwnerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow,
		})
	}

	if g.StaffRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    g.StaffRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberAllow,
		})
	}

	channel, err := g.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Appeal by <@%s>", submitterID),
		ParentID:             g.CategoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}

	return channel.ID, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}

	return s
}

// PostSummary posts submission with close button
func (g *DiscordGateway) PostSummary(channelID, submitterID string, submission Submission) error {
	_, err := g.Session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", submitterID),
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: "Appeal",
				Color: g.Color,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Submitted by", Value: fmt.Sprintf("<@%s>", submitterID)},
					{Name: "Punishment", Value: orNone(submission.Type)},
					{Name: "Reason", Value: orNone(submission.Reason)},
					{Name: "Additional information", Value: orNone(submission.Info)},
				},
			},
		},
		Components: button(CloseButtonID, "Close appeal", discordgo.DangerButton),
	})

	return err
}

// DirectMessage sends private message to user
func (g *DiscordGateway) DirectMessage(userID, content string) error {
	channel, err := g.Session.UserChannelCreate(userID)
	if err != nil {
		return err
	}

	_, err = g.Session.ChannelMessageSend(channel.ID, content)

	return err
}

// Send posts message to channel
func (g *DiscordGateway) Send(channelID, content string) error {
	_, err := g.Session.ChannelMessageSend(channelID, content)

	return err
}

// DeleteChannel deletes channel
func (g *DiscordGateway) DeleteChannel(channelID string) error {
	_, err := g.Session.ChannelDelete(channelID)

	return err
}

// ClearBotMessages deletes recent messages authored by bot
func (g *DiscordGateway) ClearBotMessages(channelID string) error {
	messages, err := g.Session.ChannelMessages(channelID, 100, "", "", "")
	if err != nil {
		return err
	}

	botID := g.botID()

	for _, message := range messages {
		if message.Author == nil || message.Author.ID != botID {
			continue
		}

		err = g.Session.ChannelMessageDelete(channelID, message.ID)
		if err != nil && !discordutil.IsNotFound(err) {
			return err
		}
	}

	return nil
}

// PostEntry posts open appeal button
func (g *DiscordGateway) PostEntry(channelID string) error {
	_, err := g.Session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Appeals",
				Description: "Press the button below to appeal a punishment. A private channel will be created for you.",
				Color:       g.Color,
			},
		},
		Components: button(EntryButtonID, "Open appeal", discordgo.PrimaryButton),
	})

	return err
}

// ChannelExists returns false when channel is gone
func (g *DiscordGateway) ChannelExists(channelID string) (bool, error) {
	_, err := g.Session.Channel(channelID)
	if discordutil.IsNotFound(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
