// Package discordutil provides helpers shared by bot modules
package discordutil

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/bwmarrin/discordgo"
)

var (
	channelMention = regexp.MustCompile(`^(?:<#(\d+)>|(\d+))$`)
	roleMention    = regexp.MustCompile(`^(?:<@&(\d+)>|(\d+))$`)
	userMention    = regexp.MustCompile(`^(?:<@!?(\d+)>|(\d+))$`)
)

func statusCode(err error) int {
	var rest *discordgo.RESTError

	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}

	return 0
}

// IsNotFound returns true if err is discord REST 404 response
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// IsForbidden returns true if err is discord REST 403 response
func IsForbidden(err error) bool {
	return statusCode(err) == http.StatusForbidden
}

func match(reg *regexp.Regexp, s string) (string, bool) {
	m := reg.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	if m[1] != "" {
		return m[1], true
	}

	return m[2], true
}

// ParseChannel extracts channel ID from mention or raw ID
func ParseChannel(s string) (string, bool) {
	return match(channelMention, s)
}

// ParseRole extracts role ID from mention or raw ID
func ParseRole(s string) (string, bool) {
	return match(roleMention, s)
}

// ParseUser extracts user ID from mention or raw ID
func ParseUser(s string) (string, bool) {
	return match(userMention, s)
}

// ModalValue returns value of text input with given custom ID
func ModalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}

		for _, rc := range row.Components {
			if input, ok := rc.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}

	return ""
}

// InteractionUser returns user who triggered interaction in guild or direct message
func InteractionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}

	return i.User
}

// RespondEphemeral replies to interaction with message visible only to invoking user
func RespondEphemeral(session *discordgo.Session, i *discordgo.Interaction, content string) error {
	return session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// RoleAllowsAdmin returns true if role grants administrator permission
func RoleAllowsAdmin(role *discordgo.Role) bool {
	return role.Permissions&discordgo.PermissionAdministrator != 0
}

// AckEphemeral defers interaction response, answer is visible only to invoking user
func AckEphemeral(session *discordgo.Session, i *discordgo.Interaction) error {
	return session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// EditResponse replaces content of deferred interaction response
func EditResponse(session *discordgo.Session, i *discordgo.Interaction, content string) error {
	_, err := session.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &content,
	})

	return err
}

// RespondModal answers interaction with modal form
func RespondModal(session *discordgo.Session, i *discordgo.Interaction, modal *discordgo.InteractionResponseData) error {
	return session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modal,
	})
}
