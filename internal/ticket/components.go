package ticket

import "github.com/bwmarrin/discordgo"

// Interaction custom IDs
const (
	EntryButtonID    = "appeal_open"
	SubmitModalID    = "appeal_submit"
	CloseButtonID    = "appeal_close"
	CloseModalID     = "appeal_close_modal"
	InputType        = "appeal_type"
	InputReason      = "appeal_reason"
	InputInfo        = "appeal_info"
	InputCloseReason = "appeal_close_reason"
)

func textInput(id, label, placeholder string, style discordgo.TextInputStyle, required bool, max int) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    id,
				Label:       label,
				Style:       style,
				Placeholder: placeholder,
				Required:    required,
				MaxLength:   max,
			},
		},
	}
}

// SubmitModal returns appeal submission form
func SubmitModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: SubmitModalID,
		Title:    "Appeal a punishment",
		Components: []discordgo.MessageComponent{
			textInput(InputType, "Punishment type", "ban, mute, warn...", discordgo.TextInputShort, true, 50),
			textInput(InputReason, "Why should it be lifted?", "", discordgo.TextInputParagraph, true, 1000),
			textInput(InputInfo, "Anything else", "", discordgo.TextInputParagraph, false, 1000),
		},
	}
}

// CloseModal returns appeal closing form
func CloseModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: CloseModalID,
		Title:    "Close appeal",
		Components: []discordgo.MessageComponent{
			textInput(InputCloseReason, "Decision", "", discordgo.TextInputParagraph, true, 1000),
		},
	}
}

func button(id, label string, style discordgo.ButtonStyle) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: id,
					Label:    label,
					Style:    style,
				},
			},
		},
	}
}
