package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/cmdtree/pkg/cmd"
)

const (
	EmbedColor   = 0xb01e66
	SuccessColor = 0x2e7d32
	ErrorColor   = 0xc62828
)

var buttonStyles = map[cmd.ButtonStyle]discordgo.ButtonStyle{
	cmd.ButtonPrimary:   discordgo.PrimaryButton,
	cmd.ButtonSecondary: discordgo.SecondaryButton,
	cmd.ButtonDanger:    discordgo.DangerButton,
}

// maxButtonsPerRow is Discord's limit on buttons in one action row.
const maxButtonsPerRow = 5

// ResponseFromResult turns an engine result into what the user sees. Decode
// errors are shown to the caller; other handler errors are logged and
// answered with a generic notice.
func ResponseFromResult(res cmd.Result) cmd.Response {
	if res.Err == nil {
		return res.Response
	}
	if cmd.IsDecodeError(res.Err) {
		return cmd.Failure(res.Err.Error())
	}
	log.Printf("[ERR] %s failed: %v", res.Target, res.Err)
	if res.Response.Content != "" {
		return res.Response
	}
	return cmd.Failure("Something went wrong while running this command.")
}

func embed(r cmd.Response) *discordgo.MessageEmbed {
	color := EmbedColor
	switch r.Status {
	case cmd.StatusSuccess:
		color = SuccessColor
	case cmd.StatusError:
		color = ErrorColor
	}
	return &discordgo.MessageEmbed{Description: r.Content, Color: color}
}

func components(buttons []cmd.Button) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(buttons))
		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				CustomID: b.ID,
				Label:    b.Label,
				Style:    buttonStyles[b.Style],
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// InteractionResponse renders r for an interaction reply.
func InteractionResponse(r cmd.Response) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed(r)},
		Components: components(r.Buttons()),
	}
	typ := discordgo.InteractionResponseChannelMessageWithSource
	if r.Update {
		typ = discordgo.InteractionResponseUpdateMessage
		// An update with no buttons removes the old ones.
		if data.Components == nil {
			data.Components = []discordgo.MessageComponent{}
		}
	} else if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{Type: typ, Data: data}
}

// MessageSend renders r as a channel message, for text commands.
func MessageSend(r cmd.Response) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed(r)},
		Components: components(r.Buttons()),
	}
}

// Respond answers an interaction with r.
func Respond(s Session, i *discordgo.InteractionCreate, r cmd.Response) error {
	return s.InteractionRespond(i.Interaction, InteractionResponse(r))
}

// RespondChoices answers an autocomplete request.
func RespondChoices(s Session, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}
