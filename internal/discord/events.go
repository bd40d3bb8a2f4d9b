package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// ErrUnsupportedInteraction is returned for interaction types that carry no
// event for the engine, such as pings and autocomplete requests.
var ErrUnsupportedInteraction = errors.New("unsupported interaction type")

// EventFromInteraction translates a Discord interaction into an engine event.
// Application commands become a *cmd.CommandEvent whose path joins the command
// name with the nested sub-command group and sub-command names. Buttons,
// select menus and modal submits become a *cmd.InteractionEvent.
func EventFromInteraction(s Session, i *discordgo.InteractionCreate) (cmd.Event, error) {
	payload := &Payload{Session: s, Interaction: i}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		path, leaves := commandPath(data.Name, data.Options)
		return &cmd.CommandEvent{
			Path:    path,
			Options: rawOptions(leaves, data.Resolved),
			Inject: cmd.Injection{
				cmd.KindContext:     payload,
				cmd.KindInteraction: i,
			},
			Data: payload,
		}, nil

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		return &cmd.InteractionEvent{Interaction: &cmd.Interaction{
			ID:     data.CustomID,
			Kind:   cmd.InteractionComponent,
			Values: data.Values,
			Data:   payload,
		}}, nil

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		return &cmd.InteractionEvent{Interaction: &cmd.Interaction{
			ID:     data.CustomID,
			Kind:   cmd.InteractionModalSubmit,
			Fields: modalFields(data.Components),
			Data:   payload,
		}}, nil
	}
	return nil, ErrUnsupportedInteraction
}

// commandPath follows sub-command group and sub-command options down to the
// leaf options of the invoked command.
func commandPath(name string, opts []*discordgo.ApplicationCommandInteractionDataOption) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	parts := []string{name}
	for len(opts) == 1 {
		o := opts[0]
		if o.Type != discordgo.ApplicationCommandOptionSubCommandGroup && o.Type != discordgo.ApplicationCommandOptionSubCommand {
			break
		}
		parts = append(parts, o.Name)
		opts = o.Options
	}
	return strings.Join(parts, cmd.PathSeparator), opts
}

func rawOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) []cmd.RawOption {
	out := make([]cmd.RawOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, cmd.RawOption{Name: o.Name, Value: optionValue(o, resolved)})
	}
	return out
}

// optionValue canonicalises user, role, channel and mentionable ids so the
// decoder does not need Discord's resolved data.
func optionValue(o *discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) any {
	id, isString := o.Value.(string)
	switch o.Type {
	case discordgo.ApplicationCommandOptionUser:
		if isString {
			return cmd.Mention{Type: cmd.MentionUser, ID: id}.Canonical()
		}
	case discordgo.ApplicationCommandOptionRole:
		if isString {
			return cmd.Mention{Type: cmd.MentionRole, ID: id}.Canonical()
		}
	case discordgo.ApplicationCommandOptionChannel:
		if isString {
			return cmd.Mention{Type: cmd.MentionChannel, ID: id}.Canonical()
		}
	case discordgo.ApplicationCommandOptionMentionable:
		if isString {
			if t, ok := mentionableType(id, resolved); ok {
				return cmd.Mention{Type: t, ID: id}.Canonical()
			}
		}
	}
	return o.Value
}

func mentionableType(id string, resolved *discordgo.ApplicationCommandInteractionDataResolved) (cmd.MentionType, bool) {
	if resolved == nil {
		return 0, false
	}
	if _, ok := resolved.Users[id]; ok {
		return cmd.MentionUser, true
	}
	if _, ok := resolved.Members[id]; ok {
		return cmd.MentionUser, true
	}
	if _, ok := resolved.Roles[id]; ok {
		return cmd.MentionRole, true
	}
	return 0, false
}

func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	for _, c := range components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		}
		for _, inner := range row {
			switch in := inner.(type) {
			case *discordgo.TextInput:
				fields[in.CustomID] = in.Value
			case discordgo.TextInput:
				fields[in.CustomID] = in.Value
			}
		}
	}
	return fields
}
