package discord

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// ErrTooDeep is returned when a tree nests deeper than a top-level command,
// a sub-command group and a sub-command.
var ErrTooDeep = errors.New("command tree nests deeper than discord allows")

const (
	maxDescription = 100
	maxChoices     = 25
)

var optionTypes = map[cmd.Kind]discordgo.ApplicationCommandOptionType{
	cmd.KindString:      discordgo.ApplicationCommandOptionString,
	cmd.KindInteger:     discordgo.ApplicationCommandOptionInteger,
	cmd.KindNumber:      discordgo.ApplicationCommandOptionNumber,
	cmd.KindBoolean:     discordgo.ApplicationCommandOptionBoolean,
	cmd.KindUser:        discordgo.ApplicationCommandOptionUser,
	cmd.KindRole:        discordgo.ApplicationCommandOptionRole,
	cmd.KindChannel:     discordgo.ApplicationCommandOptionChannel,
	cmd.KindMentionable: discordgo.ApplicationCommandOptionMentionable,
}

// Definitions turns a finalized tree into slash command definitions.
//
// A named root becomes one top-level command. An anonymous root contributes
// each of its commands and groups as top-level commands instead. Below a
// top-level group, groups become sub-command groups and commands become
// sub-commands.
func Definitions(tree *cmd.Tree) ([]*discordgo.ApplicationCommand, error) {
	root := tree.Root()
	if root.Name() != "" {
		def, err := groupDefinition(root)
		if err != nil {
			return nil, err
		}
		return []*discordgo.ApplicationCommand{def}, nil
	}

	var defs []*discordgo.ApplicationCommand
	for _, c := range root.Commands() {
		defs = append(defs, &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: describe(c.Help(), c.Name()),
			Type:        discordgo.ChatApplicationCommand,
			Options:     argumentOptions(c),
		})
	}
	for _, g := range root.Groups() {
		def, err := groupDefinition(g)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func groupDefinition(g *cmd.Group) (*discordgo.ApplicationCommand, error) {
	def := &discordgo.ApplicationCommand{
		Name:        g.Name(),
		Description: describe(g.Help(), g.Name()),
		Type:        discordgo.ChatApplicationCommand,
	}
	for _, c := range g.Commands() {
		def.Options = append(def.Options, subCommand(c))
	}
	for _, sub := range g.Groups() {
		if len(sub.Groups()) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrTooDeep, sub.Groups()[0].Path())
		}
		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Name:        sub.Name(),
			Description: describe(sub.Help(), sub.Name()),
		}
		for _, c := range sub.Commands() {
			opt.Options = append(opt.Options, subCommand(c))
		}
		def.Options = append(def.Options, opt)
	}
	return def, nil
}

func subCommand(c *cmd.Command) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        c.Name(),
		Description: describe(c.Help(), c.Name()),
		Options:     argumentOptions(c),
	}
}

// argumentOptions maps the decodable arguments of c. Discord wants required
// options first.
func argumentOptions(c *cmd.Command) []*discordgo.ApplicationCommandOption {
	var opts []*discordgo.ApplicationCommandOption
	for _, a := range c.Arguments() {
		t, ok := optionTypes[a.Kind()]
		if !ok {
			continue
		}
		opt := &discordgo.ApplicationCommandOption{
			Type:        t,
			Name:        a.Name(),
			Description: describe(a.Help(), a.Name()),
			Required:    a.Required(),
		}
		if a.Enumerated() {
			values := a.Enum().Values()
			if a.Static() && len(values) <= maxChoices {
				for _, v := range values {
					opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
				}
			} else {
				opt.Autocomplete = true
			}
		}
		opts = append(opts, opt)
	}
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].Required && !opts[j].Required
	})
	return opts
}

func describe(help, name string) string {
	if help == "" {
		help = name
	}
	// Discord counts characters, not bytes.
	if runes := []rune(help); len(runes) > maxDescription {
		help = string(runes[:maxDescription-3]) + "..."
	}
	return help
}
