package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// AutocompleteChoices answers an autocomplete request from the focused
// argument's enum source: values starting with what the user typed,
// case-insensitively, at most 25 of them.
func AutocompleteChoices(tree *cmd.Tree, data discordgo.ApplicationCommandInteractionData) []*discordgo.ApplicationCommandOptionChoice {
	path, leaves := commandPath(data.Name, data.Options)
	c, ok := tree.Resolve(path)
	if !ok {
		return nil
	}

	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, o := range leaves {
		if o.Focused {
			focused = o
			break
		}
	}
	if focused == nil {
		return nil
	}
	arg, ok := c.Argument(focused.Name)
	if !ok || !arg.Enumerated() {
		return nil
	}

	typed, _ := focused.Value.(string)
	typed = strings.ToLower(typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, v := range arg.Enum().Values() {
		if !strings.HasPrefix(strings.ToLower(v), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
