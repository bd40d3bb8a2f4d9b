package commands

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/keshon/cmdtree/pkg/cmd"
)

func (b *Builtins) toggle(_ context.Context, inv *cmd.Invocation) (cmd.Response, error) {
	guildID, ok := guildOf(inv)
	if !ok {
		return cmd.Failure("This command can only be used in a server."), nil
	}
	group, _ := inv.Args.StringValue("group")
	state, _ := inv.Args.StringValue("state")

	if state == "disable" {
		if err := b.store.DisableGroup(guildID, group); err != nil {
			log.Printf("[ERR] Failed to disable group %s in %s: %v", group, guildID, err)
			return cmd.Failure("Failed to disable the group."), nil
		}
		return cmd.Success(fmt.Sprintf("Group %s disabled.", quote(group))), nil
	}

	disabled, err := b.store.DisabledGroups(guildID)
	if err == nil && !slices.Contains(disabled, group) {
		return cmd.Reply(fmt.Sprintf("Group %s is already enabled.", quote(group))), nil
	}
	if err := b.store.EnableGroup(guildID, group); err != nil {
		log.Printf("[ERR] Failed to enable group %s in %s: %v", group, guildID, err)
		return cmd.Failure("Failed to enable the group."), nil
	}
	return cmd.Success(fmt.Sprintf("Group %s enabled.", quote(group))), nil
}
