package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 2

func (b *Builtins) log(_ context.Context, inv *cmd.Invocation) (cmd.Response, error) {
	guildID, ok := guildOf(inv)
	if !ok {
		return cmd.Failure("This command can only be used in a server."), nil
	}
	records, err := b.store.CommandHistory(guildID)
	if err != nil {
		return cmd.Failure(fmt.Sprintf("Failed to fetch command logs: %v", err)), nil
	}
	if len(records) == 0 {
		return cmd.Reply("No command history found."), nil
	}
	return cmd.Response{Content: FormatHistory(records), Ephemeral: true}, nil
}

// FormatHistory renders records newest first as a markdown code block that
// fits in one Discord message.
func FormatHistory(records []storage.CommandHistory) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-19s\t%-15s\t%-8s\t%s\n", "# Datetime", "# Username", "# Outcome", "# Command"))

	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		line := fmt.Sprintf("%-19s\t%-15s\t%-8s\t/%s\n",
			r.Datetime.Format("2006-01-02 15:04:05"),
			r.Username,
			r.Outcome,
			strings.ReplaceAll(r.Command, ".", " "),
		)
		if sb.Len()+len(line) > maxContentLength {
			break
		}
		sb.WriteString(line)
	}
	return codeLeftBlockWrapper + "\n" + sb.String() + codeRightBlockWrapper
}
