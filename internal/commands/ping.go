package commands

import (
	"context"

	"github.com/keshon/cmdtree/pkg/cmd"
)

func ping(context.Context, *cmd.Invocation) (cmd.Response, error) {
	return cmd.Reply("🏓 Pong!"), nil
}
