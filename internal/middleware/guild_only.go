package middleware

import (
	"context"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// WithGuildOnly rejects invocations from direct messages.
func WithGuildOnly() cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
			if o, ok := originOf(inv.Data); ok && o.GuildID() == "" {
				return cmd.Failure("This command can only be used in a server."), nil
			}
			return next(ctx, inv)
		}
	}
}
