package middleware

import (
	"context"
	"log"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// GroupChecker reports whether a top-level group is disabled in a guild.
type GroupChecker interface {
	IsGroupDisabled(guildID, group string) (bool, error)
}

// WithGroupAccessCheck rejects commands whose top-level group is disabled
// in the caller's guild. Storage errors fail open.
func WithGroupAccessCheck(groups GroupChecker) cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
			o, ok := originOf(inv.Data)
			if !ok || o.GuildID() == "" {
				return next(ctx, inv)
			}
			group := topGroup(inv.Path)
			disabled, err := groups.IsGroupDisabled(o.GuildID(), group)
			if err != nil {
				log.Printf("[WARN] Failed to check group %q in guild %s: %v", group, o.GuildID(), err)
				return next(ctx, inv)
			}
			if disabled {
				return cmd.Failure("This command is disabled on this server."), nil
			}
			return next(ctx, inv)
		}
	}
}
