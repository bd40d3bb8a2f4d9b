package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// AllowFunc decides whether the caller may run a command tagged with a
// permission tag.
type AllowFunc func(o Origin) bool

// WithPermissionTag gates every command whose effective permission is tag.
// Callers without an Origin are denied.
func WithPermissionTag(tag string, allow AllowFunc) cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
			if inv.Command == nil || inv.Command.EffectivePermission() != tag {
				return next(ctx, inv)
			}
			o, ok := originOf(inv.Data)
			if !ok || !allow(o) {
				user := "unknown"
				if ok {
					user = o.UserID()
				}
				log.Printf("[WARN] Denied /%s to user %s: requires %q", inv.Path, user, tag)
				return cmd.Failure("You are not allowed to use this command."), nil
			}
			return next(ctx, inv)
		}
	}
}

// WithInteractionPermission gates follow-up interactions whose identifier
// starts with prefix, e.g. buttons posted by a tagged command.
func WithInteractionPermission(prefix string, allow AllowFunc) cmd.InteractionMiddleware {
	return func(next cmd.InteractionHandler) cmd.InteractionHandler {
		return func(ctx context.Context, in *cmd.Interaction) (cmd.Response, error) {
			if !strings.HasPrefix(in.ID, prefix) {
				return next(ctx, in)
			}
			o, ok := originOf(in.Data)
			if !ok || !allow(o) {
				return cmd.Failure("You are not allowed to use this button."), nil
			}
			return next(ctx, in)
		}
	}
}
