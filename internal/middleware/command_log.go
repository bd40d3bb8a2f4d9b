package middleware

import (
	"context"
	"log"
	"time"

	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

// HistoryRecorder stores executed commands.
type HistoryRecorder interface {
	AppendCommandHistory(guildID string, entry storage.CommandHistory) error
}

// WithCommandLogger logs every executed command and, when history is not
// nil, appends it to the guild's command history.
func WithCommandLogger(history HistoryRecorder) cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
			start := time.Now()
			resp, err := next(ctx, inv)
			outcome := outcomeOf(resp, err)

			o, ok := originOf(inv.Data)
			if !ok {
				log.Printf("[INFO] /%s %s in %s", inv.Path, outcome, time.Since(start))
				return resp, err
			}
			log.Printf("[INFO] /%s by %s (%s) in guild %s: %s in %s",
				inv.Path, o.Username(), o.UserID(), o.GuildID(), outcome, time.Since(start))

			if history != nil {
				entry := storage.CommandHistory{
					ChannelID: o.ChannelID(),
					GuildID:   o.GuildID(),
					UserID:    o.UserID(),
					Username:  o.Username(),
					Command:   inv.Path,
					Outcome:   outcome,
					Datetime:  start,
				}
				if e := history.AppendCommandHistory(o.GuildID(), entry); e != nil {
					log.Printf("[WARN] Failed to log command /%s: %v", inv.Path, e)
				}
			}
			return resp, err
		}
	}
}

// WithInteractionLogger logs every routed interaction.
func WithInteractionLogger() cmd.InteractionMiddleware {
	return func(next cmd.InteractionHandler) cmd.InteractionHandler {
		return func(ctx context.Context, in *cmd.Interaction) (cmd.Response, error) {
			resp, err := next(ctx, in)
			user := "unknown"
			if o, ok := originOf(in.Data); ok {
				user = o.UserID()
			}
			log.Printf("[INFO] %s %q by %s: %s", in.Kind, in.ID, user, outcomeOf(resp, err))
			return resp, err
		}
	}
}

func outcomeOf(resp cmd.Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case resp.Status == cmd.StatusError:
		return "rejected"
	default:
		return "ok"
	}
}
