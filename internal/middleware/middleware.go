package middleware

import (
	"strings"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// Origin is implemented by transport payloads (Invocation.Data,
// Interaction.Data) that know where an event came from.
type Origin interface {
	GuildID() string
	ChannelID() string
	UserID() string
	Username() string
}

func originOf(data any) (Origin, bool) {
	o, ok := data.(Origin)
	return o, ok
}

// topGroup returns the first segment of a dotted path.
func topGroup(path string) string {
	head, _, _ := strings.Cut(path, cmd.PathSeparator)
	return head
}
