package cmd

import "strings"

// MentionType tells what a Mention points at.
type MentionType int

const (
	MentionUser MentionType = iota + 1
	MentionRole
	MentionChannel
)

func (t MentionType) String() string {
	switch t {
	case MentionUser:
		return "user"
	case MentionRole:
		return "role"
	case MentionChannel:
		return "channel"
	}
	return "unknown"
}

// Mention is a decoded User, Role, Channel or Mentionable value.
type Mention struct {
	Type MentionType
	ID   string
}

// String renders the mention in the chat markup form.
func (m Mention) String() string {
	switch m.Type {
	case MentionUser:
		return "<@" + m.ID + ">"
	case MentionRole:
		return "<@&" + m.ID + ">"
	case MentionChannel:
		return "<#" + m.ID + ">"
	}
	return m.ID
}

// Canonical renders the transport independent form read back by the
// decoder, e.g. "<user:123>".
func (m Mention) Canonical() string {
	return "<" + m.Type.String() + ":" + m.ID + ">"
}

// ParseMention reads "<@id>", "<@!id>", "<@&id>", "<#id>", the canonical
// "<user:id>", "<role:id>", "<channel:id>" forms, and bare ids. A bare id
// has Type zero: the caller decides what it refers to.
func ParseMention(s string) (Mention, bool) {
	if isSnowflake(s) {
		return Mention{ID: s}, true
	}
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return Mention{}, false
	}
	body := s[1 : len(s)-1]

	var m Mention
	switch {
	case strings.HasPrefix(body, "@&"):
		m = Mention{Type: MentionRole, ID: body[2:]}
	case strings.HasPrefix(body, "@!"):
		m = Mention{Type: MentionUser, ID: body[2:]}
	case strings.HasPrefix(body, "@"):
		m = Mention{Type: MentionUser, ID: body[1:]}
	case strings.HasPrefix(body, "#"):
		m = Mention{Type: MentionChannel, ID: body[1:]}
	default:
		kind, id, ok := strings.Cut(body, ":")
		if !ok {
			return Mention{}, false
		}
		switch kind {
		case "user":
			m = Mention{Type: MentionUser, ID: id}
		case "role":
			m = Mention{Type: MentionRole, ID: id}
		case "channel":
			m = Mention{Type: MentionChannel, ID: id}
		default:
			return Mention{}, false
		}
	}
	if !isSnowflake(m.ID) {
		return Mention{}, false
	}
	return m, true
}

func isSnowflake(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
