package discord

import (
	"strings"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// ParseText reads a prefixed chat command such as "!slash permissions add
// who=<@1> command=ping type=allow". The longest run of leading words that
// resolves to a command becomes the path. Remaining words are key=value
// options; a word without "=" fills the next unfilled argument, required
// arguments first, each in declaration order. ok is false when the text has
// no prefix or no words resolve.
func ParseText(tree *cmd.Tree, prefix, content string) (path string, opts []cmd.RawOption, ok bool) {
	rest, found := strings.CutPrefix(content, prefix)
	if !found || prefix == "" {
		return "", nil, false
	}
	words := strings.Fields(rest)

	var c *cmd.Command
	n := 0
	for i := len(words); i > 0; i-- {
		if hit, resolved := tree.Resolve(strings.Join(words[:i], cmd.PathSeparator)); resolved {
			c, n = hit, i
			break
		}
	}
	if c == nil {
		return "", nil, false
	}

	filled := map[string]bool{}
	var positional []string
	for _, w := range words[n:] {
		key, value, isPair := strings.Cut(w, "=")
		if isPair && key != "" {
			opts = append(opts, cmd.RawOption{Name: key, Value: value})
			filled[key] = true
			continue
		}
		positional = append(positional, w)
	}
	for _, required := range []bool{true, false} {
		for _, a := range c.Arguments() {
			if len(positional) == 0 {
				break
			}
			if a.Injected() || a.Required() != required || filled[a.Name()] {
				continue
			}
			opts = append(opts, cmd.RawOption{Name: a.Name(), Value: positional[0]})
			positional = positional[1:]
		}
	}
	return c.Path(), opts, true
}
