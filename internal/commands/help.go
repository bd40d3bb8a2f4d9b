package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/cmdtree/pkg/cmd"
)

func (b *Builtins) help(_ context.Context, inv *cmd.Invocation) (cmd.Response, error) {
	t := b.tree.Load()
	if t == nil {
		return cmd.Failure("Help is not available yet."), nil
	}
	viewAs, _ := inv.Args.StringValue("view_as")
	if viewAs == "flat" {
		return cmd.Reply(HelpFlat(t)), nil
	}
	return cmd.Reply(HelpByGroup(t)), nil
}

func helpLine(c *cmd.Command) string {
	name := strings.ReplaceAll(c.Path(), cmd.PathSeparator, " ")
	if c.Help() == "" {
		return fmt.Sprintf("`%s`\n", name)
	}
	return fmt.Sprintf("`%s` - %s\n", name, c.Help())
}

// HelpFlat lists every bound command sorted by path.
func HelpFlat(t *cmd.Tree) string {
	cmds := bound(t)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Path() < cmds[j].Path() })

	var sb strings.Builder
	for _, c := range cmds {
		sb.WriteString(helpLine(c))
	}
	return sb.String()
}

// HelpByGroup lists bound commands under their parent group's path. Commands
// of an anonymous root are listed first, without a heading.
func HelpByGroup(t *cmd.Tree) string {
	byGroup := map[string][]*cmd.Command{}
	for _, c := range bound(t) {
		byGroup[c.Parent().Path()] = append(byGroup[c.Parent().Path()], c)
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var sb strings.Builder
	for _, g := range groups {
		if g != "" {
			sb.WriteString(fmt.Sprintf("**%s**\n", strings.ReplaceAll(g, cmd.PathSeparator, " ")))
		}
		for _, c := range byGroup[g] {
			sb.WriteString(helpLine(c))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func bound(t *cmd.Tree) []*cmd.Command {
	var out []*cmd.Command
	for _, c := range t.Commands() {
		if c.Handler() != nil {
			out = append(out, c)
		}
	}
	return out
}
