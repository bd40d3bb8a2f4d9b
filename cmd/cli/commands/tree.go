package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keshon/cmdtree/pkg/cmd"
)

type argumentNode struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Required bool     `yaml:"required,omitempty"`
	Help     string   `yaml:"help,omitempty"`
	Choices  []string `yaml:"choices,omitempty"`
	Dynamic  bool     `yaml:"dynamic,omitempty"`
}

type commandNode struct {
	ID         int64          `yaml:"id"`
	Name       string         `yaml:"name"`
	Path       string         `yaml:"path"`
	Help       string         `yaml:"help,omitempty"`
	Permission string         `yaml:"permission,omitempty"`
	Bound      bool           `yaml:"bound"`
	Arguments  []argumentNode `yaml:"arguments,omitempty"`
}

type groupNode struct {
	ID         int64         `yaml:"id"`
	Name       string        `yaml:"name,omitempty"`
	Path       string        `yaml:"path,omitempty"`
	Help       string        `yaml:"help,omitempty"`
	Permission string        `yaml:"permission,omitempty"`
	Groups     []groupNode   `yaml:"groups,omitempty"`
	Commands   []commandNode `yaml:"commands,omitempty"`
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "tree",
		Short: "Print the command tree",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tree, done, err := opts.loadTree()
			if err != nil {
				return err
			}
			defer done()

			switch format {
			case "text":
				writeText(c.OutOrStdout(), tree.Root(), 0)
				return nil
			case "yaml":
				enc := yaml.NewEncoder(c.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(toGroupNode(tree.Root()))
			}
			return fmt.Errorf("unknown format %q (want text or yaml)", format)
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return c
}

func toGroupNode(g *cmd.Group) groupNode {
	n := groupNode{ID: g.ID(), Name: g.Name(), Path: g.Path(), Help: g.Help(), Permission: g.EffectivePermission()}
	for _, sub := range g.Groups() {
		n.Groups = append(n.Groups, toGroupNode(sub))
	}
	for _, c := range g.Commands() {
		n.Commands = append(n.Commands, toCommandNode(c))
	}
	return n
}

func toCommandNode(c *cmd.Command) commandNode {
	n := commandNode{
		ID:         c.ID(),
		Name:       c.Name(),
		Path:       c.Path(),
		Help:       c.Help(),
		Permission: c.EffectivePermission(),
		Bound:      c.Handler() != nil,
	}
	for _, a := range c.Arguments() {
		an := argumentNode{Name: a.Name(), Kind: a.Kind().String(), Required: a.Required(), Help: a.Help()}
		if a.Enumerated() {
			if a.Static() {
				an.Choices = a.Enum().Values()
			} else {
				an.Dynamic = true
			}
		}
		n.Arguments = append(n.Arguments, an)
	}
	return n
}

func writeText(w io.Writer, g *cmd.Group, depth int) {
	indent := strings.Repeat("  ", depth)
	if g.Name() != "" {
		fmt.Fprintf(w, "%s%s/ [%d]%s\n", indent, g.Name(), g.ID(), tagSuffix(g.EffectivePermission()))
		depth++
		indent += "  "
	}
	for _, sub := range g.Groups() {
		writeText(w, sub, depth)
	}
	for _, c := range g.Commands() {
		fmt.Fprintf(w, "%s%s [%d]%s\n", indent, c.Name(), c.ID(), tagSuffix(c.EffectivePermission()))
	}
}

func tagSuffix(tag string) string {
	if tag == "" {
		return ""
	}
	return " (" + tag + ")"
}
