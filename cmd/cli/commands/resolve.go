package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show the command a dotted path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			tree, done, err := opts.loadTree()
			if err != nil {
				return err
			}
			defer done()

			found, ok := tree.Resolve(args[0])
			if !ok {
				return fmt.Errorf("no command at %q", args[0])
			}
			out := c.OutOrStdout()
			fmt.Fprintf(out, "path: %s\nid: %d\n", found.Path(), found.ID())
			if found.Help() != "" {
				fmt.Fprintf(out, "help: %s\n", found.Help())
			}
			if tag := found.EffectivePermission(); tag != "" {
				fmt.Fprintf(out, "permission: %s\n", tag)
			}
			for _, a := range found.Arguments() {
				req := "optional"
				if a.Required() {
					req = "required"
				}
				fmt.Fprintf(out, "  %s: %s, %s\n", a.Name(), a.Kind(), req)
			}
			return nil
		},
	}
}
