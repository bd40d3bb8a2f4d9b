package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshon/cmdtree/pkg/cmd"
)

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <path> [key=value...]",
		Short: "Decode options against a command's arguments",
		Args:  cobra.MinimumNArgs(1),
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
			raw, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			vals, err := cmd.Decode(found.Arguments(), raw)
			if err != nil {
				return err
			}

			out := c.OutOrStdout()
			for _, name := range vals.Names() {
				v, _ := vals.Lookup(name)
				if !v.Present {
					fmt.Fprintf(out, "%s: <absent>\n", name)
					continue
				}
				fmt.Fprintf(out, "%s: %v (%s)\n", name, v.Data, v.Kind)
			}
			return nil
		},
	}
}

func parsePairs(args []string) ([]cmd.RawOption, error) {
	raw := make([]cmd.RawOption, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		raw = append(raw, cmd.RawOption{Name: key, Value: value})
	}
	return raw, nil
}
