// Package commands implements the cmdtree CLI with cobra.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keshon/cmdtree/internal/app"
	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

type rootOptions struct {
	storagePath string
	known       []string
}

// NewRootCmd builds the CLI with its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "cmdtree",
		Short: "Inspect the bot's command tree offline",
		Long: `cmdtree builds the same command tree the Discord bot serves and lets you
inspect it without connecting to Discord.

Examples:
  cmdtree tree --format yaml
  cmdtree resolve slash.permissions.add
  cmdtree decode slash.permissions.add who=<@123> command=ping type=allow
  cmdtree readme --template README.md.tmpl -o README.md`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.storagePath, "storage", "", "datastore file for stable ids and remote command names")
	rootCmd.PersistentFlags().StringSliceVar(&opts.known, "known", nil, "remote command names offered when no datastore is given")

	rootCmd.AddCommand(
		newTreeCmd(opts),
		newResolveCmd(opts),
		newDecodeCmd(opts),
		newReadmeCmd(opts),
	)
	return rootCmd
}

// loadTree builds the tree. With --storage, ids and dynamic enums come from
// the datastore; otherwise from --known.
func (o *rootOptions) loadTree() (*cmd.Tree, func(), error) {
	if o.storagePath == "" {
		tree, err := app.Build(app.Offline{Known: o.known}, nil, cmd.NewRouter())
		return tree, func() {}, err
	}

	store, err := storage.New(o.storagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	tree, err := app.Build(store, nil, cmd.NewRouter(), cmd.WithIDLedger(store.IDLedger()))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return tree, func() { store.Close() }, nil
}
