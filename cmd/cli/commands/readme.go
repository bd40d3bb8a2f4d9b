package commands

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/keshon/cmdtree/internal/docs"
)

func newReadmeCmd(opts *rootOptions) *cobra.Command {
	var tmplPath, outPath string
	c := &cobra.Command{
		Use:   "readme",
		Short: "Render the command reference as Markdown",
		Long: `Render the command reference as Markdown. With --template, the file is
executed as a text/template with {{.CommandSections}} set to the reference.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tree, done, err := opts.loadTree()
			if err != nil {
				return err
			}
			defer done()

			if outPath == "" {
				return docs.Render(c.OutOrStdout(), tree, tmplPath)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := docs.Render(f, tree, tmplPath); err != nil {
				return err
			}
			log.Printf("[INFO] %s updated with current commands", outPath)
			return nil
		},
	}
	c.Flags().StringVar(&tmplPath, "template", "", "template file, e.g. README.md.tmpl")
	c.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return c
}
