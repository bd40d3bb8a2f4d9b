// Package docs renders a Markdown command reference from a command tree.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/keshon/cmdtree/pkg/cmd"
)

// GeneralSection heads commands registered directly under the root.
const GeneralSection = "General"

// Sections renders one "### section" per top-level group, root commands
// first under GeneralSection. Commands without a handler are left out.
func Sections(tree *cmd.Tree) string {
	var buf bytes.Buffer
	root := tree.Root()

	writeSection(&buf, GeneralSection, root.Commands())
	for _, g := range root.Groups() {
		writeSection(&buf, g.Name(), collect(g, nil))
	}
	return buf.String()
}

// Render executes the template file at tmplPath with CommandSections set to
// Sections(tree). An empty tmplPath writes the sections alone.
func Render(w io.Writer, tree *cmd.Tree, tmplPath string) error {
	sections := Sections(tree)
	if tmplPath == "" {
		_, err := io.WriteString(w, sections)
		return err
	}
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, struct{ CommandSections string }{sections})
}

func collect(g *cmd.Group, out []*cmd.Command) []*cmd.Command {
	out = append(out, g.Commands()...)
	for _, sub := range g.Groups() {
		out = collect(sub, out)
	}
	return out
}

func writeSection(buf *bytes.Buffer, title string, commands []*cmd.Command) {
	var bound []*cmd.Command
	for _, c := range commands {
		if c.Handler() != nil {
			bound = append(bound, c)
		}
	}
	if len(bound) == 0 {
		return
	}
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}
	fmt.Fprintf(buf, "### %s\n\n", title)
	for _, c := range bound {
		fmt.Fprintf(buf, "* **`%s`**%s\n", usage(c), permissionNote(c))
		if c.Help() != "" {
			fmt.Fprintf(buf, "  %s\n", c.Help())
		}
		buf.WriteString("\n")
	}
}

// usage renders "/group sub cmd <required> [optional]".
func usage(c *cmd.Command) string {
	parts := []string{"/" + strings.ReplaceAll(c.Path(), cmd.PathSeparator, " ")}
	for _, a := range c.Arguments() {
		if a.Injected() {
			continue
		}
		if a.Required() {
			parts = append(parts, "<"+a.Name()+">")
		} else {
			parts = append(parts, "["+a.Name()+"]")
		}
	}
	return strings.Join(parts, " ")
}

func permissionNote(c *cmd.Command) string {
	if tag := c.EffectivePermission(); tag != "" {
		return " _(" + tag + ")_"
	}
	return ""
}
