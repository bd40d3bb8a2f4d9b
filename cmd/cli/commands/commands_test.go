package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTreeText(t *testing.T) {
	out, err := run(t, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "slash/ [")
	assert.Contains(t, out, "  permissions/ [")
	assert.Contains(t, out, "    add [")
	assert.Contains(t, out, "(owners)")
	assert.True(t, strings.HasPrefix(out, "commands/"), out)
}

func TestTreeYAML(t *testing.T) {
	out, err := run(t, "tree", "--format", "yaml", "--known", "ping,help")
	require.NoError(t, err)

	var root groupNode
	require.NoError(t, yaml.Unmarshal([]byte(out), &root))
	assert.Empty(t, root.Name)
	require.Len(t, root.Groups, 2)
	slash := root.Groups[1]
	assert.Equal(t, "slash", slash.Name)
	assert.Equal(t, "owners", slash.Permission)
	require.Len(t, slash.Groups, 1)

	var add commandNode
	for _, c := range slash.Groups[0].Commands {
		if c.Name == "add" {
			add = c
		}
	}
	require.Equal(t, "slash.permissions.add", add.Path)
	assert.True(t, add.Bound)
	require.Len(t, add.Arguments, 3)
	assert.Equal(t, "mentionable", add.Arguments[0].Kind)
	assert.True(t, add.Arguments[1].Dynamic)
	assert.Equal(t, []string{"allow", "deny"}, add.Arguments[2].Choices)
}

func TestTreeUnknownFormat(t *testing.T) {
	_, err := run(t, "tree", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestResolve(t *testing.T) {
	out, err := run(t, "resolve", "commands.toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "path: commands.toggle\n")
	assert.Contains(t, out, "permission: owners\n")
	assert.Contains(t, out, "  group: string, required\n")

	_, err = run(t, "resolve", "slash.permissions")
	assert.ErrorContains(t, err, "no command")
}

func TestDecode(t *testing.T) {
	out, err := run(t, "--known", "ping", "decode", "slash.permissions.add", "who=<@&42>", "command=ping", "type=deny")
	require.NoError(t, err)
	assert.Equal(t, "who: <@&42> (mentionable)\ncommand: ping (string)\ntype: deny (string)\n", out)

	out, err = run(t, "decode", "help")
	require.NoError(t, err)
	assert.Equal(t, "view_as: <absent>\n", out)

	_, err = run(t, "--known", "ping", "decode", "slash.permissions.add", "who=42", "command=ping", "type=deny")
	assert.ErrorContains(t, err, "who")

	_, err = run(t, "decode", "help", "oops")
	assert.ErrorContains(t, err, "key=value")
}

func TestStorageFlagKeepsIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	first, err := run(t, "--storage", path, "resolve", "ping")
	require.NoError(t, err)
	second, err := run(t, "--storage", path, "resolve", "ping")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadme(t *testing.T) {
	out, err := run(t, "readme")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "### General\n\n* **`/ping`**"), out)
	assert.Contains(t, out, "* **`/slash permissions add <who> <command> <type>`** _(owners)_")

	dir := t.TempDir()
	tmpl := filepath.Join(dir, "README.md.tmpl")
	dst := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(tmpl, []byte("# Commands\n\n{{.CommandSections}}"), 0o644))
	_, err = run(t, "readme", "--template", tmpl, "-o", dst)
	require.NoError(t, err)
	written, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(written), "# Commands\n\n### General"))
}
