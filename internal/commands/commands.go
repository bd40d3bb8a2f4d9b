// Package commands holds the bot's built-in command groups: ping, help and
// the commands group that toggles command groups and shows their history.
package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

// SettingsGroup is the group holding toggle and log. It cannot be disabled.
const SettingsGroup = "commands"

// Store is the guild state the built-in commands read and write.
type Store interface {
	DisableGroup(guildID, group string) error
	EnableGroup(guildID, group string) error
	DisabledGroups(guildID string) ([]string, error)
	CommandHistory(guildID string) ([]storage.CommandHistory, error)
}

// Builtins builds the built-in commands. help and toggle need the finalized
// tree, which is handed over with Bind.
type Builtins struct {
	store Store
	tag   string
	tree  atomic.Pointer[cmd.Tree]
}

// New returns the built-ins. settingsTag is the permission tag of the
// commands group.
func New(store Store, settingsTag string) *Builtins {
	return &Builtins{store: store, tag: settingsTag}
}

// Bind hands over the finalized tree.
func (b *Builtins) Bind(t *cmd.Tree) { b.tree.Store(t) }

// Attach adds ping, help and the commands group to root.
func (b *Builtins) Attach(root *cmd.Group) error {
	if err := root.AddCommand(cmd.NewCommand("ping").
		SetHelp("Pong!").
		Handle(ping)); err != nil {
		return err
	}
	if err := root.AddCommand(cmd.NewCommand("help").
		SetHelp("Get a list of available commands").
		AddParam(cmd.NewArgument("view_as").
			SetHelp("View commands as groups or a flat list").
			SetChoices("group", "flat")).
		Handle(b.help)); err != nil {
		return err
	}

	settings := cmd.NewGroup(SettingsGroup, "Manage commands on this server").SetPermission(b.tag)
	if err := settings.AddCommand(cmd.NewCommand("toggle").
		SetHelp("Enable or disable a group of commands").
		AddParam(cmd.NewArgument("group").
			SetRequired(true).
			SetHelp("Group to toggle").
			SetAutocomplete(cmd.EnumFunc(b.toggleable))).
		AddParam(cmd.NewArgument("state").
			SetRequired(true).
			SetHelp("Enable or disable the group").
			SetChoices("enable", "disable")).
		Handle(b.toggle)); err != nil {
		return err
	}
	if err := settings.AddCommand(cmd.NewCommand("log").
		SetHelp("Review recent commands").
		Handle(b.log)); err != nil {
		return err
	}
	return root.AddGroup(settings)
}

// toggleable lists the first path segments that can be disabled.
func (b *Builtins) toggleable() []string {
	t := b.tree.Load()
	if t == nil {
		return nil
	}
	seen := map[string]bool{}
	for _, c := range t.Commands() {
		head, _, _ := strings.Cut(c.Path(), cmd.PathSeparator)
		if head != SettingsGroup {
			seen[head] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func guildOf(inv *cmd.Invocation) (string, bool) {
	o, ok := inv.Data.(interface{ GuildID() string })
	if !ok || o.GuildID() == "" {
		return "", false
	}
	return o.GuildID(), true
}

func quote(s string) string { return fmt.Sprintf("`%s`", s) }
