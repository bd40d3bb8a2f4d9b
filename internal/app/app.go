// Package app assembles the bot's command tree and interaction router so the
// Discord binary and the offline CLI share one definition.
package app

import (
	"fmt"

	"github.com/keshon/cmdtree/internal/commands"
	"github.com/keshon/cmdtree/internal/permissions"
	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

// Store is everything the built-in command groups persist.
type Store interface {
	commands.Store
	permissions.RemoteCommands
}

// Build registers the permission interactions on router and returns the
// finalized tree: ping, help, the commands group and slash → permissions.
func Build(store Store, api permissions.API, router *cmd.Router, opts ...cmd.FinalizeOption) (*cmd.Tree, error) {
	perms := permissions.New(api, store, router)
	if err := perms.Register(); err != nil {
		return nil, fmt.Errorf("register permission interactions: %w", err)
	}
	builtins := commands.New(store, permissions.OwnersTag)

	root := cmd.NewGroup("", "")
	if err := builtins.Attach(root); err != nil {
		return nil, fmt.Errorf("attach built-in commands: %w", err)
	}
	if err := root.AddGroup(perms.Group()); err != nil {
		return nil, fmt.Errorf("attach permissions group: %w", err)
	}

	tree, err := cmd.Finalize(root, opts...)
	if err != nil {
		return nil, fmt.Errorf("finalize command tree: %w", err)
	}
	builtins.Bind(tree)
	return tree, nil
}

// Offline is a Store with no guild state, for inspecting the tree without
// a database.
type Offline struct {
	// Known is returned as the remote command names.
	Known []string
}

var _ Store = Offline{}

func (Offline) DisableGroup(string, string) error { return nil }

func (Offline) EnableGroup(string, string) error { return nil }

func (Offline) DisabledGroups(string) ([]string, error) { return nil, nil }

func (Offline) CommandHistory(string) ([]storage.CommandHistory, error) { return nil, nil }

func (Offline) RemoteCommand(string, string) (storage.RemoteCommand, bool, error) {
	return storage.RemoteCommand{}, false, nil
}

func (Offline) RemoteCommands(string) (map[string]storage.RemoteCommand, error) { return nil, nil }

func (o Offline) KnownCommandNames() ([]string, error) { return o.Known, nil }
