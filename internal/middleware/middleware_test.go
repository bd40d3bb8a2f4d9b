package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

type origin struct {
	guild, channel, user string
}

func (o origin) GuildID() string   { return o.guild }
func (o origin) ChannelID() string { return o.channel }
func (o origin) UserID() string    { return o.user }
func (o origin) Username() string  { return "user-" + o.user }

type fakeStore struct {
	disabled map[string]bool
	err      error
	history  []storage.CommandHistory
}

func (f *fakeStore) IsGroupDisabled(guildID, group string) (bool, error) {
	return f.disabled[guildID+"/"+group], f.err
}

func (f *fakeStore) AppendCommandHistory(guildID string, entry storage.CommandHistory) error {
	f.history = append(f.history, entry)
	return nil
}

// dispatcher builds slash.permissions.add (tag owners) and ping, both
// replying "ran".
func dispatcher(t *testing.T, mws ...cmd.Middleware) *cmd.Dispatcher {
	t.Helper()
	ran := func(context.Context, *cmd.Invocation) (cmd.Response, error) {
		return cmd.Success("ran"), nil
	}
	perms := cmd.NewGroup("permissions", "")
	require.NoError(t, perms.AddCommand(cmd.NewCommand("add").Handle(ran)))
	slash := cmd.NewGroup("slash", "").SetPermission("owners")
	require.NoError(t, slash.AddGroup(perms))

	root := cmd.NewGroup("", "")
	require.NoError(t, root.AddGroup(slash))
	require.NoError(t, root.AddCommand(cmd.NewCommand("ping").Handle(ran)))
	tree, err := cmd.Finalize(root)
	require.NoError(t, err)
	return cmd.NewDispatcher(tree, mws...)
}

func run(d *cmd.Dispatcher, path string, data any) cmd.Result {
	return d.Dispatch(context.Background(), path, nil, nil, data)
}

func TestWithGuildOnly(t *testing.T) {
	d := dispatcher(t, WithGuildOnly())

	res := run(d, "ping", origin{user: "1"})
	assert.Equal(t, cmd.StatusError, res.Response.Status)

	res = run(d, "ping", origin{guild: "g", user: "1"})
	assert.Equal(t, "ran", res.Response.Content)

	res = run(d, "ping", nil)
	assert.Equal(t, "ran", res.Response.Content)
}

func TestWithPermissionTag(t *testing.T) {
	owners := func(o Origin) bool { return o.UserID() == "owner" }
	d := dispatcher(t, WithPermissionTag("owners", owners))

	cases := []struct {
		name string
		path string
		data any
		want string
	}{
		{"owner on tagged command", "slash.permissions.add", origin{guild: "g", user: "owner"}, "ran"},
		{"stranger on tagged command", "slash.permissions.add", origin{guild: "g", user: "x"}, "You are not allowed to use this command."},
		{"no origin on tagged command", "slash.permissions.add", nil, "You are not allowed to use this command."},
		{"stranger on untagged command", "ping", origin{guild: "g", user: "x"}, "ran"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := run(d, tc.path, tc.data)
			require.True(t, res.Matched)
			require.NoError(t, res.Err)
			assert.Equal(t, tc.want, res.Response.Content)
		})
	}
}

func TestWithInteractionPermission(t *testing.T) {
	r := cmd.NewRouter(WithInteractionPermission("slash.permissions.", func(o Origin) bool {
		return o.UserID() == "owner"
	}))
	ok := func(context.Context, *cmd.Interaction) (cmd.Response, error) { return cmd.Reply("ok"), nil }
	require.NoError(t, r.Register("slash.permissions.refresh", ok))
	require.NoError(t, r.Register("poll:1", ok))

	denied := r.Dispatch(context.Background(), &cmd.Interaction{ID: "slash.permissions.refresh", Data: origin{user: "x"}})
	assert.Equal(t, cmd.StatusError, denied.Response.Status)

	allowed := r.Dispatch(context.Background(), &cmd.Interaction{ID: "slash.permissions.refresh", Data: origin{user: "owner"}})
	assert.Equal(t, "ok", allowed.Response.Content)

	other := r.Dispatch(context.Background(), &cmd.Interaction{ID: "poll:1", Data: origin{user: "x"}})
	assert.Equal(t, "ok", other.Response.Content)
}

func TestWithGroupAccessCheck(t *testing.T) {
	store := &fakeStore{disabled: map[string]bool{"g1/slash": true}}
	d := dispatcher(t, WithGroupAccessCheck(store))

	res := run(d, "slash.permissions.add", origin{guild: "g1"})
	assert.Equal(t, "This command is disabled on this server.", res.Response.Content)

	res = run(d, "slash.permissions.add", origin{guild: "g2"})
	assert.Equal(t, "ran", res.Response.Content)

	res = run(d, "ping", origin{guild: "g1"})
	assert.Equal(t, "ran", res.Response.Content)

	store.err = errors.New("disk")
	res = run(d, "slash.permissions.add", origin{guild: "g3"})
	assert.Equal(t, "ran", res.Response.Content)
}

func TestWithCommandLogger(t *testing.T) {
	store := &fakeStore{}
	d := dispatcher(t, WithCommandLogger(store), WithGuildOnly())

	run(d, "ping", origin{guild: "g1", channel: "c1", user: "1"})
	run(d, "ping", origin{user: "2"})
	run(d, "ping", nil)

	require.Len(t, store.history, 2)
	assert.Equal(t, "ping", store.history[0].Command)
	assert.Equal(t, "ok", store.history[0].Outcome)
	assert.Equal(t, "c1", store.history[0].ChannelID)
	assert.Equal(t, "user-1", store.history[0].Username)
	assert.Equal(t, "rejected", store.history[1].Outcome)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "error", outcomeOf(cmd.Response{}, errors.New("x")))
	assert.Equal(t, "rejected", outcomeOf(cmd.Failure("no"), nil))
	assert.Equal(t, "ok", outcomeOf(cmd.Reply("yes"), nil))
	assert.Equal(t, "slash", topGroup("slash.permissions.add"))
	assert.Equal(t, "ping", topGroup("ping"))
}
