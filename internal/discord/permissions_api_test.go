package discord

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/cmdtree/internal/permissions"
	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

func TestPermissionsAPI(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	api := NewPermissionsAPI(session, func() string { return "app" })

	_, err := api.CommandPermissions(ctx, "g1", "c1")
	assert.ErrorIs(t, err, permissions.ErrNoPermissions)

	want := []permissions.Permission{
		{ID: "u1", Type: cmd.MentionUser, Allow: true},
		{ID: "r1", Type: cmd.MentionRole, Allow: false},
	}
	require.NoError(t, api.SetCommandPermissions(ctx, "g1", "c1", want))

	stored := session.perms["c1"]
	require.Len(t, stored, 2)
	assert.Equal(t, discordgo.ApplicationCommandPermissionTypeUser, stored[0].Type)
	assert.Equal(t, discordgo.ApplicationCommandPermissionTypeRole, stored[1].Type)

	got, err := api.CommandPermissions(ctx, "g1", "c1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	session.perms["c2"] = []*discordgo.ApplicationCommandPermissions{
		{ID: "ch1", Type: discordgo.ApplicationCommandPermissionTypeChannel, Permission: true},
		{ID: "r2", Type: discordgo.ApplicationCommandPermissionTypeRole, Permission: true},
	}
	all, err := api.GuildPermissions(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, want, all["c1"])
	assert.Equal(t, []permissions.Permission{
		{ID: "ch1", Type: cmd.MentionChannel, Allow: true},
		{ID: "r2", Type: cmd.MentionRole, Allow: true},
	}, all["c2"])
}

func TestPermissionsAPI_ReadFailure(t *testing.T) {
	session := newFakeSession()
	session.permsErr = &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"}}
	api := NewPermissionsAPI(session, func() string { return "app" })

	_, err := api.CommandPermissions(context.Background(), "g1", "c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, permissions.ErrNoPermissions)
}

type guildOrigin string

func (g guildOrigin) GuildID() string   { return string(g) }
func (g guildOrigin) ChannelID() string { return "c" }
func (g guildOrigin) UserID() string    { return "owner" }
func (g guildOrigin) Username() string  { return "owner" }

func TestPermissionsAdd_KeepsOtherRules(t *testing.T) {
	session := newFakeSession()
	session.perms["c2"] = []*discordgo.ApplicationCommandPermissions{
		{ID: "ch1", Type: discordgo.ApplicationCommandPermissionTypeChannel, Permission: false},
		{ID: "r2", Type: discordgo.ApplicationCommandPermissionTypeRole, Permission: true},
	}
	store := newStore(t)
	require.NoError(t, store.SetRemoteCommands("g1", map[string]storage.RemoteCommand{"ping": {ID: "c2"}}))

	router := cmd.NewRouter()
	comp := permissions.New(NewPermissionsAPI(session, func() string { return "app" }), store, router)
	tree, err := cmd.Finalize(comp.Group())
	require.NoError(t, err)
	engine := cmd.NewEngine(cmd.NewDispatcher(tree), router)

	add := func() cmd.Result {
		return engine.Handle(context.Background(), &cmd.CommandEvent{
			Path: "slash.permissions.add",
			Options: []cmd.RawOption{
				{Name: "who", Value: "<user:7>"},
				{Name: "command", Value: "ping"},
				{Name: "type", Value: "allow"},
			},
			Data: guildOrigin("g1"),
		})
	}

	res := add()
	require.NoError(t, res.Err)
	assert.Contains(t, res.Response.Content, "has been added")
	assert.Equal(t, []*discordgo.ApplicationCommandPermissions{
		{ID: "ch1", Type: discordgo.ApplicationCommandPermissionTypeChannel, Permission: false},
		{ID: "r2", Type: discordgo.ApplicationCommandPermissionTypeRole, Permission: true},
		{ID: "7", Type: discordgo.ApplicationCommandPermissionTypeUser, Permission: true},
	}, session.perms["c2"])

	session.permsErr = &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusServiceUnavailable}}
	delete(session.perms, "c2")
	res = add()
	assert.Equal(t, cmd.StatusError, res.Response.Status)
	_, written := session.perms["c2"]
	assert.False(t, written, "a failed read never writes")
}
