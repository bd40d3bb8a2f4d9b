package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/cmdtree/internal/permissions"
	"github.com/keshon/cmdtree/pkg/cmd"
)

// PermissionsAPI reads and edits command permissions through a session.
type PermissionsAPI struct {
	session Session
	appID   func() string
}

var _ permissions.API = (*PermissionsAPI)(nil)

// NewPermissionsAPI reads the application id through appID on every call,
// since it is only known once the session is ready.
func NewPermissionsAPI(s Session, appID func() string) *PermissionsAPI {
	return &PermissionsAPI{session: s, appID: appID}
}

func (p *PermissionsAPI) CommandPermissions(ctx context.Context, guildID, commandID string) ([]permissions.Permission, error) {
	got, err := p.session.ApplicationCommandPermissions(p.appID(), guildID, commandID, discordgo.WithContext(ctx))
	if err != nil {
		var re *discordgo.RESTError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %v", permissions.ErrNoPermissions, err)
		}
		return nil, err
	}
	return fromDiscord(got.Permissions), nil
}

func (p *PermissionsAPI) GuildPermissions(ctx context.Context, guildID string) (map[string][]permissions.Permission, error) {
	all, err := p.session.GuildApplicationCommandsPermissions(p.appID(), guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make(map[string][]permissions.Permission, len(all))
	for _, gp := range all {
		out[gp.ID] = fromDiscord(gp.Permissions)
	}
	return out, nil
}

func (p *PermissionsAPI) SetCommandPermissions(ctx context.Context, guildID, commandID string, perms []permissions.Permission) error {
	list := &discordgo.ApplicationCommandPermissionsList{Permissions: toDiscord(perms)}
	return p.session.ApplicationCommandPermissionsEdit(p.appID(), guildID, commandID, list, discordgo.WithContext(ctx))
}

var permissionTypes = map[discordgo.ApplicationCommandPermissionType]cmd.MentionType{
	discordgo.ApplicationCommandPermissionTypeUser:    cmd.MentionUser,
	discordgo.ApplicationCommandPermissionTypeRole:    cmd.MentionRole,
	discordgo.ApplicationCommandPermissionTypeChannel: cmd.MentionChannel,
}

// fromDiscord keeps every rule, channel rules included, so a read-modify-write
// round trip leaves rules it does not touch in place. Unknown types are
// skipped.
func fromDiscord(in []*discordgo.ApplicationCommandPermissions) []permissions.Permission {
	out := make([]permissions.Permission, 0, len(in))
	for _, p := range in {
		t, ok := permissionTypes[p.Type]
		if !ok {
			continue
		}
		out = append(out, permissions.Permission{ID: p.ID, Type: t, Allow: p.Permission})
	}
	return out
}

func toDiscord(in []permissions.Permission) []*discordgo.ApplicationCommandPermissions {
	out := make([]*discordgo.ApplicationCommandPermissions, 0, len(in))
	for _, p := range in {
		t := discordgo.ApplicationCommandPermissionTypeUser
		switch p.Type {
		case cmd.MentionRole:
			t = discordgo.ApplicationCommandPermissionTypeRole
		case cmd.MentionChannel:
			t = discordgo.ApplicationCommandPermissionTypeChannel
		}
		out = append(out, &discordgo.ApplicationCommandPermissions{ID: p.ID, Type: t, Permission: p.Allow})
	}
	return out
}
