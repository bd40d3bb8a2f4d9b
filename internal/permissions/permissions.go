// Package permissions implements the slash.permissions command group that
// edits per-command access rules on Discord.
package permissions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keshon/cmdtree/internal/middleware"
	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/cmd"
)

const (
	// OwnersTag is the permission tag carried by the slash group.
	OwnersTag = "owners"

	RefreshID     = "slash.permissions.refresh"
	ConfirmPrefix = "slash.permissions.confirm:"
	CancelPrefix  = "slash.permissions.cancel:"

	defaultConfirmTTL = 5 * time.Minute
)

// ErrNoPermissions is wrapped by API.CommandPermissions when the command has
// no explicit rules yet.
var ErrNoPermissions = errors.New("command has no explicit permissions")

// Permission is one access rule of a remote command.
type Permission struct {
	ID    string
	Type  cmd.MentionType // MentionUser, MentionRole or MentionChannel
	Allow bool
}

func (p Permission) String() string {
	verb := "allowed"
	if !p.Allow {
		verb = "denied"
	}
	return fmt.Sprintf("%s is %s", cmd.Mention{Type: p.Type, ID: p.ID}, verb)
}

// API reads and writes remote command permissions.
type API interface {
	CommandPermissions(ctx context.Context, guildID, commandID string) ([]Permission, error)
	// GuildPermissions returns the permissions of every command in the
	// guild keyed by remote command id.
	GuildPermissions(ctx context.Context, guildID string) (map[string][]Permission, error)
	SetCommandPermissions(ctx context.Context, guildID, commandID string, perms []Permission) error
}

// RemoteCommands looks up commands registered on Discord.
type RemoteCommands interface {
	RemoteCommand(guildID, name string) (storage.RemoteCommand, bool, error)
	RemoteCommands(guildID string) (map[string]storage.RemoteCommand, error)
	KnownCommandNames() ([]string, error)
}

type pending struct {
	request
	timer *time.Timer
}

// Component owns the slash group and the interactions its output posts.
type Component struct {
	api    API
	remote RemoteCommands
	router *cmd.Router

	ttl     time.Duration
	mu      sync.Mutex
	pending map[string]*pending // keyed by uuid
}

type Option func(*Component)

// WithConfirmTTL sets how long an unanswered set confirmation stays routable.
func WithConfirmTTL(d time.Duration) Option {
	return func(c *Component) { c.ttl = d }
}

func New(api API, remote RemoteCommands, router *cmd.Router, opts ...Option) *Component {
	c := &Component{
		api:     api,
		remote:  remote,
		router:  router,
		ttl:     defaultConfirmTTL,
		pending: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Group builds slash → permissions → {set, add, list}.
func (c *Component) Group() *cmd.Group {
	edit := cmd.NewCommand("").
		SetHelp("Change the permission of a command").
		AddParam(cmd.NewArgument("who").
			SetValueType(cmd.KindMentionable).
			SetRequired(true).
			SetHelp("User or role affected")).
		AddParam(cmd.NewArgument("command").
			SetRequired(true).
			SetHelp("Command affected").
			SetAutocomplete(cmd.EnumFunc(c.commandNames))).
		AddParam(cmd.NewArgument("type").
			SetRequired(true).
			SetHelp("Permission type").
			SetChoices("allow", "deny"))

	perms := cmd.NewGroup("permissions", "Manage command permissions")
	c.must(perms.AddCommand(edit.Clone("set").
		SetHelp("Replace every permission of a command with one rule").
		Handle(c.set)))
	c.must(perms.AddCommand(edit.Clone("add").Handle(c.add)))
	c.must(perms.AddCommand(cmd.NewCommand("list").
		SetHelp("List command permissions on this server").
		Handle(c.list)))

	slash := cmd.NewGroup("slash", "Slash command management").SetPermission(OwnersTag)
	c.must(slash.AddGroup(perms))
	return slash
}

// Register binds the static interaction identifiers.
func (c *Component) Register() error {
	return c.router.Register(RefreshID, c.refresh)
}

func (c *Component) must(err error) {
	if err != nil {
		panic(fmt.Sprintf("permissions: build command group: %v", err))
	}
}

func (c *Component) commandNames() []string {
	names, err := c.remote.KnownCommandNames()
	if err != nil {
		log.Printf("[WARN] Failed to load remote command names: %v", err)
		return nil
	}
	return names
}

type request struct {
	guildID   string
	command   string
	commandID string
	perm      Permission
}

var errNoGuild = errors.New("you must be in a server to use this command")

func guildOf(data any) (string, error) {
	o, ok := data.(middleware.Origin)
	if !ok || o.GuildID() == "" {
		return "", errNoGuild
	}
	return o.GuildID(), nil
}

// parse turns decoded arguments into a request. The returned string is a
// user facing rejection.
func (c *Component) parse(inv *cmd.Invocation) (request, string) {
	guildID, err := guildOf(inv.Data)
	if err != nil {
		return request{}, "You must be in a server to use this command."
	}
	who, _ := inv.Args.MentionValue("who")
	name, _ := inv.Args.StringValue("command")
	kind, _ := inv.Args.StringValue("type")

	rc, ok, err := c.remote.RemoteCommand(guildID, name)
	if err != nil {
		log.Printf("[ERR] Failed to look up remote command %q: %v", name, err)
		return request{}, "The server is not recognised."
	}
	if !ok {
		return request{}, fmt.Sprintf("Command `%s` not found.", name)
	}
	return request{
		guildID:   guildID,
		command:   name,
		commandID: rc.ID,
		perm:      Permission{ID: who.ID, Type: who.Type, Allow: kind == "allow"},
	}, ""
}

// upsert merges p into perms by (ID, Type).
func upsert(perms []Permission, p Permission) (out []Permission, changed, updated bool) {
	out = append([]Permission(nil), perms...)
	for i := range out {
		if out[i].ID == p.ID && out[i].Type == p.Type {
			if out[i].Allow == p.Allow {
				return out, false, false
			}
			out[i].Allow = p.Allow
			return out, true, true
		}
	}
	return append(out, p), true, false
}

func (c *Component) add(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
	req, reject := c.parse(inv)
	if reject != "" {
		return cmd.Failure(reject), nil
	}

	current, err := c.api.CommandPermissions(ctx, req.guildID, req.commandID)
	switch {
	case errors.Is(err, ErrNoPermissions):
		current = nil
	case err != nil:
		log.Printf("[ERR] Failed to read permissions of %q: %v", req.command, err)
		return cmd.Failure(fmt.Sprintf("The permissions of command `%s` could not be read: %v", req.command, err)), nil
	}
	merged, changed, updated := upsert(current, req.perm)
	if !changed {
		return cmd.Success("The permission is already set as requested."), nil
	}
	if err := c.api.SetCommandPermissions(ctx, req.guildID, req.commandID, merged); err != nil {
		return cmd.Failure(fmt.Sprintf("The permission for command `%s` could not be assigned: %v", req.command, err)), nil
	}
	if updated {
		return cmd.Success(fmt.Sprintf("The permission of command `%s` has been updated.", req.command)), nil
	}
	return cmd.Success(fmt.Sprintf("The permission of command `%s` has been added.", req.command)), nil
}

// set asks for confirmation before replacing every rule of the command.
// The confirm and cancel buttons get one-shot identifiers removed as soon
// as either is pressed or the confirmation expires.
func (c *Component) set(_ context.Context, inv *cmd.Invocation) (cmd.Response, error) {
	req, reject := c.parse(inv)
	if reject != "" {
		return cmd.Failure(reject), nil
	}

	key := uuid.NewString()
	confirmID, cancelID := ConfirmPrefix+key, CancelPrefix+key

	p := &pending{request: req}
	c.mu.Lock()
	c.pending[key] = p
	c.mu.Unlock()

	if err := c.router.Register(confirmID, c.confirm(key)); err != nil {
		c.take(key)
		return cmd.Response{}, err
	}
	if err := c.router.Register(cancelID, c.cancel(key)); err != nil {
		c.take(key)
		return cmd.Response{}, err
	}

	// The timer starts once both identifiers exist so expiry removes them.
	c.mu.Lock()
	if _, ok := c.pending[key]; ok {
		p.timer = time.AfterFunc(c.ttl, func() { c.take(key) })
	}
	c.mu.Unlock()

	text := fmt.Sprintf("Replace every permission of `%s` with: %s?", req.command, req.perm)
	return cmd.Reply(text).WithButtons(
		cmd.Button{ID: confirmID, Label: "Confirm", Style: cmd.ButtonDanger},
		cmd.Button{ID: cancelID, Label: "Cancel", Style: cmd.ButtonSecondary},
	), nil
}

// take removes a pending confirmation and its identifiers.
func (c *Component) take(key string) (*pending, bool) {
	c.mu.Lock()
	p, ok := c.pending[key]
	delete(c.pending, key)
	var timer *time.Timer
	if ok {
		timer = p.timer
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	if timer != nil {
		timer.Stop()
	}
	c.router.Remove(ConfirmPrefix + key)
	c.router.Remove(CancelPrefix + key)
	return p, true
}

func (c *Component) confirm(key string) cmd.InteractionHandler {
	return func(ctx context.Context, _ *cmd.Interaction) (cmd.Response, error) {
		p, ok := c.take(key)
		if !ok {
			return cmd.Failure("This confirmation has expired.").AsUpdate(), nil
		}
		if err := c.api.SetCommandPermissions(ctx, p.guildID, p.commandID, []Permission{p.perm}); err != nil {
			return cmd.Failure(fmt.Sprintf("The permissions of `%s` could not be replaced: %v", p.command, err)).AsUpdate(), nil
		}
		return cmd.Success(fmt.Sprintf("The permissions of `%s` have been replaced.", p.command)).AsUpdate(), nil
	}
}

func (c *Component) cancel(key string) cmd.InteractionHandler {
	return func(context.Context, *cmd.Interaction) (cmd.Response, error) {
		c.take(key)
		return cmd.Reply("Cancelled.").AsUpdate(), nil
	}
}

// Pending is the number of confirmations awaiting an answer.
func (c *Component) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Component) list(ctx context.Context, inv *cmd.Invocation) (cmd.Response, error) {
	guildID, err := guildOf(inv.Data)
	if err != nil {
		return cmd.Failure("You must be in a server to use this command."), nil
	}
	return c.render(ctx, guildID)
}

func (c *Component) refresh(ctx context.Context, in *cmd.Interaction) (cmd.Response, error) {
	guildID, err := guildOf(in.Data)
	if err != nil {
		return cmd.Failure("You must be in a server to use this button."), nil
	}
	resp, err := c.render(ctx, guildID)
	return resp.AsUpdate(), err
}

func (c *Component) render(ctx context.Context, guildID string) (cmd.Response, error) {
	remote, err := c.remote.RemoteCommands(guildID)
	if err != nil {
		return cmd.Response{}, fmt.Errorf("load remote commands: %w", err)
	}
	byID := make(map[string]string, len(remote))
	for name, rc := range remote {
		byID[rc.ID] = name
	}

	perms, err := c.api.GuildPermissions(ctx, guildID)
	if err != nil {
		return cmd.Failure(fmt.Sprintf("Could not fetch permissions: %v", err)), nil
	}

	text := FormatList(byID, perms)
	if text == "" {
		text = "No command permissions are set on this server."
	}
	return cmd.Success(text).WithButtons(cmd.Button{ID: RefreshID, Label: "Refresh", Style: cmd.ButtonSecondary}), nil
}

// FormatList renders permissions per command name. Commands missing from
// names belong to other applications and are skipped.
func FormatList(names map[string]string, perms map[string][]Permission) string {
	type entry struct {
		name  string
		perms []Permission
	}
	var entries []entry
	for id, list := range perms {
		name, ok := names[id]
		if !ok || len(list) == 0 {
			continue
		}
		entries = append(entries, entry{name: name, perms: list})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "*Command __%s__*\n", e.name)
		for _, p := range e.perms {
			fmt.Fprintf(&b, "%s.\n", p)
		}
	}
	return b.String()
}
