package cmd

import "fmt"

// Group is a named namespace holding subgroups and commands. No two children
// of one group share a name, whether subgroup or command.
type Group struct {
	name       string
	help       string
	permission string
	groups     []*Group
	commands   []*Command

	id        int64
	path      string
	effective string
	parent    *Group
	frozen    bool
}

// NewGroup returns an empty group. A group with an empty name may only be
// used as the root passed to Finalize, where it acts as an anonymous
// namespace left out of dotted paths.
func NewGroup(name, help string) *Group {
	return &Group{name: name, help: help}
}

// SetPermission sets the permission tag inherited by every descendant that
// does not set its own.
func (g *Group) SetPermission(tag string) *Group {
	if !g.frozen {
		g.permission = tag
	}
	return g
}

// AddGroup attaches sub as a child group.
func (g *Group) AddGroup(sub *Group) error {
	if g.frozen {
		return fmt.Errorf("%w: group %q", ErrTreeFrozen, g.name)
	}
	if sub == nil {
		return fmt.Errorf("%w: nil group", ErrInvalidName)
	}
	if sub.frozen {
		return fmt.Errorf("%w: group %q", ErrTreeFrozen, sub.name)
	}
	if sub.parent != nil {
		return fmt.Errorf("%w: group %q already has a parent", ErrDuplicateName, sub.name)
	}
	for p := g; p != nil; p = p.parent {
		if p == sub {
			return fmt.Errorf("%w: group %q cannot contain itself", ErrInvalidName, sub.name)
		}
	}
	if err := sub.validate(); err != nil {
		return err
	}
	if g.hasChild(sub.name) {
		return fmt.Errorf("%w: %q under %q", ErrDuplicateName, sub.name, g.name)
	}
	sub.parent = g
	g.groups = append(g.groups, sub)
	return nil
}

// AddCommand attaches c as a child command.
func (g *Group) AddCommand(c *Command) error {
	if g.frozen {
		return fmt.Errorf("%w: group %q", ErrTreeFrozen, g.name)
	}
	if c == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidName)
	}
	if c.frozen {
		return fmt.Errorf("%w: command %q", ErrTreeFrozen, c.name)
	}
	if c.parent != nil {
		return fmt.Errorf("%w: command %q already has a parent", ErrDuplicateName, c.name)
	}
	if err := c.validate(); err != nil {
		return err
	}
	if g.hasChild(c.name) {
		return fmt.Errorf("%w: %q under %q", ErrDuplicateName, c.name, g.name)
	}
	c.parent = g
	g.commands = append(g.commands, c)
	return nil
}

func (g *Group) Name() string       { return g.name }
func (g *Group) Help() string       { return g.help }
func (g *Group) Permission() string { return g.permission }
func (g *Group) Parent() *Group     { return g.parent }

// ID is the integer assigned by Finalize; zero before that.
func (g *Group) ID() int64 { return g.id }

// Path is the full dotted path, set by Finalize. Empty for an anonymous root.
func (g *Group) Path() string { return g.path }

// EffectivePermission is the group's own tag or the nearest ancestor's.
func (g *Group) EffectivePermission() string { return g.effective }

// Groups returns the child groups in declaration order.
func (g *Group) Groups() []*Group {
	out := make([]*Group, len(g.groups))
	copy(out, g.groups)
	return out
}

// Commands returns the child commands in declaration order.
func (g *Group) Commands() []*Command {
	out := make([]*Command, len(g.commands))
	copy(out, g.commands)
	return out
}

// Group returns the child group named name.
func (g *Group) Group(name string) (*Group, bool) {
	for _, sub := range g.groups {
		if sub.name == name {
			return sub, true
		}
	}
	return nil, false
}

// Command returns the child command named name.
func (g *Group) Command(name string) (*Command, bool) {
	for _, c := range g.commands {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (g *Group) hasChild(name string) bool {
	if _, ok := g.Group(name); ok {
		return true
	}
	_, ok := g.Command(name)
	return ok
}

func (g *Group) validate() error {
	if err := validateName(g.name); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	return nil
}
