package cmd

import (
	"fmt"
	"strings"
)

// PathSeparator joins node names into a dotted path.
const PathSeparator = "."

// IDLedger remembers the id given to each dotted path so ids stay stable
// when the tree changes shape between restarts.
type IDLedger interface {
	// Known returns every path → id pair ever recorded, including paths
	// no longer present in the tree.
	Known() (map[string]int64, error)
	// Record stores the assignments of the current tree.
	Record(ids map[string]int64) error
}

type finalizeOptions struct {
	ledger IDLedger
}

// FinalizeOption configures Finalize.
type FinalizeOption func(*finalizeOptions)

// WithIDLedger makes Finalize reuse ids recorded for known paths and hand
// out fresh ids above every recorded one for new paths.
func WithIDLedger(l IDLedger) FinalizeOption {
	return func(o *finalizeOptions) { o.ledger = l }
}

// Tree is the read-only view of a finalized group hierarchy. It is safe for
// concurrent use.
type Tree struct {
	root   *Group
	groups map[string]*Group
	byID   map[int64]any
	order  []*Command
}

// Finalize assigns ids in one pre-order traversal (a group, then its
// subgroups, then its commands, each in declaration order), freezes every
// node and returns the read-only tree.
func Finalize(root *Group, opts ...FinalizeOption) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidName)
	}
	if root.frozen {
		return nil, fmt.Errorf("%w: group %q", ErrTreeFrozen, root.name)
	}
	if root.parent != nil {
		return nil, fmt.Errorf("%w: group %q is not a root", ErrInvalidName, root.name)
	}
	if root.name != "" {
		if err := root.validate(); err != nil {
			return nil, err
		}
	}

	var o finalizeOptions
	for _, opt := range opts {
		opt(&o)
	}

	known := map[string]int64{}
	if o.ledger != nil {
		k, err := o.ledger.Known()
		if err != nil {
			return nil, fmt.Errorf("load id ledger: %w", err)
		}
		for p, id := range k {
			known[p] = id
		}
	}
	var next int64
	for _, id := range known {
		if id > next {
			next = id
		}
	}

	// Check every command again: arguments may have been added or changed
	// after the command was attached.
	var check func(g *Group) error
	check = func(g *Group) error {
		for _, sub := range g.groups {
			if err := check(sub); err != nil {
				return err
			}
		}
		for _, c := range g.commands {
			if err := c.validate(); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(root); err != nil {
		return nil, err
	}

	type placement struct {
		path, effective string
		id              int64
	}
	groups := make(map[*Group]placement)
	commands := make(map[*Command]placement)
	assigned := make(map[string]int64)
	assign := func(path string) int64 {
		if id, ok := known[path]; ok && id > 0 {
			assigned[path] = id
			return id
		}
		next++
		assigned[path] = next
		return next
	}

	// Nothing is mutated until the ledger accepted the assignments, so a
	// failed Finalize leaves the tree open for another attempt.
	var plan func(g *Group, prefix, tag string)
	plan = func(g *Group, prefix, tag string) {
		path := joinPath(prefix, g.name)
		if g.permission != "" {
			tag = g.permission
		}
		groups[g] = placement{path: path, effective: tag, id: assign(groupKey(path))}

		for _, sub := range g.groups {
			plan(sub, path, tag)
		}
		for _, c := range g.commands {
			cp := placement{path: joinPath(path, c.name), effective: tag}
			if c.permission != "" {
				cp.effective = c.permission
			}
			cp.id = assign(cp.path)
			commands[c] = cp
		}
	}
	plan(root, "", "")

	if o.ledger != nil {
		if err := o.ledger.Record(assigned); err != nil {
			return nil, fmt.Errorf("record id ledger: %w", err)
		}
	}

	t := &Tree{
		root:   root,
		groups: make(map[string]*Group),
		byID:   make(map[int64]any),
	}
	var commit func(g *Group)
	commit = func(g *Group) {
		p := groups[g]
		g.path, g.effective, g.id = p.path, p.effective, p.id
		g.frozen = true
		t.groups[g.path] = g
		t.byID[g.id] = g

		for _, sub := range g.groups {
			commit(sub)
		}
		for _, c := range g.commands {
			p := commands[c]
			c.path, c.effective, c.id = p.path, p.effective, p.id
			c.freeze()
			t.byID[c.id] = c
			t.order = append(t.order, c)
		}
	}
	commit(root)
	return t, nil
}

// groupKey distinguishes a group's ledger entry from a command that could
// later take the same path.
func groupKey(path string) string {
	return path + "/"
}

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + PathSeparator + name
	}
}

// Root returns the root group.
func (t *Tree) Root() *Group { return t.root }

// Resolve walks the tree one path segment per level. The first segment that
// does not match ends the walk; there is no partial or prefix matching.
func (t *Tree) Resolve(path string) (*Command, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, PathSeparator)
	g := t.root
	if g.name != "" {
		if segments[0] != g.name {
			return nil, false
		}
		segments = segments[1:]
	}
	for i, seg := range segments {
		if i == len(segments)-1 {
			return g.Command(seg)
		}
		sub, ok := g.Group(seg)
		if !ok {
			return nil, false
		}
		g = sub
	}
	return nil, false
}

// ResolveGroup returns the group at path.
func (t *Tree) ResolveGroup(path string) (*Group, bool) {
	g, ok := t.groups[path]
	return g, ok
}

// Commands returns every command in traversal order.
func (t *Tree) Commands() []*Command {
	out := make([]*Command, len(t.order))
	copy(out, t.order)
	return out
}

// Groups returns every group in traversal order, root first.
func (t *Tree) Groups() []*Group {
	var out []*Group
	t.Walk(func(g *Group, c *Command) bool {
		if c == nil {
			out = append(out, g)
		}
		return true
	})
	return out
}

// ByID returns the *Group or *Command holding id.
func (t *Tree) ByID(id int64) (any, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Walk calls fn for each group in pre-order and each command after its
// group's subgroups. Returning false stops the walk.
func (t *Tree) Walk(fn func(g *Group, c *Command) bool) {
	var walk func(g *Group) bool
	walk = func(g *Group) bool {
		if !fn(g, nil) {
			return false
		}
		for _, sub := range g.groups {
			if !walk(sub) {
				return false
			}
		}
		for _, c := range g.commands {
			if !fn(g, c) {
				return false
			}
		}
		return true
	}
	walk(t.root)
}
