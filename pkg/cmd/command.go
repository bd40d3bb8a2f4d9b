package cmd

import "fmt"

// Command is a leaf of the tree: an invocable unit with a declared
// argument list and, optionally, a bound handler.
type Command struct {
	name       string
	help       string
	permission string
	args       []*Argument
	handler    Handler

	id        int64
	path      string
	effective string
	parent    *Group
	frozen    bool
	err       error
}

// NewCommand returns an empty command named name.
func NewCommand(name string) *Command {
	return &Command{name: name}
}

// SetHelp sets the user facing description.
func (c *Command) SetHelp(help string) *Command {
	if c.mutable() {
		c.help = help
	}
	return c
}

// SetPermission sets the permission tag checked by middleware.
func (c *Command) SetPermission(tag string) *Command {
	if c.mutable() {
		c.permission = tag
	}
	return c
}

// AddParam appends an argument. A name already declared on this command is
// recorded as an error and reported when the command is added to a group.
func (c *Command) AddParam(a *Argument) *Command {
	if !c.mutable() {
		return c
	}
	if a == nil {
		c.fail(fmt.Errorf("%w: nil argument on command %q", ErrInvalidArgument, c.name))
		return c
	}
	for _, existing := range c.args {
		if existing.name == a.name {
			c.fail(fmt.Errorf("%w: argument %q on command %q", ErrDuplicateName, a.name, c.name))
			return c
		}
	}
	c.args = append(c.args, a)
	return c
}

// Handle binds the function run when the command is dispatched.
func (c *Command) Handle(h Handler) *Command {
	if c.mutable() {
		c.handler = h
	}
	return c
}

// Clone returns an unfrozen copy under a new name, sharing argument
// declarations. Useful for sibling commands with the same signature.
func (c *Command) Clone(name string) *Command {
	cp := &Command{
		name:       name,
		help:       c.help,
		permission: c.permission,
		handler:    c.handler,
		err:        c.err,
	}
	cp.args = append(cp.args, c.args...)
	return cp
}

func (c *Command) Name() string       { return c.name }
func (c *Command) Help() string       { return c.help }
func (c *Command) Permission() string { return c.permission }
func (c *Command) Handler() Handler   { return c.handler }
func (c *Command) Parent() *Group     { return c.parent }

// ID is the integer assigned by Finalize; zero before that.
func (c *Command) ID() int64 { return c.id }

// Path is the full dotted path, set by Finalize.
func (c *Command) Path() string { return c.path }

// EffectivePermission is the command's own tag or the nearest ancestor's.
func (c *Command) EffectivePermission() string { return c.effective }

// Arguments returns the declared arguments in declaration order.
func (c *Command) Arguments() []*Argument {
	out := make([]*Argument, len(c.args))
	copy(out, c.args)
	return out
}

// Argument returns the declared argument named name.
func (c *Command) Argument(name string) (*Argument, bool) {
	for _, a := range c.args {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

// Err returns the first error recorded by the builder methods.
func (c *Command) Err() error { return c.err }

func (c *Command) mutable() bool {
	if c.frozen {
		c.fail(fmt.Errorf("%w: command %q", ErrTreeFrozen, c.name))
		return false
	}
	return true
}

func (c *Command) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Command) validate() error {
	if c.err != nil {
		return c.err
	}
	if err := validateName(c.name); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	for _, a := range c.args {
		if err := a.validate(); err != nil {
			return fmt.Errorf("command %q: %w", c.name, err)
		}
	}
	return nil
}

func (c *Command) freeze() {
	c.frozen = true
	for _, a := range c.args {
		a.frozen = true
	}
}
