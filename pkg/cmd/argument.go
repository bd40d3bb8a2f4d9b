package cmd

import "fmt"

// Kind is the value type an Argument decodes to.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindNumber
	KindBoolean
	KindUser
	KindRole
	KindChannel
	KindMentionable

	// KindContext and KindInteraction are never read from the raw option set.
	// The caller injects them at dispatch time.
	KindContext
	KindInteraction
)

var kindNames = map[Kind]string{
	KindString:      "string",
	KindInteger:     "integer",
	KindNumber:      "number",
	KindBoolean:     "boolean",
	KindUser:        "user",
	KindRole:        "role",
	KindChannel:     "channel",
	KindMentionable: "mentionable",
	KindContext:     "context",
	KindInteraction: "interaction",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Injected reports whether values of this kind come from the invocation
// context instead of the raw options.
func (k Kind) Injected() bool {
	return k == KindContext || k == KindInteraction
}

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// EnumSource yields the accepted literal values of an argument.
type EnumSource interface {
	Values() []string
}

// Choices is a fixed, ordered enumeration.
type Choices []string

func (c Choices) Values() []string { return c }

// EnumFunc is an enumeration computed on each call, e.g. from live data.
type EnumFunc func() []string

func (f EnumFunc) Values() []string {
	if f == nil {
		return nil
	}
	return f()
}

// Argument describes one formal parameter of a Command.
type Argument struct {
	name     string
	kind     Kind
	required bool
	help     string
	enum     EnumSource
	frozen   bool
}

// NewArgument returns an optional string argument named name.
func NewArgument(name string) *Argument {
	return &Argument{name: name, kind: KindString}
}

// SetValueType sets the kind the raw value is decoded to.
func (a *Argument) SetValueType(k Kind) *Argument {
	if !a.frozen {
		a.kind = k
	}
	return a
}

// SetRequired marks the argument as required or optional.
func (a *Argument) SetRequired(required bool) *Argument {
	if !a.frozen {
		a.required = required
	}
	return a
}

// SetHelp sets the user facing description.
func (a *Argument) SetHelp(help string) *Argument {
	if !a.frozen {
		a.help = help
	}
	return a
}

// SetAutocomplete restricts accepted values to those of src.
func (a *Argument) SetAutocomplete(src EnumSource) *Argument {
	if !a.frozen {
		a.enum = src
	}
	return a
}

// SetChoices is shorthand for SetAutocomplete(Choices(values)).
func (a *Argument) SetChoices(values ...string) *Argument {
	return a.SetAutocomplete(Choices(values))
}

func (a *Argument) Name() string     { return a.name }
func (a *Argument) Kind() Kind       { return a.kind }
func (a *Argument) Required() bool   { return a.required }
func (a *Argument) Help() string     { return a.help }
func (a *Argument) Enum() EnumSource { return a.enum }
func (a *Argument) Enumerated() bool { return a.enum != nil }
func (a *Argument) Injected() bool   { return a.kind.Injected() }

// Static reports whether the enumeration is a fixed list known at
// registration time.
func (a *Argument) Static() bool {
	_, ok := a.enum.(Choices)
	return ok
}

func (a *Argument) validate() error {
	if err := validateName(a.name); err != nil {
		return fmt.Errorf("argument: %w", err)
	}
	if !a.kind.valid() {
		return fmt.Errorf("%w: argument %q has unknown kind %d", ErrInvalidArgument, a.name, int(a.kind))
	}
	if a.enum != nil && a.kind != KindString {
		return fmt.Errorf("%w: argument %q enumerates values but is of kind %s", ErrInvalidArgument, a.name, a.kind)
	}
	if a.kind.Injected() && (a.required || a.enum != nil) {
		return fmt.Errorf("%w: injected argument %q cannot be required or enumerated", ErrInvalidArgument, a.name)
	}
	return nil
}
