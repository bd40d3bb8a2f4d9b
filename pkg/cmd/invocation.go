// Package cmd is the transport-agnostic command core: a frozen tree of groups
// and commands, a decoder turning loose option sets into typed values, a
// dispatcher binding dotted paths to handlers, and a router for follow-up
// interactions keyed by opaque identifiers. Transports (Discord, text, CLI)
// translate their events into Event values and render the Response.
package cmd

import "context"

// Injection carries the values a transport hands to injected arguments,
// keyed by kind (KindContext, KindInteraction).
type Injection map[Kind]any

// Invocation is what a command handler receives.
type Invocation struct {
	Command *Command
	Path    string
	Args    *Values
	// Data is the transport payload behind the event, e.g. the session and
	// interaction of a Discord event. Handlers type-assert what they need.
	Data any
}

// Handler runs a resolved command.
type Handler func(ctx context.Context, inv *Invocation) (Response, error)

// Injected returns the value injected for the argument named name.
func (inv *Invocation) Injected(name string) (any, bool) {
	return inv.Args.Get(name)
}
