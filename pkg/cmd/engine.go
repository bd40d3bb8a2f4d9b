package cmd

import "context"

// Event is an inbound event: a *CommandEvent or an *InteractionEvent.
type Event interface {
	event()
}

// CommandEvent invokes the command at Path.
type CommandEvent struct {
	Path    string
	Options []RawOption
	Inject  Injection
	Data    any
}

// InteractionEvent is a follow-up UI event.
type InteractionEvent struct {
	Interaction *Interaction
}

func (*CommandEvent) event()     {}
func (*InteractionEvent) event() {}

// Engine is the single entry point transports feed events into.
type Engine struct {
	dispatcher *Dispatcher
	router     *Router
}

// NewEngine combines a dispatcher and a router. Either may be nil, in which
// case events of that kind are unmatched.
func NewEngine(d *Dispatcher, r *Router) *Engine {
	return &Engine{dispatcher: d, router: r}
}

func (e *Engine) Dispatcher() *Dispatcher { return e.dispatcher }
func (e *Engine) Router() *Router         { return e.router }

// Tree returns the dispatcher's tree, or nil.
func (e *Engine) Tree() *Tree {
	if e.dispatcher == nil {
		return nil
	}
	return e.dispatcher.tree
}

// Handle classifies ev and routes it.
func (e *Engine) Handle(ctx context.Context, ev Event) Result {
	switch v := ev.(type) {
	case *CommandEvent:
		if e.dispatcher == nil || v == nil {
			return Result{}
		}
		return e.dispatcher.Dispatch(ctx, v.Path, v.Options, v.Inject, v.Data)
	case *InteractionEvent:
		if e.router == nil || v == nil {
			return Result{}
		}
		return e.router.Dispatch(ctx, v.Interaction)
	}
	return Result{}
}
