package cmd

import "context"

// Result is the outcome of routing one event.
type Result struct {
	// Matched is false when nothing handles the event. That is a normal
	// outcome: callers may try another routing strategy.
	Matched bool
	// Target is the dotted path or interaction identifier that matched.
	Target   string
	Response Response
	Err      error
}

// Dispatcher maps dotted paths to the handlers bound in a finalized tree.
type Dispatcher struct {
	tree *Tree
	mws  []Middleware
}

// NewDispatcher returns a dispatcher over t. Middlewares wrap every handler;
// the first is the outermost.
func NewDispatcher(t *Tree, mws ...Middleware) *Dispatcher {
	return &Dispatcher{tree: t, mws: mws}
}

// Tree returns the tree the dispatcher resolves against.
func (d *Dispatcher) Tree() *Tree { return d.tree }

// Dispatch resolves path, decodes raw against the command's arguments,
// fills injected arguments and runs the handler. Nothing is invoked, and
// nothing has side effects, until decoding succeeds and ctx is still live.
// The handler's error is returned as is.
func (d *Dispatcher) Dispatch(ctx context.Context, path string, raw []RawOption, inject Injection, data any) Result {
	c, ok := d.tree.Resolve(path)
	if !ok || c.handler == nil {
		return Result{Matched: false, Target: path}
	}

	vals, err := Decode(c.args, raw)
	if err != nil {
		return Result{Matched: true, Target: c.path, Err: err}
	}
	for _, a := range c.args {
		if !a.Injected() {
			continue
		}
		if v, ok := inject[a.kind]; ok && v != nil {
			vals.set(a.name, Value{Kind: a.kind, Present: true, Data: v})
		} else {
			vals.set(a.name, Value{Kind: a.kind})
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{Matched: true, Target: c.path, Err: err}
	}

	h := Apply(c.handler, d.mws...)
	resp, err := h(ctx, &Invocation{Command: c, Path: c.path, Args: vals, Data: data})
	return Result{Matched: true, Target: c.path, Response: resp, Err: err}
}
