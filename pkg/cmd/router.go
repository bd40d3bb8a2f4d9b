package cmd

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InteractionKind tells which UI event produced an Interaction.
type InteractionKind int

const (
	InteractionComponent InteractionKind = iota + 1
	InteractionModalSubmit
)

func (k InteractionKind) String() string {
	switch k {
	case InteractionComponent:
		return "component"
	case InteractionModalSubmit:
		return "modal"
	}
	return "unknown"
}

// Interaction is a follow-up event correlated to earlier output only by the
// identifier chosen when that output was created.
type Interaction struct {
	ID   string
	Kind InteractionKind
	// Values holds the selected options of a select menu.
	Values []string
	// Fields holds modal text inputs by their own identifiers.
	Fields map[string]string
	// Data is the transport payload, as in Invocation.
	Data any
}

// Field returns the modal text input named id.
func (in *Interaction) Field(id string) (string, bool) {
	v, ok := in.Fields[id]
	return v, ok
}

// InteractionHandler answers a follow-up interaction.
type InteractionHandler func(ctx context.Context, in *Interaction) (Response, error)

// Router maps opaque identifiers to interaction handlers. Matching is exact
// and case-sensitive. Entries stay until removed explicitly.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]InteractionHandler
	mws      []InteractionMiddleware
}

// NewRouter returns an empty router. Middlewares wrap every routed handler;
// the first is the outermost.
func NewRouter(mws ...InteractionMiddleware) *Router {
	return &Router{handlers: make(map[string]InteractionHandler), mws: mws}
}

// Register binds id to h.
func (r *Router) Register(id string, h InteractionHandler) error {
	if id == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidName)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrInvalidArgument, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentifier, id)
	}
	r.handlers[id] = h
	return nil
}

// Route returns the handler registered for id.
func (r *Router) Route(id string) (InteractionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}

// Remove drops id. It reports whether id was registered.
func (r *Router) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[id]; !ok {
		return false
	}
	delete(r.handlers, id)
	return true
}

// IDs returns the registered identifiers, sorted.
func (r *Router) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dispatch routes in to its handler. An unknown identifier is unmatched,
// not an error.
func (r *Router) Dispatch(ctx context.Context, in *Interaction) Result {
	if in == nil {
		return Result{}
	}
	h, ok := r.Route(in.ID)
	if !ok {
		return Result{Matched: false, Target: in.ID}
	}
	if err := ctx.Err(); err != nil {
		return Result{Matched: true, Target: in.ID, Err: err}
	}
	resp, err := ApplyInteraction(h, r.mws...)(ctx, in)
	return Result{Matched: true, Target: in.ID, Response: resp, Err: err}
}
