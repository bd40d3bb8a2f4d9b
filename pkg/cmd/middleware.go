package cmd

// Middleware wraps a handler (logging, permission checks, metrics).
type Middleware func(Handler) Handler

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// InteractionMiddleware wraps an interaction handler.
type InteractionMiddleware func(InteractionHandler) InteractionHandler

// ApplyInteraction applies middlewares in order; the first is the outermost.
func ApplyInteraction(h InteractionHandler, mws ...InteractionMiddleware) InteractionHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
