// Package command holds the verb registry and the dispatcher that routes a raw
// input line to the handler registered for its verb.
package command

import "context"

// Handler renders the response for a verb. The returned text is printed verbatim.
type Handler interface {
	Handle(ctx context.Context, args []string) (string, error)
}

// HandlerFunc adapts a plain function to Handler
type HandlerFunc func(ctx context.Context, args []string) (string, error)

// Handle calls f(ctx, args)
func (f HandlerFunc) Handle(ctx context.Context, args []string) (string, error) {
	return f(ctx, args)
}
