package command

import (
	"errors"
	"fmt"
)

// ErrHandlerPanic marks a handler that panicked instead of returning an error
var ErrHandlerPanic = errors.New("handler panicked")

// HandlerError wraps a failure raised while a handler ran
type HandlerError struct {
	Verb  string
	Input string
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %q failed for %q: %v", e.Verb, e.Input, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
