package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"asoos/internal/session"
)

// DefaultHandlerTimeout bounds a single handler call when none is configured
const DefaultHandlerTimeout = 30 * time.Second

// Recorder receives every non-blank line, whether or not it resolved to a handler
type Recorder interface {
	Record(rawInput string) (session.HistoryEntry, error)
}

// Options configures a Dispatcher
type Options struct {
	// Help renders "asoos help". Defaults to the registry's "help" entry.
	Help Handler

	// Timeout bounds each handler call. Zero uses DefaultHandlerTimeout; negative disables it.
	Timeout time.Duration

	Logger *zap.Logger
}

// Dispatcher turns raw lines into rendered responses
type Dispatcher struct {
	registry *Registry
	history  Recorder
	help     Handler
	known    []string
	timeout  time.Duration
	log      *zap.Logger
}

// NewDispatcher snapshots the registry's known commands for fallback suggestions,
// so every verb must be registered before the dispatcher is built.
func NewDispatcher(registry *Registry, history Recorder, opts Options) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		history:  history,
		help:     opts.Help,
		known:    registry.KnownCommands(),
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
	if d.help == nil {
		if entry, ok := registry.Lookup("help"); ok {
			d.help = entry.Handler
		}
	}
	if d.timeout == 0 {
		d.timeout = DefaultHandlerTimeout
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	return d
}

// KnownCommands returns the fixed list used for suggestions
func (d *Dispatcher) KnownCommands() []string {
	out := make([]string, len(d.known))
	copy(out, d.known)
	return out
}

// Dispatch routes raw to its handler, records it and returns the text to display.
// It never fails: unknown verbs and handler errors both render suggestions.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) string {
	line := Parse(raw)
	if line.Blank() {
		return ""
	}

	// Recorded once the outcome is known, so a snapshot taken by this line's
	// handler covers only the lines before it
	defer d.record(raw)

	handler, verb, args, ok := d.resolve(line)
	if !ok {
		d.log.Info("unrecognized command", zap.String("input", raw), zap.String("verb", line.Verb))
		return d.Fallback(raw)
	}

	start := time.Now()
	out, err := d.invoke(ctx, handler, args)
	if err != nil {
		herr := &HandlerError{Verb: verb, Input: raw, Err: err}
		d.log.Error("handler failed",
			zap.String("pattern", line.Pattern()),
			zap.String("input", raw),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(herr),
		)
		return d.Fallback(raw)
	}

	d.log.Debug("dispatched",
		zap.String("pattern", line.Pattern()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (d *Dispatcher) record(raw string) {
	if _, err := d.history.Record(raw); err != nil {
		d.log.Warn("record history", zap.String("input", raw), zap.Error(err))
	}
}

// Fallback renders the "did you mean" response for input
func (d *Dispatcher) Fallback(input string) string {
	return RenderSuggestions(input, Suggest(input, d.known, MaxSuggestions))
}

// resolve finds the handler for line. "asoos help" is routed to the help renderer;
// bare "asoos" and any other "asoos ..." go to the asoos entry.
func (d *Dispatcher) resolve(line Line) (Handler, string, []string, bool) {
	verb := strings.ToLower(line.Verb)
	if verb == "asoos" && len(line.Args) > 0 && strings.EqualFold(line.Args[0], "help") && d.help != nil {
		return d.help, "asoos help", line.Args[1:], true
	}
	entry, ok := d.registry.Lookup(verb)
	if !ok {
		return nil, verb, nil, false
	}
	return entry.Handler, entry.Verb, line.Args, true
}

// result is what a handler call produced
type result struct {
	out string
	err error
}

// invoke runs handler under the dispatcher timeout and converts panics into errors
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, args []string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrHandlerPanic, r)}
			}
		}()
		out, err := handler.Handle(ctx, args)
		done <- result{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		go d.awaitAbandoned(done, args, time.Now())
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("handler timed out after %s: %w", d.timeout, err)
		}
		return "", err
	}
}

// awaitAbandoned logs when a handler that outlived its timeout finally returns.
// Its result is discarded, but any state it changed in the meantime is not undone.
func (d *Dispatcher) awaitAbandoned(done <-chan result, args []string, abandoned time.Time) {
	res := <-done
	d.log.Warn("handler finished after timeout",
		zap.Strings("args", args),
		zap.Duration("late_by", time.Since(abandoned)),
		zap.Error(res.err),
	)
}
