package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"asoos/internal/session"
)

// LineDispatcher is what the plain loop drives
type LineDispatcher interface {
	Dispatch(ctx context.Context, line string) string
	ResetSession() session.Session
}

// scanResult is one line read from input, or the reason reading stopped
type scanResult struct {
	line string
	err  error
	eof  bool
}

// RunPlain reads lines from in until EOF, exit or quit, writing responses to out.
// It is the front-end used when stdin is not a terminal. Cancelling ctx returns
// immediately, even while a read is blocked.
func RunPlain(ctx context.Context, backend LineDispatcher, in io.Reader, out io.Writer, prompt string) error {
	fmt.Fprintln(out, bannerText)

	lines := make(chan scanResult)
	done := make(chan struct{})
	defer close(done)
	go scanLines(in, lines, done)

	for {
		fmt.Fprint(out, prompt)

		var res scanResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case res = <-lines:
		}
		if res.eof {
			fmt.Fprintln(out)
			return res.err
		}

		switch strings.ToLower(strings.TrimSpace(res.line)) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "clear":
			backend.ResetSession()
			fmt.Fprintln(out, bannerText)
			continue
		}

		if result := backend.Dispatch(ctx, res.line); result != "" {
			fmt.Fprintln(out, result)
		}
	}
}

// scanLines feeds lines to out until EOF or done. out is unbuffered so at most
// one line is read ahead of the dispatch loop.
func scanLines(in io.Reader, out chan<- scanResult, done <-chan struct{}) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case out <- scanResult{line: scanner.Text()}:
		case <-done:
			return
		}
	}
	select {
	case out <- scanResult{err: scanner.Err(), eof: true}:
	case <-done:
	}
}
