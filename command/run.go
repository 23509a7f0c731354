package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/sarchlab/roboeyes/eye"
)

// ErrNotApplied is returned when the context ends before the render
// goroutine picks up a command. The command is then dropped and never runs.
var ErrNotApplied = errors.New("command: not applied")

type outcome[T any] struct {
	v   T
	err error
}

const (
	pending int32 = iota
	started
	abandoned
)

// Run applies cmd on the render goroutine through Submit and waits for the
// result.
func Run(ctx context.Context, c *eye.Controller, cmd Command) (string, error) {
	return Do(ctx, c, cmd.Apply)
}

// Do runs fn on the render goroutine through Submit and waits for it. If ctx
// ends before fn starts, fn is abandoned and ErrNotApplied returned. Once fn
// has started, Do waits for it to finish regardless of ctx.
func Do[T any](ctx context.Context, c *eye.Controller, fn func(*eye.Controller) (T, error)) (T, error) {
	var state atomic.Int32
	done := make(chan outcome[T], 1)

	c.Submit(func(c *eye.Controller) {
		if !state.CompareAndSwap(pending, started) {
			return
		}

		v, err := fn(c)
		done <- outcome[T]{v, err}
	})

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		if state.CompareAndSwap(pending, abandoned) {
			var zero T
			return zero, fmt.Errorf("%w: %w", ErrNotApplied, ctx.Err())
		}

		r := <-done

		return r.v, r.err
	}
}

// Console reads commands from in, one per line, and writes the results to
// out. It returns when in is exhausted or ctx ends.
func Console(ctx context.Context, c *eye.Controller, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			if err := runLine(ctx, c, line, out); err != nil {
				return err
			}
		}
	}
}

func runLine(ctx context.Context, c *eye.Controller, line string, out io.Writer) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	if line == "help" {
		_, err := fmt.Fprintln(out, Usage)
		return err
	}

	cmd, err := Parse(line)
	if err != nil {
		_, werr := fmt.Fprintf(out, "error: %v\n", err)
		return werr
	}

	res, err := Run(ctx, c, cmd)

	switch {
	case errors.Is(err, ErrNotApplied):
		return nil
	case err != nil:
		_, err = fmt.Fprintf(out, "error: %v\n", err)
	default:
		_, err = fmt.Fprintln(out, res)
	}

	return err
}
