// Package schedule runs a function periodically, the way viewctl serve
// refreshes materialized views on a timer.
package schedule

import (
	"context"
	"errors"
	"log"
	"time"
)

// Options configures RunRepeated.
type Options struct {
	// Period is the delay between the end of one call and the start of the
	// next. It must be positive.
	Period time.Duration

	// WaitFirst delays the first call. Zero calls immediately.
	WaitFirst time.Duration

	// MaxRepetitions stops the loop after that many calls; 0 is unbounded.
	MaxRepetitions int

	// OnError is called with every error fn returns. Errors never stop
	// the loop.
	OnError func(error)

	// Name labels log lines, e.g. "refresh".
	Name string
}

// ErrInvalidPeriod is returned when Options.Period is not positive.
var ErrInvalidPeriod = errors.New("schedule: period must be positive")

// RunRepeated calls fn until ctx is done or MaxRepetitions calls have been
// made. It blocks and returns the number of calls made. Calls never overlap.
// A failing call is logged and passed to OnError; the loop continues.
func RunRepeated(ctx context.Context, fn func(context.Context) error, opts Options) (int, error) {
	if opts.Period <= 0 {
		return 0, ErrInvalidPeriod
	}
	name := opts.Name
	if name == "" {
		name = "task"
	}

	if opts.WaitFirst > 0 {
		if !sleep(ctx, opts.WaitFirst) {
			return 0, nil
		}
	}

	timer := time.NewTimer(opts.Period)
	defer timer.Stop()

	n := 0
	for opts.MaxRepetitions == 0 || n < opts.MaxRepetitions {
		if ctx.Err() != nil {
			return n, nil
		}

		start := time.Now()
		err := fn(ctx)
		n++
		if err != nil {
			log.Printf("schedule: %s failed run=%d dur=%s err=%v", name, n, time.Since(start).Truncate(time.Millisecond), err)
			if opts.OnError != nil {
				opts.OnError(err)
			}
		}

		if opts.MaxRepetitions != 0 && n >= opts.MaxRepetitions {
			break
		}
		timer.Reset(opts.Period)
		select {
		case <-ctx.Done():
			return n, nil
		case <-timer.C:
		}
	}
	return n, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
