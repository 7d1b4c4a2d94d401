package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunRepeatedStopsAtMaxRepetitions(t *testing.T) {
	t.Parallel()

	var calls int32
	n, err := RunRepeated(context.Background(), func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, Options{Period: time.Millisecond, MaxRepetitions: 3})
	if err != nil {
		t.Fatalf("RunRepeated() error = %v", err)
	}
	if n != 3 || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("RunRepeated() = %d calls (fn saw %d), want 3", n, calls)
	}
}

func TestRunRepeatedReportsErrorsAndContinues(t *testing.T) {
	t.Parallel()

	boom := errors.New("refresh failed")
	var seen []error
	n, err := RunRepeated(context.Background(), func(context.Context) error {
		return boom
	}, Options{
		Period:         time.Millisecond,
		MaxRepetitions: 2,
		OnError:        func(err error) { seen = append(seen, err) },
		Name:           "refresh",
	})
	if err != nil {
		t.Fatalf("RunRepeated() error = %v", err)
	}
	if n != 2 || len(seen) != 2 || !errors.Is(seen[0], boom) {
		t.Fatalf("RunRepeated() = %d, OnError saw %v; want 2 calls and 2 errors", n, seen)
	}
}

func TestRunRepeatedStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	n, err := RunRepeated(ctx, func(context.Context) error {
		cancel()
		return nil
	}, Options{Period: time.Hour})
	if err != nil {
		t.Fatalf("RunRepeated() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("RunRepeated() = %d calls, want 1", n)
	}
}

func TestRunRepeatedWaitFirstHonorsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	n, err := RunRepeated(ctx, func(context.Context) error {
		t.Errorf("fn called before WaitFirst elapsed")
		return nil
	}, Options{Period: time.Millisecond, WaitFirst: time.Hour})
	if err != nil || n != 0 {
		t.Fatalf("RunRepeated() = (%d, %v), want (0, nil)", n, err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("RunRepeated() ignored cancellation during WaitFirst")
	}
}

func TestRunRepeatedRejectsBadPeriod(t *testing.T) {
	t.Parallel()

	if _, err := RunRepeated(context.Background(), func(context.Context) error { return nil }, Options{}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("RunRepeated() error = %v, want ErrInvalidPeriod", err)
	}
}
