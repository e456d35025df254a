package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDispatcher struct {
	calls atomic.Int32
	sent  int
	err   error
}

func (f *fakeDispatcher) DispatchReminders(context.Context) (int, error) {
	f.calls.Add(1)
	return f.sent, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunOnceLogsResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	d := &fakeDispatcher{sent: 3}
	New(d, "@every 1m", logger).runOnce(context.Background())
	if !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("expected sent count in log, got %q", buf.String())
	}

	buf.Reset()
	d = &fakeDispatcher{err: errors.New("db down")}
	New(d, "@every 1m", logger).runOnce(context.Background())
	if !strings.Contains(buf.String(), "db down") {
		t.Fatalf("expected error in log, got %q", buf.String())
	}
}

func TestScheduler_RunOnceSkipsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDispatcher{}
	New(d, "@every 1m", discardLogger()).runOnce(ctx)
	if d.calls.Load() != 0 {
		t.Fatalf("dispatcher must not run after cancellation")
	}
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := New(&fakeDispatcher{}, "every now and then", discardLogger())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestScheduler_RunFiresUntilCancelled(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{}
	s := New(d, "@every 1s", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for d.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if d.calls.Load() == 0 {
		t.Fatal("dispatcher never ran")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
