package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestScheduler_RunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int32
	s := New(50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, discardLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_FailedRunKeepsSchedule(t *testing.T) {
	var runs atomic.Int32
	s := New(50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("stage daily: boom")
	}, discardLogger())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RunsNeverOverlap(t *testing.T) {
	var active, maxActive, runs atomic.Int32
	s := New(20*time.Millisecond, func(context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			cur := maxActive.Load()
			if n <= cur || maxActive.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(80 * time.Millisecond)
		runs.Add(1)
		return nil
	}, discardLogger())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})
	s := New(time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	}, discardLogger())

	require.NoError(t, s.Start(context.Background()))
	<-started
	s.Stop()

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("job context was not canceled")
	}
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := New(0, func(context.Context) error { return nil }, discardLogger())
	require.Error(t, s.Start(context.Background()))
}
