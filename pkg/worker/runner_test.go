package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	calls atomic.Int32
	err   error
}

func (w *countingWorker) Name() string { return "counting" }

func (w *countingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	return w.err
}

func TestPeriodicWorker_ImmediateRun(t *testing.T) {
	w := &countingWorker{}
	pw := NewPeriodicWorker(w, time.Hour, WithImmediateRun())

	ctx, cancel := context.WithCancel(context.Background())
	pw.Start(ctx)

	require.Eventually(t, func() bool { return w.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.True(t, pw.Stop(time.Second))
}

func TestPeriodicWorker_WaitsForFirstTick(t *testing.T) {
	w := &countingWorker{}
	pw := NewPeriodicWorker(w, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	pw.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.True(t, pw.Stop(time.Second))
	assert.Equal(t, int32(0), w.calls.Load())
}

func TestPeriodicWorker_ContinuesAfterFailure(t *testing.T) {
	w := &countingWorker{err: errors.New("feed down")}
	pw := NewPeriodicWorker(w, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	pw.Start(ctx)

	require.Eventually(t, func() bool { return w.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.True(t, pw.Stop(time.Second))

	iterations, failures := pw.Stats()
	assert.Equal(t, iterations, failures)
	assert.GreaterOrEqual(t, iterations, 3)
}

func TestWorkerGroup(t *testing.T) {
	a, b := &countingWorker{}, &countingWorker{}

	group := NewWorkerGroup(context.Background())
	group.Add(a, time.Hour, WithImmediateRun())
	group.Add(b, time.Hour, WithImmediateRun())
	assert.Equal(t, 2, group.Len())

	group.Start()
	require.Eventually(t, func() bool {
		return a.calls.Load() == 1 && b.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		group.Stop(time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker group did not stop")
	}
}
