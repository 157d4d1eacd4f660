package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveWorkers(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
	_, err = New(-3)
	assert.Error(t, err)
}

func TestRunAllCollectsFailures(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)

	boom := errors.New("boom")
	var ran int32
	tasks := []Task{
		{Name: "ok-1", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
		{Name: "bad", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return boom }},
		{Name: "ok-2", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
	}

	failed := p.RunAll(context.Background(), tasks)
	assert.Equal(t, int32(3), ran, "a failing task does not abort its siblings")
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].Name)
	assert.ErrorIs(t, failed[0], boom)
}

func TestRunAllBoundsConcurrency(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)

	var mu sync.Mutex
	inFlight, peak := 0, 0

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Name: "t", Run: func(context.Context) error {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		}}
	}

	failed := p.RunAll(context.Background(), tasks)
	assert.Empty(t, failed)
	assert.LessOrEqual(t, peak, 2)
}

func TestRunAllCancelledContextSkipsScheduling(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	failed := p.RunAll(ctx, []Task{
		{Name: "skipped", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
	})
	assert.Zero(t, ran)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], context.Canceled)
}
