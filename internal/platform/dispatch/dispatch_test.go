package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsTasksInOrder(t *testing.T) {
	q := NewQueue("test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		q.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestQueue_DrainsBufferedTasksOnStop(t *testing.T) {
	q := NewQueue("test")
	ran := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		q.Submit(func() { ran <- struct{}{} })
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ran, 3)
}

func TestQueue_SubmitAfterStopRunsInline(t *testing.T) {
	q := NewQueue("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = q.Run(ctx)

	ran := false
	q.Submit(func() { ran = true })
	assert.True(t, ran)
}

func TestQueue_SurvivesPanickingTask(t *testing.T) {
	q := NewQueue("test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	q.Submit(func() { panic("boom") })
	done := make(chan struct{})
	q.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stopped after panic")
	}
}

func TestQueue_BlockedSubmitterRunsWhenQueueStops(t *testing.T) {
	q := NewQueue("test", WithSize(1))
	var ran atomic.Int32
	q.Submit(func() { ran.Add(1) })

	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		q.Submit(func() { ran.Add(1) })
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = q.Run(ctx)
	<-submitted

	assert.Equal(t, int32(2), ran.Load())
}

func TestQueue_NoTaskLostAcrossConcurrentStop(t *testing.T) {
	for iteration := 0; iteration < 200; iteration++ {
		q := NewQueue("test", WithSize(4))
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			_ = q.Run(ctx)
		}()

		var (
			ran        atomic.Int32
			submitters sync.WaitGroup
		)
		const perSubmitter, submitterCount = 25, 8
		for i := 0; i < submitterCount; i++ {
			submitters.Add(1)
			go func() {
				defer submitters.Done()
				for j := 0; j < perSubmitter; j++ {
					q.Submit(func() { ran.Add(1) })
				}
			}()
		}
		cancel()
		submitters.Wait()
		<-stopped

		require.Equal(t, int32(perSubmitter*submitterCount), ran.Load(), "iteration %d", iteration)
	}
}

func TestQueue_WorkersRunTasksConcurrently(t *testing.T) {
	q := NewQueue("test", WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = q.Run(ctx) }()

	// Each task waits for the other, so both must be running at once.
	first, second := make(chan struct{}), make(chan struct{})
	done := make(chan struct{}, 2)
	q.Submit(func() { close(first); <-second; done <- struct{}{} })
	q.Submit(func() { close(second); <-first; done <- struct{}{} })

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("tasks did not overlap")
		}
	}
}

func TestInline(t *testing.T) {
	ran := false
	Inline.Submit(func() { ran = true })
	assert.True(t, ran)
}
