package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ProcessesJobs(t *testing.T) {
	p := NewPool[int](10, 3)

	var processed atomic.Int64
	var wg sync.WaitGroup
	p.SetWorker(func(_ int, job int) {
		processed.Add(int64(job))
		wg.Done()
	})

	done := make(chan error, 1)
	go func() { done <- p.Start() }()

	for i := 1; i <= 10; i++ {
		wg.Add(1)
		require.True(t, p.Enqueue(i))
	}
	wg.Wait()
	assert.Equal(t, int64(55), processed.Load())
	assert.Zero(t, p.Backlog())

	p.Exit()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWorkersTerminated)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}

	assert.False(t, p.Enqueue(11))
	assert.NotPanics(t, p.Exit)
}

func TestPool_BacklogBeforeStart(t *testing.T) {
	p := NewPool[string](4, 1)
	require.True(t, p.Enqueue("a"))
	require.True(t, p.Enqueue("b"))
	assert.Equal(t, 2, p.Backlog())

	p.Exit()
	assert.False(t, p.Enqueue("c"))
}

func TestPool_StartWithoutHandler(t *testing.T) {
	p := NewPool[int](1, 1)
	assert.Error(t, p.Start())
}
