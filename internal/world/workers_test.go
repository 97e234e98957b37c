package world

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	pool := NewWorkerPool(4, 64, nil)
	defer pool.Shutdown(time.Second)

	var done atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		require.True(t, pool.Submit(func() {
			defer wg.Done()
			done.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(32), done.Load())
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	pool := NewWorkerPool(1, 4, nil)
	defer pool.Shutdown(time.Second)

	require.True(t, pool.Submit(func() { panic("сбой") }))

	ran := make(chan struct{})
	require.True(t, pool.Submit(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("воркер не пережил панику")
	}
}

func TestWorkerPoolShutdownRejectsTasks(t *testing.T) {
	pool := NewWorkerPool(2, 4, nil)
	assert.True(t, pool.Shutdown(time.Second))
	assert.False(t, pool.Submit(func() {}))
	assert.True(t, pool.Shutdown(time.Second), "повторная остановка безопасна")
}

func TestWorkerPoolShutdownTimeout(t *testing.T) {
	pool := NewWorkerPool(1, 4, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	assert.False(t, pool.Shutdown(20*time.Millisecond))
	close(release)
}

func TestWorkerPoolRejectsWhenFull(t *testing.T) {
	pool := NewWorkerPool(1, 1, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	require.True(t, pool.Submit(func() {}))
	assert.False(t, pool.Submit(func() {}), "Submit не должен блокироваться")

	close(release)
	pool.Shutdown(time.Second)
}

func TestInlineExecutor(t *testing.T) {
	var exec InlineExecutor
	ran := false
	assert.True(t, exec.Submit(func() { ran = true }))
	assert.True(t, ran)

	exec.Shutdown(0)
	assert.False(t, exec.Submit(func() {}))
}
