package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestQueue_EnqueueDequeue(t *testing.T) {
	q := newRequestQueue()

	require.True(t, q.Enqueue(request{token: "a"}))
	require.True(t, q.Enqueue(request{token: "b"}))
	assert.Equal(t, 2, q.Len())

	r, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "a", r.token, "FIFO order")

	r, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "b", r.token)

	_, ok = q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestRequestQueue_EnqueueAfterClose(t *testing.T) {
	q := newRequestQueue()
	q.Close()

	assert.False(t, q.Enqueue(request{token: "late"}))
	assert.Equal(t, 0, q.Len())
}

func TestRequestQueue_CloseIsIdempotent(t *testing.T) {
	q := newRequestQueue()
	q.Close()
	q.Close()
}

func TestRequestQueue_WaitSignalsOnEnqueue(t *testing.T) {
	q := newRequestQueue()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-q.Wait()
	}()

	q.Enqueue(request{token: "x"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by enqueue")
	}
}

func TestRequestQueue_CloseWakesWaiters(t *testing.T) {
	q := newRequestQueue()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-q.Wait()
	}()

	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by close")
	}
}

func TestRequestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newRequestQueue()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Enqueue(request{token: "r"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, q.Len())
	for i := 0; i < 50; i++ {
		_, ok := q.TryDequeue()
		require.True(t, ok)
	}
}
