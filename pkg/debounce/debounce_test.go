package debounce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(quiet time.Duration) *Coordinator {
	return New(&Config{QuietPeriod: quiet, WriteTimeout: 5 * time.Second}, nil)
}

func TestCoordinator_CoalescesRapidSubmits(t *testing.T) {
	c := newTestCoordinator(50 * time.Millisecond)
	defer c.Shutdown(context.Background())

	var writes atomic.Int32
	var last atomic.Value

	// Rapid sequential edits within one quiet window
	// 一个静默窗口内的快速连续编辑
	for i := 0; i < 10; i++ {
		content := i
		err := c.Submit(1, func() error {
			writes.Add(1)
			last.Store(content)
			return nil
		})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(1), writes.Load(), "exactly one write per quiet period")
	assert.Equal(t, 9, last.Load(), "the last submitted content wins")
}

func TestCoordinator_IndependentKeys(t *testing.T) {
	c := newTestCoordinator(30 * time.Millisecond)
	defer c.Shutdown(context.Background())

	var a, b atomic.Int32
	require.NoError(t, c.Submit(1, func() error { a.Add(1); return nil }))
	require.NoError(t, c.Submit(2, func() error { b.Add(1); return nil }))

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestCoordinator_CancelDropsPendingWrite(t *testing.T) {
	c := newTestCoordinator(50 * time.Millisecond)
	defer c.Shutdown(context.Background())

	var writes atomic.Int32
	require.NoError(t, c.Submit(1, func() error { writes.Add(1); return nil }))
	c.Cancel(1)

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(0), writes.Load(), "cancelled write must not fire")
	assert.False(t, c.Pending(1))
}

func TestCoordinator_FlushExecutesImmediately(t *testing.T) {
	c := newTestCoordinator(10 * time.Second)
	defer c.Shutdown(context.Background())

	var writes atomic.Int32
	require.NoError(t, c.Submit(1, func() error { writes.Add(1); return nil }))

	// The quiet period is far away; Flush must not wait for it
	// 静默期还很远，Flush 不能等它
	require.NoError(t, c.Flush(1))
	assert.Equal(t, int32(1), writes.Load())
	assert.False(t, c.Pending(1))

	// Flushing with nothing pending is a no-op
	// 无待写入时 Flush 为空操作
	require.NoError(t, c.Flush(1))
	assert.Equal(t, int32(1), writes.Load())
}

func TestCoordinator_DirtyAfterFailedWrite(t *testing.T) {
	c := newTestCoordinator(10 * time.Millisecond)
	defer c.Shutdown(context.Background())

	boom := errors.New("disk full")
	require.NoError(t, c.Submit(1, func() error { return boom }))
	time.Sleep(100 * time.Millisecond)

	assert.True(t, c.Dirty(1), "failed write keeps the key dirty")

	require.NoError(t, c.Submit(1, func() error { return nil }))
	time.Sleep(100 * time.Millisecond)

	assert.False(t, c.Dirty(1), "a later successful write clears the dirty mark")
}

func TestCoordinator_NoOverlappingWritesPerKey(t *testing.T) {
	c := newTestCoordinator(10 * time.Millisecond)
	defer c.Shutdown(context.Background())

	var inFlight atomic.Int32
	var maxInFlight atomic.Int32
	var writes atomic.Int32

	slowWrite := func() error {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		writes.Add(1)
		return nil
	}

	require.NoError(t, c.Submit(1, slowWrite))
	time.Sleep(20 * time.Millisecond)
	// Second edit arrives while the first write is in flight
	// 第一次写入进行中时到达第二次编辑
	require.NoError(t, c.Submit(1, slowWrite))

	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(2), writes.Load())
	assert.Equal(t, int32(1), maxInFlight.Load(), "at most one in-flight write per key")
}

func TestCoordinator_FlushAllOnShutdown(t *testing.T) {
	c := newTestCoordinator(10 * time.Second)

	var mu sync.Mutex
	written := make(map[int64]bool)
	for _, key := range []int64{1, 2, 3} {
		k := key
		require.NoError(t, c.Submit(k, func() error {
			mu.Lock()
			written[k] = true
			mu.Unlock()
			return nil
		}))
	}

	require.NoError(t, c.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, written, 3, "teardown flushes every pending write")
}

func TestCoordinator_SubmitAfterShutdown(t *testing.T) {
	c := newTestCoordinator(10 * time.Millisecond)
	require.NoError(t, c.Shutdown(context.Background()))

	err := c.Submit(1, func() error { return nil })
	assert.ErrorIs(t, err, ErrCoordinatorClosed)
}
