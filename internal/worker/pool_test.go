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

func TestPoolExecute(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	pool := NewPool(3, func(_ context.Context, n int) (int, error) {
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		if n%4 == 0 {
			return 0, errors.New("multiple of four")
		}
		return n * n, nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	tasks, err := pool.Execute(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, tasks, len(inputs))

	for i, task := range tasks {
		assert.Equal(t, inputs[i], task.Input)
		if inputs[i]%4 == 0 {
			assert.Error(t, task.Err)
			continue
		}
		assert.NoError(t, task.Err)
		assert.Equal(t, inputs[i]*inputs[i], task.Result)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestPoolCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	_, err := pool.Execute(ctx, []int{1, 2, 3})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestNewPoolDefaultsWorkers(t *testing.T) {
	t.Parallel()
	pool := NewPool(0, func(_ context.Context, n int) (int, error) { return n, nil })
	assert.GreaterOrEqual(t, pool.Workers(), 1)
}

func TestBatch(t *testing.T) {
	t.Parallel()
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Batch([]int{1, 2}, 0))
	assert.Nil(t, Batch([]int{}, 3))
}
